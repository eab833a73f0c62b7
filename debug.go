package guing

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// frameStats holds per-frame timing. Only populated in debug mode.
type frameStats struct {
	inputTime  time.Duration
	taskTime   time.Duration
	drawTime   time.Duration
	mouseCount int
	keyCount   int
	taskCount  int
}

// logFrameStats reports a frame's timing at debug level.
func logFrameStats(log *zap.Logger, s frameStats) {
	log.Debug("frame",
		zap.Duration("input", s.inputTime),
		zap.Duration("tasks", s.taskTime),
		zap.Duration("draw", s.drawTime),
		zap.Int("mouseEvents", s.mouseCount),
		zap.Int("keyEvents", s.keyCount),
		zap.Int("renderTasks", s.taskCount),
	)
}

// checkDisposed panics with ErrWidgetDisposed when a disposed widget is
// used in a tree operation.
func checkDisposed(w *Widget, op string) {
	if w.disposed {
		panic(fmt.Errorf("%s on %q (ID was %d): %w", op, w.Name, w.ID, ErrWidgetDisposed))
	}
}

// debugMaxTreeDepth is the depth above which AddChild warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(log *zap.Logger, w *Widget) {
	depth := 0
	for p := w; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("widget tree too deep",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), zap.String("widget", w.Path()))
	}
}

// debugMaxChildCount is the child count above which AddChild warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(log *zap.Logger, w *Widget) {
	if len(w.children) > debugMaxChildCount {
		log.Warn("widget has too many children",
			zap.String("widget", w.Path()), zap.Int("children", len(w.children)), zap.Int("threshold", debugMaxChildCount))
	}
}
