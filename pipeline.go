package guing

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const defaultInputQueueSize = 256

// Pipeline decouples native event polling from the render thread. Producers
// push raw events into two bounded FIFO queues; Run coarsens them on its own
// goroutine and forwards the result to the sink.
type Pipeline struct {
	log    *zap.Logger
	sink   EventSink
	coarse *Coarsener

	keys  chan RawKeyEvent
	mouse chan RawMouseEvent
	wake  chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
	done     chan struct{}

	pending atomic.Int64
	dropped atomic.Int64
}

// NewPipeline creates a pipeline that delivers to sink. queueSize bounds each
// of the two queues.
func NewPipeline(sink EventSink, cfg GestureConfig, queueSize int, log *zap.Logger) *Pipeline {
	if queueSize <= 0 {
		queueSize = defaultInputQueueSize
	}
	return &Pipeline{
		log:    orNop(log),
		sink:   sink,
		coarse: NewCoarsener(cfg),
		keys:   make(chan RawKeyEvent, queueSize),
		mouse:  make(chan RawMouseEvent, queueSize),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// PushKey queues a raw keyboard event without blocking. A full queue drops
// the event with a warning and PushKey reports false.
func (p *Pipeline) PushKey(ev RawKeyEvent) bool {
	if p.stopped.Load() {
		return false
	}
	p.pending.Add(1)
	select {
	case p.keys <- ev:
		p.signal()
		return true
	default:
		p.pending.Add(-1)
		p.dropped.Add(1)
		p.log.Warn("keyboard queue full, dropping event",
			zap.Int("key", int(ev.Key)), zap.Int("capacity", cap(p.keys)))
		return false
	}
}

// PushMouse queues a raw mouse event without blocking. A full queue drops
// the event with a warning and PushMouse reports false.
func (p *Pipeline) PushMouse(ev RawMouseEvent) bool {
	if p.stopped.Load() {
		return false
	}
	p.pending.Add(1)
	select {
	case p.mouse <- ev:
		p.signal()
		return true
	default:
		p.pending.Add(-1)
		p.dropped.Add(1)
		p.log.Warn("mouse queue full, dropping event",
			zap.Float64("x", ev.X), zap.Float64("y", ev.Y), zap.Int("capacity", cap(p.mouse)))
		return false
	}
}

func (p *Pipeline) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pending reports events queued or currently being processed.
func (p *Pipeline) Pending() int {
	return int(p.pending.Load())
}

// Dropped reports how many events were rejected by full queues.
func (p *Pipeline) Dropped() int {
	return int(p.dropped.Load())
}

// Run processes events until Stop is called or ctx is done. Within one
// iteration every pending keyboard event is handled before a single mouse
// event. Run must be called at most once.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.done)
	p.log.Debug("input pipeline started")
	defer p.log.Debug("input pipeline stopped")

	for {
		if p.stopped.Load() || ctx.Err() != nil {
			return
		}
		progressed := false

	drainKeys:
		for {
			select {
			case ev := <-p.keys:
				if p.stopped.Load() {
					return
				}
				p.sink.ProcessKeyboardEvent(p.coarse.Key(ev))
				p.pending.Add(-1)
				progressed = true
			default:
				break drainKeys
			}
		}

		select {
		case ev := <-p.mouse:
			if p.stopped.Load() {
				return
			}
			for _, out := range p.coarse.Mouse(ev) {
				p.sink.ProcessMouseEvent(out)
			}
			p.pending.Add(-1)
			progressed = true
		default:
		}

		if progressed {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-p.wake:
		}
	}
}

// Stop asks Run to return. Events still queued are not processed. Safe to
// call more than once and from any goroutine.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.stop)
	})
}

// Done is closed when Run returns.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until Run has returned.
func (p *Pipeline) Wait() {
	<-p.done
}
