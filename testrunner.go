package guing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// scriptStep is one entry of a JSON input script. Which fields matter
// depends on Action.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Steps  int     `json:"steps,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Key    string  `json:"key,omitempty"`
	Text   string  `json:"text,omitempty"`
	Button string  `json:"button,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
}

// scriptKeys names the keys a script may press.
var scriptKeys = map[string]ebiten.Key{
	"enter":     ebiten.KeyEnter,
	"escape":    ebiten.KeyEscape,
	"backspace": ebiten.KeyBackspace,
	"tab":       ebiten.KeyTab,
	"space":     ebiten.KeySpace,
	"up":        ebiten.KeyArrowUp,
	"down":      ebiten.KeyArrowDown,
	"left":      ebiten.KeyArrowLeft,
	"right":     ebiten.KeyArrowRight,
	"pageup":    ebiten.KeyPageUp,
	"pagedown":  ebiten.KeyPageDown,
	"i":         ebiten.KeyI,
	"j":         ebiten.KeyJ,
}

var scriptButtons = map[string]MouseButton{
	"":       MouseButtonLeft,
	"left":   MouseButtonLeft,
	"right":  MouseButtonRight,
	"middle": MouseButtonMiddle,
}

func (st scriptStep) validate() error {
	switch st.Action {
	case "click", "drag", "wait", "screenshot", "text", "wheel":
	case "key":
		if _, ok := scriptKeys[strings.ToLower(st.Key)]; !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	if _, ok := scriptButtons[st.Button]; !ok {
		return fmt.Errorf("unknown button %q", st.Button)
	}
	return nil
}

// apply performs the step against g and returns how many further frames to
// idle afterwards.
func (st scriptStep) apply(g *GUI) int {
	p := g.input
	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "click":
		if b := scriptButtons[st.Button]; b != MouseButtonLeft {
			p.InjectButton(st.X, st.Y, b)
		} else {
			p.InjectClick(st.X, st.Y)
		}
	case "drag":
		p.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Steps)
	case "key":
		p.InjectKey(scriptKeys[strings.ToLower(st.Key)], 0)
	case "text":
		p.InjectText(st.Text)
	case "wheel":
		p.InjectWheel(st.X, st.Y, st.Delta)
	case "wait":
		// The frame that runs the step is the first one waited.
		return max(st.Frames-1, 0)
	}
	return 0
}

// TestRunner replays a JSON input script one step per frame. Injected input
// is fully dispatched before the next step runs, so scripts see the GUI
// state their previous step produced. Attach it with GUI.SetTestRunner.
type TestRunner struct {
	steps []scriptStep
	next  int
	idle  int
	done  bool
}

// LoadTestScript parses a script of the form {"steps": [...]}. Unknown
// actions, keys and buttons are rejected before anything runs.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script struct {
		Steps []scriptStep `json:"steps"`
	}
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether every step has run and its input was dispatched.
func (r *TestRunner) Done() bool {
	return r.done
}

// step runs at the start of GUI.Update.
func (r *TestRunner) step(g *GUI) {
	switch {
	case r.done:
		return
	case g.input.Pending() > 0 || g.queuedInput() > 0:
		return
	case r.idle > 0:
		r.idle--
		return
	case r.next == len(r.steps):
		r.done = true
		return
	}

	r.idle = r.steps[r.next].apply(g)
	r.next++
	if r.next == len(r.steps) && r.idle == 0 && g.input.Pending() == 0 {
		r.done = true
	}
}
