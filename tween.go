package guing

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates up to two float64 fields of a widget. Durations are in
// milliseconds. Register it with Widget.Animate; the widget advances it
// during Draw and drops it once finished. If the target widget is disposed
// the tween stops without writing.
type Tween struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *Widget
	// moves marks tweens that change the target's position, which
	// invalidates the parent's layout.
	moves bool

	delay int64
	Done  bool
	// OnDone runs once when the tween finishes on its own. It does not run
	// after Stop.
	OnDone func()
}

// After delays the start of the tween by the given milliseconds.
func (t *Tween) After(delayMillis int64) *Tween {
	t.delay = delayMillis
	return t
}

// Update advances the tween by deltaMillis and writes the values to the
// target fields.
func (t *Tween) Update(deltaMillis int64) {
	if t.Done {
		return
	}
	if t.target != nil && t.target.IsDisposed() {
		t.Done = true
		return
	}
	if t.delay > 0 {
		t.delay -= deltaMillis
		if t.delay >= 0 {
			return
		}
		deltaMillis = -t.delay
		t.delay = 0
	}

	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(float32(deltaMillis))
		*t.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if t.moves && t.target != nil && t.target.Parent != nil {
		t.target.Parent.InvalidateLayout()
	}
	if allDone {
		t.Done = true
		if t.OnDone != nil {
			t.OnDone()
		}
	}
}

// Stop ends the tween where it is. OnDone is not called.
func (t *Tween) Stop() {
	t.Done = true
}

// TweenPosition animates w.X and w.Y to the given coordinates.
func TweenPosition(w *Widget, toX, toY float64, durationMillis int64, fn ease.TweenFunc) *Tween {
	t := &Tween{count: 2, target: w, moves: true}
	t.tweens[0] = gween.New(float32(w.X), float32(toX), tweenDuration(durationMillis), fn)
	t.tweens[1] = gween.New(float32(w.Y), float32(toY), tweenDuration(durationMillis), fn)
	t.fields[0] = &w.X
	t.fields[1] = &w.Y
	return t
}

// TweenAlpha animates w.Alpha to the target value.
func TweenAlpha(w *Widget, to float64, durationMillis int64, fn ease.TweenFunc) *Tween {
	t := &Tween{count: 1, target: w}
	t.tweens[0] = gween.New(float32(w.Alpha), float32(to), tweenDuration(durationMillis), fn)
	t.fields[0] = &w.Alpha
	return t
}

// TweenValue animates an arbitrary field owned by w, such as an indicator's
// displayed value.
func TweenValue(w *Widget, field *float64, to float64, durationMillis int64, fn ease.TweenFunc) *Tween {
	t := &Tween{count: 1, target: w}
	t.tweens[0] = gween.New(float32(*field), float32(to), tweenDuration(durationMillis), fn)
	t.fields[0] = field
	return t
}

// tweenDuration keeps durations positive: a zero-length gween tween
// reports finished while still holding its start value.
func tweenDuration(ms int64) float32 {
	return float32(max(ms, 1))
}

// Animate registers t with w. Tweens advance while the widget is drawn.
func (w *Widget) Animate(t *Tween) *Tween {
	w.tweens = append(w.tweens, t)
	return t
}

// Animating reports whether w has unfinished tweens.
func (w *Widget) Animating() bool {
	for _, t := range w.tweens {
		if !t.Done {
			return true
		}
	}
	return false
}

func (w *Widget) advanceTweens(deltaMillis int64) {
	if len(w.tweens) == 0 {
		return
	}
	// OnDone may register new tweens, so iterate over a snapshot.
	active := w.tweens
	w.tweens = nil
	for _, t := range active {
		t.Update(deltaMillis)
	}
	kept := w.tweens
	w.tweens = nil
	for _, t := range active {
		if !t.Done {
			w.tweens = append(w.tweens, t)
		}
	}
	w.tweens = append(w.tweens, kept...)
}

// stopTweens stops the tweens of w and its whole subtree.
func (w *Widget) stopTweens() {
	for _, t := range w.tweens {
		t.Stop()
	}
	w.tweens = nil
	for _, c := range w.children {
		c.stopTweens()
	}
}
