package guing

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// mustPanicWith runs fn and fails unless it panics with an error wrapping
// want.
func mustPanicWith(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v, got none", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

// --- Constructor defaults ---

func TestNewWidgetDefaults(t *testing.T) {
	w := NewWidget("w", 10, 20)
	if w.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if w.Name != "w" || w.Width != 10 || w.Height != 20 {
		t.Errorf("got %q %vx%v", w.Name, w.Width, w.Height)
	}
	if w.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", w.Alpha)
	}
	if !w.Visible() {
		t.Error("new widget should be visible")
	}
	if !w.LayoutInvalid() {
		t.Error("new widget should need a layout")
	}
}

func TestUniqueIDs(t *testing.T) {
	a, b := NewWidget("a", 0, 0), NewWidget("b", 0, 0)
	if a.ID == b.ID {
		t.Errorf("IDs should differ: %d", a.ID)
	}
}

// --- AddChild / RemoveChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewWidget("parent", 100, 100)
	child := NewWidget("child", 10, 10)
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 || parent.ChildAt(0) != child {
		t.Error("child not at index 0")
	}
}

func TestAddChildAlreadyAddedPanics(t *testing.T) {
	p1, p2 := NewWidget("p1", 0, 0), NewWidget("p2", 0, 0)
	child := NewWidget("child", 0, 0)
	p1.AddChild(child)
	mustPanicWith(t, ErrChildAlreadyAdded, func() { p2.AddChild(child) })
	if child.Parent != p1 {
		t.Error("failed add must not reparent")
	}
}

func TestAddChildCyclePanics(t *testing.T) {
	a, b, c := NewWidget("a", 0, 0), NewWidget("b", 0, 0), NewWidget("c", 0, 0)
	a.AddChild(b)
	b.AddChild(c)
	mustPanicWith(t, ErrChildAlreadyAdded, func() { c.AddChild(a) })
	mustPanicWith(t, ErrChildAlreadyAdded, func() { a.AddChild(a) })
}

func TestAddChildNilPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	NewWidget("n", 0, 0).AddChild(nil)
}

func TestAddChildAt(t *testing.T) {
	p := NewWidget("p", 0, 0)
	a, b, c := NewWidget("a", 0, 0), NewWidget("b", 0, 0), NewWidget("c", 0, 0)
	p.AddChild(a)
	p.AddChild(c)
	p.AddChildAt(b, 1)
	for i, want := range []*Widget{a, b, c} {
		if p.ChildAt(i) != want {
			t.Errorf("ChildAt(%d) = %q, want %q", i, p.ChildAt(i).Name, want.Name)
		}
	}
}

func TestRemoveChildNotFoundPanics(t *testing.T) {
	p := NewWidget("p", 0, 0)
	stranger := NewWidget("stranger", 0, 0)
	mustPanicWith(t, ErrChildNotFound, func() { p.RemoveChild(stranger) })
	mustPanicWith(t, ErrChildNotFound, func() { p.RemoveChild(nil) })
}

func TestRemoveChild(t *testing.T) {
	p := NewWidget("p", 0, 0)
	c := NewWidget("c", 0, 0)
	p.AddChild(c)
	p.RefreshLayout()

	p.RemoveChild(c)
	if c.Parent != nil || p.NumChildren() != 0 {
		t.Error("child should be detached")
	}
	if !p.LayoutInvalid() {
		t.Error("removing a child should invalidate the parent layout")
	}
	// The removed widget can be added elsewhere.
	NewWidget("q", 0, 0).AddChild(c)
}

func TestDeferredRemoval(t *testing.T) {
	p := NewWidget("p", 100, 100)
	p.DeferRemoval = true
	a, b := NewWidget("a", 1, 1), NewWidget("b", 1, 1)
	p.AddChild(a)
	p.AddChild(b)

	p.RemoveChild(a)
	p.RemoveChild(a) // queued once
	if p.NumChildren() != 2 {
		t.Fatalf("removal should be deferred, children = %d", p.NumChildren())
	}
	if p.PendingRemovals() != 1 {
		t.Errorf("PendingRemovals = %d, want 1", p.PendingRemovals())
	}

	p.Draw(nil, 16)
	if p.NumChildren() != 1 || p.ChildAt(0) != b {
		t.Errorf("after draw children = %d, want only b", p.NumChildren())
	}
	if a.Parent != nil {
		t.Error("a should be detached after the frame")
	}
}

func TestRemoveChildren(t *testing.T) {
	p := NewWidget("p", 0, 0)
	kids := []*Widget{NewWidget("a", 0, 0), NewWidget("b", 0, 0)}
	for _, k := range kids {
		p.AddChild(k)
	}
	p.RemoveChildren()
	if p.NumChildren() != 0 {
		t.Errorf("NumChildren = %d", p.NumChildren())
	}
	for _, k := range kids {
		if k.Parent != nil {
			t.Errorf("%s still has a parent", k.Name)
		}
		if k.IsDisposed() {
			t.Errorf("%s should not be disposed", k.Name)
		}
	}
}

// --- Lookup ---

func TestFindByNameAndPath(t *testing.T) {
	root := NewWidget("root", 0, 0)
	win := NewWidget("window", 0, 0)
	btn := NewWidget("ok", 0, 0)
	root.AddChild(win)
	win.AddChild(btn)

	if got := root.FindByName("ok"); got != btn {
		t.Errorf("FindByName = %v", got)
	}
	if root.FindByName("missing") != nil {
		t.Error("FindByName should return nil for unknown names")
	}
	if got := btn.Path(); got != "root/window/ok" {
		t.Errorf("Path = %q", got)
	}
	if !root.Contains(btn) || btn.Contains(root) {
		t.Error("Contains is wrong")
	}
}

// --- Visibility ---

func TestSetVisibleHooks(t *testing.T) {
	w := NewWidget("w", 0, 0)
	var shows, hides int
	w.OnShow = func(*Widget) { shows++ }
	w.OnHide = func(*Widget) { hides++ }

	w.SetVisible(true) // no change
	w.SetVisible(false)
	w.SetVisible(false)
	w.SetVisible(true)
	if shows != 1 || hides != 1 {
		t.Errorf("shows=%d hides=%d, want 1 and 1", shows, hides)
	}
}

func TestHideStopsTweens(t *testing.T) {
	p := NewWidget("p", 0, 0)
	c := NewWidget("c", 0, 0)
	p.AddChild(c)
	c.Animate(TweenAlpha(c, 0, 1000, ease.Linear))
	p.SetVisible(false)
	if c.Animating() {
		t.Error("hiding an ancestor should stop descendant tweens")
	}
}

func TestShown(t *testing.T) {
	p := NewWidget("p", 0, 0)
	c := NewWidget("c", 0, 0)
	p.AddChild(c)
	p.SetVisible(false)
	if !c.Visible() || c.Shown() {
		t.Error("child keeps its own flag but is not shown under a hidden parent")
	}
}

func TestDrawSkipsInvisible(t *testing.T) {
	w := NewWidget("w", 10, 10)
	painted := 0
	w.Painter = PainterFunc(func(_ *ebiten.Image, _ *Widget, _ int64) { painted++ })
	w.SetVisible(false)
	w.Draw(nil, 16)
	if !w.LayoutInvalid() {
		t.Error("an invisible widget should not refresh its layout")
	}
	if painted != 0 {
		t.Error("invisible widget painted")
	}
}

// --- Geometry ---

func TestAbsoluteIsSumOfOffsets(t *testing.T) {
	a := NewWidget("a", 100, 100)
	b := NewWidget("b", 50, 50)
	c := NewWidget("c", 10, 10)
	a.SetPosition(10, 20)
	b.SetPosition(5, 5)
	c.SetPosition(1, 2)
	a.AddChild(b)
	b.AddChild(c)

	x, y := c.Absolute()
	if x != 16 || y != 27 {
		t.Errorf("Absolute = (%v, %v), want (16, 27)", x, y)
	}
	if got := c.Bounds(); got != (Rect{X: 16, Y: 27, Width: 10, Height: 10}) {
		t.Errorf("Bounds = %+v", got)
	}
}

// --- Disposal ---

func TestDisposeRunsHooksDepthFirst(t *testing.T) {
	p := NewWidget("p", 0, 0)
	c := NewWidget("c", 0, 0)
	p.AddChild(c)
	var order []string
	p.OnDispose = func(w *Widget) { order = append(order, w.Name) }
	c.OnDispose = func(w *Widget) { order = append(order, w.Name) }

	p.Dispose()
	p.Dispose()
	if len(order) != 2 || order[0] != "c" || order[1] != "p" {
		t.Errorf("dispose order = %v, want [c p]", order)
	}
	if !p.IsDisposed() || !c.IsDisposed() {
		t.Error("both widgets should be disposed")
	}
}
