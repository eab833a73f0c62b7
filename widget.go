package guing

import (
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Painter renders a widget's own content. Children are drawn afterwards by
// the tree, so a painter never recurses.
type Painter interface {
	Paint(dst *ebiten.Image, w *Widget, deltaMillis int64)
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(dst *ebiten.Image, w *Widget, deltaMillis int64)

// Paint calls f.
func (f PainterFunc) Paint(dst *ebiten.Image, w *Widget, deltaMillis int64) { f(dst, w, deltaMillis) }

// treeHost is implemented by the owner of a root widget so the tree can hand
// back input state (capture, focus, drags) for subtrees that go away.
type treeHost interface {
	releaseWithin(w *Widget)
}

// debugHost is a treeHost that hands out a logger for tree checks. The
// logger is nil outside debug mode.
type debugHost interface {
	treeHost
	debugLog() *zap.Logger
}

var widgetIDs atomic.Uint32

func nextWidgetID() uint32 {
	return widgetIDs.Add(1)
}

// Widget is the single concrete element of the GUI tree. Behaviour that
// differs between widget kinds is injected as capabilities (Painter, Layout,
// event hooks) instead of subclassing.
type Widget struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy. Parent is a back-reference only; a widget owns its children.
	Parent   *Widget
	children []*Widget

	// Geometry. X and Y are relative to the parent.
	X, Y          float64
	Width, Height float64
	Alpha         float64

	visible     bool
	layoutDirty bool

	// Capabilities
	Painter  Painter
	Layout   Layout
	HitShape HitShape

	// PassThrough widgets are displayed but never receive input: hit tests
	// return none for them and their whole subtree.
	PassThrough bool
	// InterceptMouse gives the widget's own OnMouse the first look at an
	// event before its children.
	InterceptMouse bool
	// Clip restricts children drawing to the widget's bounds.
	Clip bool
	// DeferRemoval postpones RemoveChild until the end of the widget's next
	// Draw so the child list is never mutated mid-iteration.
	DeferRemoval bool
	// Transient widgets and their subtrees are left out of saved state.
	Transient bool

	Tooltip  string
	UserData any

	// Hooks (nil by default)
	OnMouse    func(w *Widget, ev MouseEvent) bool
	OnKeyboard func(w *Widget, ev KeyboardEvent) bool
	OnShow     func(w *Widget)
	OnHide     func(w *Widget)
	OnDispose  func(w *Widget)
	OnSave     func(w *Widget) map[string]string
	OnRestore  func(w *Widget, props map[string]string)

	// Internal
	host     treeHost
	tweens   []*Tween
	removals []*Widget
	drawing  bool
	disposed bool
}

// NewWidget creates a visible, empty widget of the given size.
func NewWidget(name string, width, height float64) *Widget {
	return &Widget{
		ID:          nextWidgetID(),
		Name:        name,
		Width:       width,
		Height:      height,
		Alpha:       1,
		visible:     true,
		layoutDirty: true,
	}
}

// --- Tree manipulation ---

// AddChild appends child on top of its siblings.
// Panics if child is nil, already has a parent, or is an ancestor of w.
func (w *Widget) AddChild(child *Widget) {
	w.AddChildAt(child, len(w.children))
}

// AddChildAt inserts child at index in the z-order (0 = bottom).
func (w *Widget) AddChildAt(child *Widget, index int) {
	if child == nil {
		panic("guing: cannot add nil child")
	}
	checkDisposed(w, "AddChild (parent)")
	checkDisposed(child, "AddChild (child)")
	if child.Parent != nil {
		panic(fmt.Errorf("add %q to %q: %w", child.Name, w.Name, ErrChildAlreadyAdded))
	}
	if isAncestor(child, w) {
		panic(fmt.Errorf("add %q to %q would create a cycle: %w", child.Name, w.Name, ErrChildAlreadyAdded))
	}
	if index < 0 || index > len(w.children) {
		panic("guing: child index out of range")
	}
	child.Parent = w
	w.children = append(w.children, nil)
	copy(w.children[index+1:], w.children[index:])
	w.children[index] = child
	w.InvalidateLayout()
	if log := w.debugLog(); log != nil {
		debugCheckTreeDepth(log, child)
		debugCheckChildCount(log, w)
	}
}

// RemoveChild detaches child from w. Panics with ErrChildNotFound when child
// is not a child of w. Widgets with DeferRemoval queue the removal until the
// end of their next Draw.
func (w *Widget) RemoveChild(child *Widget) {
	if child == nil || child.Parent != w {
		name := "<nil>"
		if child != nil {
			name = child.Name
		}
		panic(fmt.Errorf("remove %q from %q: %w", name, w.Name, ErrChildNotFound))
	}
	if w.DeferRemoval {
		for _, r := range w.removals {
			if r == child {
				return
			}
		}
		w.removals = append(w.removals, child)
		return
	}
	w.removeNow(child)
}

// FlushRemovals applies removals queued by a DeferRemoval widget.
func (w *Widget) FlushRemovals() {
	if len(w.removals) == 0 {
		return
	}
	pending := w.removals
	w.removals = nil
	for _, child := range pending {
		if child.Parent == w {
			w.removeNow(child)
		}
	}
}

// PendingRemovals reports how many removals are queued.
func (w *Widget) PendingRemovals() int {
	return len(w.removals)
}

func (w *Widget) removeNow(child *Widget) {
	if h := w.rootHost(); h != nil {
		h.releaseWithin(child)
	}
	for i, c := range w.children {
		if c == child {
			copy(w.children[i:], w.children[i+1:])
			w.children[len(w.children)-1] = nil
			w.children = w.children[:len(w.children)-1]
			break
		}
	}
	child.Parent = nil
	w.InvalidateLayout()
}

// RemoveFromParent detaches w from its parent. No-op without a parent.
func (w *Widget) RemoveFromParent() {
	if w.Parent == nil {
		return
	}
	w.Parent.RemoveChild(w)
}

// RemoveChildren detaches all children immediately. Children are not disposed.
func (w *Widget) RemoveChildren() {
	if h := w.rootHost(); h != nil {
		for _, c := range w.children {
			h.releaseWithin(c)
		}
	}
	for i, c := range w.children {
		c.Parent = nil
		w.children[i] = nil
	}
	w.children = w.children[:0]
	w.removals = nil
	w.InvalidateLayout()
}

// Children returns the child list in z-order. The returned slice MUST NOT be
// mutated by the caller.
func (w *Widget) Children() []*Widget {
	return w.children
}

// NumChildren returns the number of children.
func (w *Widget) NumChildren() int {
	return len(w.children)
}

// ChildAt returns the child at the given index.
func (w *Widget) ChildAt(index int) *Widget {
	return w.children[index]
}

// FindByName returns the first descendant (depth-first) with the given name.
func (w *Widget) FindByName(name string) *Widget {
	for _, c := range w.children {
		if c.Name == name {
			return c
		}
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// Path returns the slash-separated names from the root down to w.
func (w *Widget) Path() string {
	if w.Parent == nil {
		return w.Name
	}
	return w.Parent.Path() + "/" + w.Name
}

// Contains reports whether other is w or one of its descendants.
func (w *Widget) Contains(other *Widget) bool {
	return other != nil && isAncestor(w, other)
}

// --- Visibility ---

// Visible reports the widget's own visibility flag.
func (w *Widget) Visible() bool {
	return w.visible
}

// SetVisible shows or hides the widget. Showing runs OnShow so lazily built
// widgets can rebuild; hiding stops animations, releases any input capture
// held by the subtree and runs OnHide for teardown.
func (w *Widget) SetVisible(v bool) {
	if w.visible == v {
		return
	}
	w.visible = v
	if v {
		if w.OnShow != nil {
			w.OnShow(w)
		}
	} else {
		w.stopTweens()
		if h := w.rootHost(); h != nil {
			h.releaseWithin(w)
		}
		if w.OnHide != nil {
			w.OnHide(w)
		}
	}
	w.InvalidateLayout()
}

// Shown reports whether w and all its ancestors are visible.
func (w *Widget) Shown() bool {
	for p := w; p != nil; p = p.Parent {
		if !p.visible {
			return false
		}
	}
	return true
}

// --- Geometry ---

// SetPosition sets the position relative to the parent.
func (w *Widget) SetPosition(x, y float64) {
	if w.X == x && w.Y == y {
		return
	}
	w.X, w.Y = x, y
	if w.Parent != nil {
		w.Parent.InvalidateLayout()
	}
}

// SetSize resizes the widget and invalidates its layout.
func (w *Widget) SetSize(width, height float64) {
	if w.Width == width && w.Height == height {
		return
	}
	w.Width, w.Height = width, height
	w.InvalidateLayout()
}

// Absolute returns the screen position: the sum of the relative offsets of w
// and every ancestor.
func (w *Widget) Absolute() (x, y float64) {
	for p := w; p != nil; p = p.Parent {
		x += p.X
		y += p.Y
	}
	return x, y
}

// Bounds returns the absolute rectangle of the widget.
func (w *Widget) Bounds() Rect {
	x, y := w.Absolute()
	return Rect{X: x, Y: y, Width: w.Width, Height: w.Height}
}

// LocalBounds returns the rectangle relative to the parent.
func (w *Widget) LocalBounds() Rect {
	return Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
}

// --- Drawing ---

// Draw refreshes a pending layout, paints the widget and then its visible
// children in insertion order (later children on top). Invisible widgets draw
// nothing.
func (w *Widget) Draw(dst *ebiten.Image, deltaMillis int64) {
	if !w.visible {
		return
	}
	if w.layoutDirty {
		w.RefreshLayout()
	}
	w.advanceTweens(deltaMillis)
	if w.Painter != nil && dst != nil {
		w.Painter.Paint(dst, w, deltaMillis)
	}

	target := dst
	if w.Clip && dst != nil {
		r := rectToImage(w.Bounds()).Intersect(dst.Bounds())
		if r.Empty() {
			w.FlushRemovals()
			return
		}
		target = dst.SubImage(r).(*ebiten.Image)
	}

	w.drawing = true
	for _, c := range w.children {
		c.Draw(target, deltaMillis)
	}
	w.drawing = false
	w.FlushRemovals()
}

// --- Disposal ---

// Dispose detaches w from its parent and tears down the whole subtree,
// running OnDispose hooks depth-first.
func (w *Widget) Dispose() {
	if w.disposed {
		return
	}
	if w.Parent != nil {
		w.Parent.removeNow(w)
	}
	w.dispose()
}

func (w *Widget) dispose() {
	for _, c := range w.children {
		c.Parent = nil
		c.dispose()
	}
	if w.OnDispose != nil {
		w.OnDispose(w)
	}
	w.disposed = true
	w.stopTweens()
	w.children = nil
	w.removals = nil
	w.Painter = nil
	w.Layout = nil
	w.HitShape = nil
	w.UserData = nil
	w.OnMouse = nil
	w.OnKeyboard = nil
	w.OnShow = nil
	w.OnHide = nil
	w.OnDispose = nil
	w.OnSave = nil
	w.OnRestore = nil
	w.host = nil
}

// IsDisposed reports whether Dispose has been called.
func (w *Widget) IsDisposed() bool {
	return w.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Widget) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (w *Widget) root() *Widget {
	r := w
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

func (w *Widget) rootHost() treeHost {
	return w.root().host
}

// debugLog returns the debug logger of the tree's host, or nil when the tree
// is detached or its host is not in debug mode.
func (w *Widget) debugLog() *zap.Logger {
	if h, ok := w.rootHost().(debugHost); ok {
		return h.debugLog()
	}
	return nil
}
