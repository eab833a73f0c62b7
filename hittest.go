package guing

// HitShape defines a custom hit-test region in a widget's local coordinates
// (origin at the widget's top-left corner).
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width &&
		y >= r.Y && y < r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using a
// cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	var positive, negative bool
	for i := 0; i < n; i++ {
		a, b := p.Points[i], p.Points[(i+1)%n]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// SpriteHit hit-tests against a sprite's opaque pixels. The sprite is drawn
// at (X, Y) in the widget's local space.
type SpriteHit struct {
	Sprite *Sprite
	X, Y   float64
}

// Contains implements HitShape.
func (s SpriteHit) Contains(x, y float64) bool {
	if s.Sprite == nil {
		return false
	}
	return s.Sprite.Hit(x-s.X, y-s.Y)
}

// containsLocal tests a point in w's local space against its HitShape, or
// its bounds when none is set.
func (w *Widget) containsLocal(lx, ly float64) bool {
	if w.HitShape != nil {
		return w.HitShape.Contains(lx, ly)
	}
	return lx >= 0 && lx < w.Width && ly >= 0 && ly < w.Height
}

// WidgetAt returns the deepest visible widget containing the absolute point
// (x, y), or nil. Children are checked in reverse insertion order so the
// topmost one wins. A PassThrough widget hides itself and its subtree.
func (w *Widget) WidgetAt(x, y float64) *Widget {
	ox, oy := 0.0, 0.0
	if w.Parent != nil {
		ox, oy = w.Parent.Absolute()
	}
	return w.widgetAt(x-ox, y-oy)
}

// widgetAt works in the parent's coordinate space so the absolute position
// is not recomputed at every level.
func (w *Widget) widgetAt(px, py float64) *Widget {
	if !w.visible || w.PassThrough {
		return nil
	}
	lx, ly := px-w.X, py-w.Y
	if !w.containsLocal(lx, ly) {
		return nil
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		if hit := w.children[i].widgetAt(lx, ly); hit != nil {
			return hit
		}
	}
	return w
}
