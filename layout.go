package guing

// Layout recomputes the size of a widget and the positions of its children.
// Arrange runs from RefreshLayout after every dirty child has been refreshed,
// so children sizes are final when the parent arranges them.
type Layout interface {
	Arrange(w *Widget)
}

// LayoutFunc adapts a function to the Layout interface.
type LayoutFunc func(w *Widget)

// Arrange calls f.
func (f LayoutFunc) Arrange(w *Widget) { f(w) }

// InvalidateLayout marks w dirty and propagates the mark up the parent chain.
// Propagation stops at the first ancestor that is already dirty, since a
// dirty widget always has dirty ancestors.
func (w *Widget) InvalidateLayout() {
	for p := w; p != nil && !p.layoutDirty; p = p.Parent {
		p.layoutDirty = true
	}
}

// LayoutInvalid reports whether the widget is waiting for a layout refresh.
func (w *Widget) LayoutInvalid() bool {
	return w.layoutDirty
}

// RefreshLayout recomputes a dirty subtree. It is lazy: clean widgets return
// immediately. Children are refreshed first, then the widget's own Layout
// runs, then any child the layout resized is refreshed again.
func (w *Widget) RefreshLayout() {
	if !w.layoutDirty {
		return
	}
	for _, c := range w.children {
		c.RefreshLayout()
	}
	if w.Layout != nil {
		w.Layout.Arrange(w)
		for _, c := range w.children {
			c.RefreshLayout()
		}
	}
	w.layoutDirty = false
}

// StackLayout places visible children in a row or column.
type StackLayout struct {
	Vertical bool
	Spacing  float64
	Padding  float64
	// Fit resizes the widget to wrap its children.
	Fit bool
}

// Arrange implements Layout.
func (s StackLayout) Arrange(w *Widget) {
	pos := s.Padding
	var extent float64
	n := 0
	for _, c := range w.children {
		if !c.visible {
			continue
		}
		if n > 0 {
			pos += s.Spacing
		}
		if s.Vertical {
			c.X, c.Y = s.Padding, pos
			pos += c.Height
			extent = max(extent, c.Width)
		} else {
			c.X, c.Y = pos, s.Padding
			pos += c.Width
			extent = max(extent, c.Height)
		}
		n++
	}
	if !s.Fit {
		return
	}
	if s.Vertical {
		w.Width, w.Height = extent+2*s.Padding, pos+s.Padding
	} else {
		w.Width, w.Height = pos+s.Padding, extent+2*s.Padding
	}
}

// GridLayout places children in fixed-size cells, row by row.
type GridLayout struct {
	Columns      int
	CellW, CellH float64
	Gap          float64
	Padding      float64
	Fit          bool
}

// Cell returns the rectangle of cell i relative to the grid widget.
func (g GridLayout) Cell(i int) Rect {
	cols := max(g.Columns, 1)
	col, row := i%cols, i/cols
	return Rect{
		X:      g.Padding + float64(col)*(g.CellW+g.Gap),
		Y:      g.Padding + float64(row)*(g.CellH+g.Gap),
		Width:  g.CellW,
		Height: g.CellH,
	}
}

// Arrange implements Layout. Children keep their index as cell identity,
// hidden children still occupy their cell.
func (g GridLayout) Arrange(w *Widget) {
	for i, c := range w.children {
		r := g.Cell(i)
		c.X, c.Y = r.X, r.Y
		if c.Width != r.Width || c.Height != r.Height {
			c.SetSize(r.Width, r.Height)
		}
	}
	if !g.Fit || len(w.children) == 0 {
		return
	}
	cols := max(g.Columns, 1)
	rows := (len(w.children) + cols - 1) / cols
	usedCols := min(cols, len(w.children))
	w.Width = 2*g.Padding + float64(usedCols)*g.CellW + float64(usedCols-1)*g.Gap
	w.Height = 2*g.Padding + float64(rows)*g.CellH + float64(rows-1)*g.Gap
}

// FitContent sizes the widget to the bounding box of its visible children
// plus padding, without moving them.
type FitContent struct {
	Padding float64
}

// Arrange implements Layout.
func (f FitContent) Arrange(w *Widget) {
	var maxX, maxY float64
	for _, c := range w.children {
		if !c.visible {
			continue
		}
		maxX = max(maxX, c.X+c.Width)
		maxY = max(maxY, c.Y+c.Height)
	}
	w.Width, w.Height = maxX+f.Padding, maxY+f.Padding
}
