package guing

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser formats item names for tooltips.
var titleCaser = cases.Title(language.AmericanEnglish)

// Slot is one cell of an inventory or container. Rect is relative to the
// grid. ItemID zero means the slot is empty.
type Slot struct {
	ItemID int
	Count  int
	Rect   Rect
}

// Empty reports whether the slot holds nothing.
func (s Slot) Empty() bool { return s.ItemID == 0 }

// SlotDeps are the collaborators a slot grid needs. All fields except
// Decoder are optional.
type SlotDeps struct {
	Decoder  *Decoder
	Sender   CommandSender
	Sprites  func(itemID int) (*Sprite, error)
	ItemName func(itemID int) string
	Font     Font
	Log      *zap.Logger
}

// SlotGrid displays a fixed number of item slots and takes part in the drag
// protocol: a drag started on a slot records it as source in the decoder,
// a drag released on a slot records it as target and executes.
//
// Slot contents may be updated from any goroutine; the render thread picks
// up changes on the next draw.
type SlotGrid struct {
	*Widget
	grid GridLayout
	ref  func(slot int) Reference
	deps SlotDeps
	log  *zap.Logger

	mu      deadlock.Mutex
	slots   []Slot
	changed atomic.Bool

	cells []*slotCell
}

// slotCell is the child widget bound to one slot.
type slotCell struct {
	*Image
	count  *Label
	itemID int
}

// NewSlotGrid creates a grid of n slots laid out in cols columns of square
// cells. ref maps a slot index to its drag reference.
func NewSlotGrid(name string, n, cols int, cell float64, ref func(slot int) Reference, deps SlotDeps) *SlotGrid {
	g := &SlotGrid{
		Widget: NewWidget(name, 0, 0),
		grid:   GridLayout{Columns: cols, CellW: cell, CellH: cell, Gap: 2, Padding: 4, Fit: true},
		ref:    ref,
		deps:   deps,
		log:    orNop(deps.Log).With(zap.String("grid", name)),
		slots:  make([]Slot, n),
	}
	for i := range g.slots {
		g.slots[i].Rect = g.grid.Cell(i)
	}
	g.Layout = g.grid
	g.Painter = PainterFunc(g.paint)
	g.OnMouse = g.onMouse
	g.OnShow = func(*Widget) { g.build() }
	g.OnHide = func(*Widget) { g.teardown() }
	g.OnDispose = func(*Widget) { g.cells = nil }
	g.build()
	return g
}

// NewInventory creates the character inventory grid.
func NewInventory(cfg Config, deps SlotDeps) *SlotGrid {
	return NewSlotGrid("inventory", cfg.InventorySlots, cfg.InventoryColumns, cfg.SlotSize,
		func(i int) Reference { return InventoryRef{Slot: i} }, deps)
}

// NewContainer creates the grid of an open container.
func NewContainer(cfg Config, containerID, n int, deps SlotDeps) *SlotGrid {
	return NewSlotGrid(fmt.Sprintf("container-%d", containerID), n, cfg.InventoryColumns, cfg.SlotSize,
		func(i int) Reference { return ContainerRef{ContainerID: containerID, Slot: i} }, deps)
}

// NumSlots returns the slot count.
func (g *SlotGrid) NumSlots() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

// Slot returns a copy of slot i.
func (g *SlotGrid) Slot(i int) Slot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slots[i]
}

// SetItem places count items in slot i. Out-of-range slots are logged and
// ignored since slot data comes from the server.
func (g *SlotGrid) SetItem(i, itemID, count int) {
	g.mu.Lock()
	if i < 0 || i >= len(g.slots) {
		g.mu.Unlock()
		g.log.Warn("slot out of range", zap.Int("slot", i), zap.Int("slots", len(g.slots)))
		return
	}
	if itemID == 0 {
		count = 0
	}
	g.slots[i].ItemID = itemID
	g.slots[i].Count = count
	g.mu.Unlock()
	g.changed.Store(true)
}

// ClearItems empties every slot.
func (g *SlotGrid) ClearItems() {
	g.mu.Lock()
	for i := range g.slots {
		g.slots[i].ItemID, g.slots[i].Count = 0, 0
	}
	g.mu.Unlock()
	g.changed.Store(true)
}

// snapshot copies the slots under the lock.
func (g *SlotGrid) snapshot() []Slot {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// build creates one child per slot and loads their sprites.
func (g *SlotGrid) build() {
	if len(g.cells) > 0 {
		return
	}
	slots := g.snapshot()
	g.cells = make([]*slotCell, len(slots))
	for i, s := range slots {
		c := &slotCell{Image: NewImage(fmt.Sprintf("slot-%d", i), s.Rect.Width, s.Rect.Height, nil)}
		c.Transient = true
		c.UserData = i
		c.count = NewLabel("count", g.deps.Font, "")
		c.count.PassThrough = true
		c.AddChild(c.count.Widget)
		c.Layout = LayoutFunc(func(w *Widget) {
			c.count.X = w.Width - c.count.Width - 2
			c.count.Y = w.Height - c.count.Height
		})
		c.OnDispose = func(*Widget) { c.SetSprite(nil) }
		g.cells[i] = c
		g.AddChild(c.Widget)
	}
	g.sync(slots)
	g.changed.Store(false)
}

// teardown disposes the slot children, releasing every sprite.
func (g *SlotGrid) teardown() {
	for _, c := range g.cells {
		c.Dispose()
	}
	g.cells = nil
}

// sync brings the children in line with the slot data.
func (g *SlotGrid) sync(slots []Slot) {
	for i, c := range g.cells {
		if i >= len(slots) {
			break
		}
		s := slots[i]
		if c.itemID != s.ItemID {
			c.itemID = s.ItemID
			c.SetSprite(g.spriteFor(s.ItemID))
		}
		if s.Count > 1 {
			c.count.SetText(humanize.Comma(int64(s.Count)))
		} else {
			c.count.SetText("")
		}
		c.Tooltip = g.tooltip(s)
	}
}

func (g *SlotGrid) spriteFor(itemID int) *Sprite {
	if itemID == 0 || g.deps.Sprites == nil {
		return nil
	}
	s, err := g.deps.Sprites(itemID)
	if err != nil {
		g.log.Warn("item sprite unavailable", zap.Int("item", itemID), zap.Error(err))
		return nil
	}
	s.HAlign, s.VAlign = AlignCenter, AlignCenter
	return s
}

func (g *SlotGrid) tooltip(s Slot) string {
	if s.Empty() {
		return ""
	}
	name := fmt.Sprintf("item %d", s.ItemID)
	if g.deps.ItemName != nil {
		if n := g.deps.ItemName(s.ItemID); n != "" {
			name = n
		}
	}
	name = titleCaser.String(name)
	if s.Count > 1 {
		return name + " (" + humanize.Comma(int64(s.Count)) + ")"
	}
	return name
}

// refresh applies slot changes made since the last call.
func (g *SlotGrid) refresh() {
	if g.changed.Swap(false) {
		g.sync(g.snapshot())
	}
}

func (g *SlotGrid) paint(dst *ebiten.Image, w *Widget, _ int64) {
	g.refresh()
	fillRect(dst, w.Bounds(), Color{0.1, 0.1, 0.12, 0.85 * w.Alpha})
	for _, c := range g.cells {
		strokeRect(dst, c.Bounds(), 1, Color{0.35, 0.35, 0.4, w.Alpha})
	}
}

// slotAt returns the index of the slot under the absolute point, or -1.
func (g *SlotGrid) slotAt(x, y float64) int {
	for i, c := range g.cells {
		if c.Bounds().Contains(x, y) {
			return i
		}
	}
	return -1
}

func (g *SlotGrid) onMouse(_ *Widget, ev MouseEvent) bool {
	g.refresh()
	d := g.deps.Decoder
	i := g.slotAt(ev.X, ev.Y)
	if i < 0 {
		// Releasing between cells keeps the item where it was.
		if ev.Phase == MouseDragEnd && d != nil && d.Active() {
			d.Cancel()
			return true
		}
		return false
	}
	s := g.Slot(i)

	switch ev.Phase {
	case MouseDragStart:
		if ev.Button != MouseButtonLeft || s.Empty() || d == nil {
			return false
		}
		var cursor *Sprite
		if src := g.cells[i].Sprite(); src != nil {
			c, err := src.Clone()
			if err != nil {
				g.log.Warn("cursor sprite unavailable", zap.Error(err))
			}
			cursor = c
		}
		d.Begin(g.ref(i), s.ItemID, s.Count, cursor)
		return true

	case MouseDragEnd:
		if d == nil || !d.Active() {
			return false
		}
		d.Drop(g.ref(i))
		if err := d.Execute(); err != nil {
			g.log.Warn("drag failed", zap.Error(err))
		}
		return true

	case MouseDoubleClick:
		if ev.Button != MouseButtonLeft || s.Empty() {
			return false
		}
		g.send(UseItemCommand{ItemID: s.ItemID, From: g.ref(i)})
		return true

	case MouseClick:
		if ev.Button != MouseButtonRight || s.Empty() {
			return false
		}
		g.send(LookAtCommand{ItemID: s.ItemID, At: g.ref(i)})
		return true
	}
	return false
}

func (g *SlotGrid) send(cmd Command) {
	if g.deps.Sender == nil {
		return
	}
	if err := g.deps.Sender.Send(cmd); err != nil {
		g.log.Warn("command not sent", zap.String("kind", cmd.Kind()), zap.Error(err))
	}
}
