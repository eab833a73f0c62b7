package guing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap/zaptest"
)

// newTestGUI returns an 800x600 GUI that records commands and keeps its
// layout files in a temporary directory.
func newTestGUI(t *testing.T, opts Options) (*GUI, *recordingSender) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StatePath = filepath.Join(t.TempDir(), "gui.state")
	cfg.CommandsPerSecond = 10000
	cfg.CommandBurst = 10000
	rec := &recordingSender{}
	opts.Sender = rec
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	g := New(cfg, opts)
	g.Layout(800, 600)
	t.Cleanup(g.input.Stop)
	return g, rec
}

func tileAt(x, y float64) (MapRef, bool) {
	return MapRef{X: int(x / 32), Y: int(y / 32)}, true
}

func click(x, y float64, b MouseButton) MouseEvent {
	return MouseEvent{X: x, Y: y, Button: b, Phase: MouseClick}
}

func keyDown(k ebiten.Key) KeyboardEvent {
	return KeyboardEvent{Key: k, Phase: KeyDown}
}

func TestGUIStartsAtCharacterSelect(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	if g.InSession() || !g.Characters().Visible() {
		t.Fatal("a new GUI should show the character list")
	}
	if g.Inventory() != nil || g.Journal() != nil || g.Bar(BarHealth) != nil {
		t.Error("session widgets should not exist before login")
	}
	if g.OpenContainer(1, 4) != nil {
		t.Error("containers cannot open outside a session")
	}
}

func TestGUICharacterLoginByKeyboard(t *testing.T) {
	g, rec := newTestGUI(t, Options{})
	g.ShowCharacterSelect([]string{"aria", "bob"})
	g.ProcessKeyboardEvent(keyDown(ebiten.KeyArrowDown))
	g.ProcessKeyboardEvent(keyDown(ebiten.KeyArrowDown))
	g.ProcessKeyboardEvent(keyDown(ebiten.KeyEnter))
	g.Update()

	if !g.InSession() || g.Character() != "bob" {
		t.Fatalf("session = %v as %q, want bob", g.InSession(), g.Character())
	}
	if got := rec.sent(); len(got) != 1 || got[0] != (LoginCommand{Character: "bob"}) {
		t.Errorf("sent %v, want a login for bob", got)
	}
	if g.Characters().Visible() {
		t.Error("the character list should hide during a session")
	}
	for _, name := range []string{BarHealth, BarBalance, BarSpirit} {
		if g.Bar(name) == nil {
			t.Errorf("bar %q missing", name)
		}
	}
}

func TestGUIExclusiveMouse(t *testing.T) {
	g, rec := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.Inventory().SetItem(0, 42, 1)
	g.DrawFrame(nil, 16)

	var got []MouseEvent
	captor := NewWidget("captor", 10, 10)
	captor.OnMouse = func(_ *Widget, ev MouseEvent) bool {
		got = append(got, ev)
		return true
	}
	g.Root().AddChild(captor)
	g.SetExclusiveMouse(captor)

	// A double-click on the first inventory slot would normally use the item.
	b := g.Inventory().cells[0].Bounds()
	ev := MouseEvent{X: b.X + 5, Y: b.Y + 5, Button: MouseButtonLeft, Phase: MouseDoubleClick}
	g.ProcessMouseEvent(ev)
	g.Update()

	if len(got) != 1 || got[0] != ev {
		t.Errorf("captor got %v, want the double-click", got)
	}
	if len(rec.sent()) != 0 {
		t.Errorf("widgets under the pointer must not see captured events, sent %v", rec.sent())
	}

	captor.SetVisible(false)
	if g.ExclusiveMouse() != nil {
		t.Fatal("hiding the captor should release capture")
	}
	g.ProcessMouseEvent(ev)
	g.Update()
	if len(rec.sent()) != 1 {
		t.Errorf("after release the slot should receive the double-click, sent %v", rec.sent())
	}
}

func TestGUIRemovingCaptorReleases(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	w := NewWidget("w", 1, 1)
	g.Root().AddChild(w)
	g.SetExclusiveMouse(w)
	g.Root().RemoveChild(w)
	if g.ExclusiveMouse() != nil {
		t.Error("removing the captor should release capture")
	}
}

func TestGUIWorldDragWalks(t *testing.T) {
	g, rec := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.DrawFrame(nil, 16)

	g.ProcessMouseEvent(MouseEvent{X: 400, Y: 300, StartX: 400, StartY: 300, Button: MouseButtonLeft, Phase: MouseDragStart})
	g.Update()
	if g.ExclusiveMouse() == nil || g.ExclusiveMouse().Name != "world" {
		t.Fatal("dragging on the game view should capture the mouse")
	}

	// The journal would take this point without capture.
	g.ProcessMouseEvent(MouseEvent{X: 20, Y: 500, StartX: 400, StartY: 300, Button: MouseButtonLeft, Phase: MouseDrag})
	g.ProcessMouseEvent(MouseEvent{X: 20, Y: 500, StartX: 400, StartY: 300, Button: MouseButtonLeft, Phase: MouseDragEnd})
	g.Update()

	if got := rec.sent(); len(got) != 1 || got[0] != (MoveCommand{DX: -1, DY: 1}) {
		t.Errorf("sent %v, want one step down-left", got)
	}
	if g.ExclusiveMouse() != nil {
		t.Error("drag end should release capture")
	}
}

func TestGUIDropItemOnMap(t *testing.T) {
	g, rec := newTestGUI(t, Options{MapTileAt: tileAt})
	g.StartSession("aria")
	g.DrawFrame(nil, 16)
	g.Inventory().SetItem(0, 42, 2)

	b := g.Inventory().cells[0].Bounds()
	x, y := b.X+b.Width/2, b.Y+b.Height/2
	g.ProcessMouseEvent(MouseEvent{X: x, Y: y, StartX: x, StartY: y, Button: MouseButtonLeft, Phase: MouseDragStart})
	g.Update()
	if !g.Decoder().Active() {
		t.Fatal("dragging a filled slot should start an item drag")
	}
	if g.ExclusiveMouse() != nil {
		t.Error("an item drag must not capture the mouse for the game view")
	}

	g.ProcessMouseEvent(MouseEvent{X: 320, Y: 320, StartX: x, StartY: y, Button: MouseButtonLeft, Phase: MouseDragEnd})
	g.Update()

	want := UseItemCommand{ItemID: 42, From: InventoryRef{Slot: 0}, Target: MapRef{X: 10, Y: 10}}
	if got := rec.sent(); len(got) != 1 || got[0] != want {
		t.Errorf("sent %v, want %+v", got, want)
	}
	if g.Decoder().Active() {
		t.Error("the decoder should be idle after the drop")
	}
}

func TestGUIReleaseOnWindowCancelsDrag(t *testing.T) {
	g, rec := newTestGUI(t, Options{MapTileAt: tileAt})
	g.StartSession("aria")
	g.DrawFrame(nil, 16)
	g.Inventory().SetItem(0, 42, 2)

	inv := g.Inventory().Bounds()
	jb := g.Journal().Bounds()
	for _, at := range []Vec2{
		{X: inv.X + 1, Y: inv.Y + 1},
		{X: jb.X + jb.Width/2, Y: jb.Y + jb.Height/2},
	} {
		b := g.Inventory().cells[0].Bounds()
		x, y := b.X+b.Width/2, b.Y+b.Height/2
		g.ProcessMouseEvent(MouseEvent{X: x, Y: y, StartX: x, StartY: y, Button: MouseButtonLeft, Phase: MouseDragStart})
		g.Update()
		if !g.Decoder().Active() {
			t.Fatal("dragging a filled slot should start an item drag")
		}
		g.ProcessMouseEvent(MouseEvent{X: at.X, Y: at.Y, StartX: x, StartY: y, Button: MouseButtonLeft, Phase: MouseDragEnd})
		g.Update()
		if g.Decoder().Active() {
			t.Errorf("release at %v: the drag should be cancelled", at)
		}
	}
	if got := rec.sent(); len(got) != 0 {
		t.Errorf("sent %v, releases over windows must not use the item on the map", got)
	}
}

func TestGUIEscapeCancelsDrag(t *testing.T) {
	g, rec := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.Decoder().Begin(InventoryRef{Slot: 1}, 5, 1, nil)
	g.ProcessKeyboardEvent(keyDown(ebiten.KeyEscape))
	g.Update()
	if g.Decoder().Active() || len(rec.sent()) != 0 {
		t.Error("escape should cancel the drag without sending")
	}
}

func TestGUIChatEntryFocus(t *testing.T) {
	g, rec := newTestGUI(t, Options{})
	g.StartSession("aria")
	e := g.Entry()

	g.ProcessKeyboardEvent(keyDown(ebiten.KeyEnter))
	g.Update()
	if !e.Focused() {
		t.Fatal("enter should focus the chat entry")
	}
	for _, r := range "hi there" {
		g.ProcessKeyboardEvent(KeyboardEvent{Rune: r, Phase: KeyChar})
	}
	g.ProcessKeyboardEvent(keyDown(ebiten.KeyBackspace))
	g.Update()
	if e.Text() != "hi ther" {
		t.Fatalf("entry text = %q", e.Text())
	}

	g.ProcessKeyboardEvent(keyDown(ebiten.KeyEnter))
	g.Update()
	if got := rec.sent(); len(got) != 1 || got[0] != (SayCommand{Text: "hi ther"}) {
		t.Errorf("sent %v, want the chat line", got)
	}
	if e.Focused() || e.Text() != "" {
		t.Error("sending should clear the entry and drop focus")
	}

	// Clicking elsewhere drops focus too.
	g.SetFocus(e.Widget)
	g.ProcessMouseEvent(click(400, 300, MouseButtonLeft))
	g.Update()
	if g.Focused() != nil {
		t.Error("a click outside the entry should clear focus")
	}
}

func TestGUITooltip(t *testing.T) {
	g, _ := newTestGUI(t, Options{ItemName: func(int) string { return "healing potion" }})
	g.StartSession("aria")
	g.DrawFrame(nil, 16)
	g.Inventory().SetItem(0, 3, 5)
	g.Inventory().refresh()

	b := g.Inventory().cells[0].Bounds()
	g.ProcessMouseEvent(MouseEvent{X: b.X + 2, Y: b.Y + 2, Phase: MouseMove})
	g.Update()
	if !g.tooltip.Visible() || g.tooltip.Text() != "Healing Potion (5)" {
		t.Errorf("tooltip visible=%v text=%q", g.tooltip.Visible(), g.tooltip.Text())
	}
	if g.tooltip.X+g.tooltip.Width > 800 {
		t.Error("the tooltip should stay on screen")
	}

	g.ProcessMouseEvent(MouseEvent{X: 400, Y: 300, Phase: MouseMove})
	g.Update()
	if g.tooltip.Visible() {
		t.Error("the tooltip should hide over widgets without one")
	}
}

func TestGUIContainers(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	g.StartSession("aria")
	c := g.OpenContainer(7, 8)
	if c == nil || g.OpenContainer(7, 8) != c || g.Container(7) != c {
		t.Fatal("opening a container twice should return the same grid")
	}
	g.CloseContainer(7)
	if g.Container(7) != nil || !c.IsDisposed() {
		t.Error("closing should dispose the grid")
	}
	g.CloseContainer(7) // no-op
}

func TestGUISetBar(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.SetBar(BarHealth, 25, 100)
	g.SetBar("mana", 1, 2) // unknown bars are ignored
	if got := g.Bar(BarHealth).Value(); got != 0.25 {
		t.Errorf("health = %v, want 0.25", got)
	}
}

func TestGUILayoutPersistence(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.Journal().SetPosition(123, 45)
	g.Journal().ShowAge = !g.Journal().ShowAge
	showAge := g.Journal().ShowAge
	g.Inventory().SetVisible(false)
	g.EndSession()

	if _, err := os.Stat(g.cfg.StatePath + ".aria"); err != nil {
		t.Fatalf("layout not written: %v", err)
	}
	if g.InSession() || !g.Characters().Visible() {
		t.Fatal("ending the session should return to the character list")
	}

	g.StartSession("aria")
	if j := g.Journal(); j.X != 123 || j.Y != 45 || j.ShowAge != showAge {
		t.Errorf("journal at (%v, %v) showAge=%v, want (123, 45) %v", j.X, j.Y, j.ShowAge, showAge)
	}
	if g.Inventory().Visible() {
		t.Error("the inventory should stay hidden")
	}
	if s := g.session; s.Width != 800 || s.Height != 600 {
		t.Errorf("session size %vx%v, want the current screen", s.Width, s.Height)
	}

	// Other characters keep their own layout.
	g.StartSession("bob")
	if g.Journal().X == 123 || !g.Inventory().Visible() {
		t.Error("bob should start from the default layout")
	}
}

func TestGUIBadLayoutFallsBack(t *testing.T) {
	newer, err := EncodeSnapshot(Snapshot{Version: StateVersion + 1, Character: "aria", Root: WidgetState{Name: "session"}})
	if err != nil {
		t.Fatal(err)
	}
	stranger, err := EncodeSnapshot(Snapshot{Version: StateVersion, Character: "bob", Root: WidgetState{Name: "session"}})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("not a layout")},
		{"version", newer},
		{"other character", stranger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGUI(t, Options{})
			if err := os.WriteFile(g.cfg.StatePath+".aria", tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			g.StartSession("aria")
			if !g.InSession() || !g.Inventory().Visible() || g.Journal() == nil {
				t.Error("a bad layout should leave the default session")
			}
		})
	}
}

func TestGUILogoutButton(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.DrawFrame(nil, 16)
	logout := g.session.FindByName("logout")
	if logout == nil {
		t.Fatal("logout button missing")
	}
	b := logout.Bounds()
	g.ProcessMouseEvent(click(b.X+b.Width/2, b.Y+b.Height/2, MouseButtonLeft))
	g.Update()
	if g.InSession() {
		t.Error("clicking logout should end the session")
	}
}

func TestGUIEndSessionCancelsDrag(t *testing.T) {
	g, _ := newTestGUI(t, Options{})
	g.StartSession("aria")
	g.Decoder().Begin(InventoryRef{}, 1, 1, nil)
	g.SetFocus(g.Entry().Widget)
	g.Close()
	if g.Decoder().Active() || g.Focused() != nil {
		t.Error("ending the session should drop the drag and focus")
	}
}
