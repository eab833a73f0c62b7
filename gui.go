package guing

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

// Bar names of the built-in indicators.
const (
	BarHealth  = "health"
	BarBalance = "balance"
	BarSpirit  = "spirit"
)

const statsEveryFrames = 300

// Options carries the external collaborators of a GUI. Every field is
// optional.
type Options struct {
	Resources Resources
	Sender    CommandSender
	Logger    *zap.Logger
	// ItemName resolves item names for slot tooltips.
	ItemName func(itemID int) string
	// ItemSprite overrides how item sprites are built. By default the
	// region "item-<id>" of the atlas set with SetItemAtlas is used.
	ItemSprite func(itemID int) (*Sprite, error)
	// MapTileAt maps a screen point to a map tile for drops on the game view.
	MapTileAt func(x, y float64) (MapRef, bool)
}

// GUI is the facade that owns the widget tree, the render task queue, the
// atlas store, the drag decoder and the input pipeline. All methods except
// ProcessKeyboardEvent, ProcessMouseEvent and the ones documented otherwise
// must be called from the render thread.
type GUI struct {
	cfg  Config
	opts Options
	log  *zap.Logger
	res  Resources
	font Font

	sender  CommandSender
	tasks   *TaskQueue
	store   *AtlasStore
	decoder *Decoder
	input   *Pipeline

	root     *Widget
	session  *Widget
	world    *Widget
	tooltip  *Label
	fps      *Widget
	charList *CharacterList

	inventory  *SlotGrid
	containers map[int]*SlotGrid
	journal    *Journal
	chat       *ChatLayer
	entry      *TextEntry
	bars       map[string]*Indicator

	// Queued input from the pipeline goroutine.
	qmu        deadlock.Mutex
	keyQueue   []KeyboardEvent
	mouseQueue []MouseEvent
	keyBuf     []KeyboardEvent
	mouseBuf   []MouseEvent

	// Exclusive mouse capture has its own lock so dispatch never holds the
	// queue lock.
	capMu   deadlock.Mutex
	capture *Widget

	focus     *Widget
	hover     *Widget
	dragOwner *Widget
	pointerX  float64
	pointerY  float64

	width, height float64
	character     string
	inSession     bool
	itemAtlas     AtlasHandle
	runner        *TestRunner
	screenshots   []string
	shots         sync.WaitGroup

	// debug is nil unless Config.Debug is set.
	debug  *zap.Logger
	stats  frameStats
	frames int
}

func (g *GUI) debugLog() *zap.Logger { return g.debug }

// New creates a GUI showing the character selection.
func New(cfg Config, opts Options) *GUI {
	cfg = cfg.withDefaults()
	log := newLogger(cfg, opts.Logger)

	g := &GUI{
		cfg:        cfg,
		opts:       opts,
		log:        log,
		res:        opts.Resources,
		tasks:      &TaskQueue{},
		containers: make(map[int]*SlotGrid),
		bars:       make(map[string]*Indicator),
	}
	if cfg.Debug {
		g.debug = log.Named("debug")
	}
	g.font = g.loadFont()

	var next CommandSender = LogSender{Log: log.Named("commands")}
	if opts.Sender != nil {
		next = opts.Sender
	}
	g.sender = NewThrottledSender(next, cfg.CommandsPerSecond, cfg.CommandBurst, log)
	g.store = NewAtlasStore(g.tasks, cfg.DecodeWorkers, log.Named("atlas"))
	g.decoder = NewDecoder(g.sender, log.Named("drag"))
	g.input = NewPipeline(g, cfg.gesture(), cfg.InputQueueSize, log.Named("input"))

	g.root = NewWidget("root", 0, 0)
	g.root.host = g

	g.charList = NewCharacterList(g.font, 240, g.sender, log)
	g.charList.OnLogin = func(name string) { g.StartSession(name) }
	g.root.AddChild(g.charList.Widget)

	if cfg.Debug {
		g.fps = NewFPSWidget()
		g.root.AddChild(g.fps)
	}

	g.tooltip = NewLabel("tooltip", g.font, "")
	g.tooltip.PassThrough = true
	g.tooltip.Transient = true
	g.tooltip.SetVisible(false)
	g.root.AddChild(g.tooltip.Widget)
	return g
}

func (g *GUI) loadFont() Font {
	size := g.cfg.FontSize * g.cfg.UIScale
	if g.res == nil {
		return NewFont(nil, size)
	}
	src, err := g.res.LoadFont(g.cfg.FontName)
	if err != nil {
		g.log.Warn("font unavailable, using default", zap.String("font", g.cfg.FontName), zap.Error(err))
		return NewFont(nil, size)
	}
	return NewFont(src, size)
}

// --- Accessors ---

// Config returns the effective configuration.
func (g *GUI) Config() Config { return g.cfg }

// Logger returns the GUI's logger.
func (g *GUI) Logger() *zap.Logger { return g.log }

// Root returns the root widget.
func (g *GUI) Root() *Widget { return g.root }

// Font returns the UI font.
func (g *GUI) Font() Font { return g.font }

// Tasks returns the render task queue.
func (g *GUI) Tasks() *TaskQueue { return g.tasks }

// Store returns the atlas store.
func (g *GUI) Store() *AtlasStore { return g.store }

// Decoder returns the drag-and-drop decoder.
func (g *GUI) Decoder() *Decoder { return g.decoder }

// Input returns the input pipeline. The host runs Input().Run in its own
// goroutine and feeds it from an EbitenSource.
func (g *GUI) Input() *Pipeline { return g.input }

// Sender returns the rate-limited command sender.
func (g *GUI) Sender() CommandSender { return g.sender }

// Characters returns the character selection list.
func (g *GUI) Characters() *CharacterList { return g.charList }

// Inventory returns the inventory grid, or nil outside a session.
func (g *GUI) Inventory() *SlotGrid { return g.inventory }

// Container returns an open container grid.
func (g *GUI) Container(id int) *SlotGrid { return g.containers[id] }

// Journal returns the journal, or nil outside a session.
func (g *GUI) Journal() *Journal { return g.journal }

// Chat returns the chat bubble layer, or nil outside a session.
func (g *GUI) Chat() *ChatLayer { return g.chat }

// Entry returns the chat input, or nil outside a session.
func (g *GUI) Entry() *TextEntry { return g.entry }

// Bar returns a named indicator, or nil.
func (g *GUI) Bar(name string) *Indicator { return g.bars[name] }

// InSession reports whether a character is logged in.
func (g *GUI) InSession() bool { return g.inSession }

// Character returns the logged in character.
func (g *GUI) Character() string { return g.character }

// SetTestRunner attaches a scripted input runner stepped from Update.
func (g *GUI) SetTestRunner(r *TestRunner) { g.runner = r }

// --- Frame ---

// Layout resizes the GUI to the logical screen size.
func (g *GUI) Layout(width, height float64) {
	if width == g.width && height == g.height {
		return
	}
	g.width, g.height = width, height
	g.root.SetSize(width, height)
	g.centerCharacterList()
	if g.session != nil {
		g.session.SetSize(width, height)
		g.world.SetSize(width, height)
		g.chat.SetSize(width, height)
	}
}

func (g *GUI) centerCharacterList() {
	g.charList.RefreshLayout()
	g.charList.SetPosition((g.width-g.charList.Width)/2, (g.height-g.charList.Height)/3)
}

// Update dispatches queued input: every keyboard event first, then every
// mouse event, in arrival order.
func (g *GUI) Update() {
	start := time.Now()
	if g.runner != nil {
		g.runner.step(g)
	}
	keys, mouse := g.drainInput()
	for _, ev := range keys {
		g.dispatchKey(ev)
	}
	for _, ev := range mouse {
		g.dispatchMouse(ev)
	}
	if g.debug != nil {
		g.stats.inputTime += time.Since(start)
		g.stats.keyCount += len(keys)
		g.stats.mouseCount += len(mouse)
	}
}

// DrawFrame runs the pending render tasks, draws the tree and the dragged
// item at the pointer, then captures queued screenshots.
func (g *GUI) DrawFrame(screen *ebiten.Image, deltaMillis int64) {
	start := time.Now()
	g.stats.taskCount = g.tasks.Len()
	g.tasks.Run(deltaMillis)
	tasksDone := time.Now()

	g.root.Draw(screen, deltaMillis)
	if s := g.decoder.CursorSprite(); s != nil {
		s.Draw(screen, g.pointerX, g.pointerY, 0.8)
	}
	g.flushScreenshots(screen)

	if g.debug != nil {
		g.stats.taskTime += tasksDone.Sub(start)
		g.stats.drawTime += time.Since(tasksDone)
		g.frames++
		if g.frames%statsEveryFrames == 0 {
			logFrameStats(g.log, g.stats)
			g.stats = frameStats{}
		}
	}
}

// --- Session ---

// ShowCharacterSelect lists the account's characters.
func (g *GUI) ShowCharacterSelect(names []string) {
	g.charList.SetCharacters(names)
	g.centerCharacterList()
	g.charList.SetVisible(!g.inSession)
}

// StartSession builds the in-game interface for character and restores
// its saved layout. Any earlier session is ended first.
func (g *GUI) StartSession(character string) {
	if g.inSession {
		g.EndSession()
	}
	g.character = character
	g.buildSession()
	g.charList.SetVisible(false)
	g.inSession = true

	if err := g.LoadState(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.log.Debug("no saved layout", zap.String("character", character))
		} else {
			g.log.Warn("saved layout ignored, using defaults", zap.String("character", character), zap.Error(err))
		}
	}
	g.log.Info("session started", zap.String("character", character))
}

// EndSession saves the layout, tears the in-game interface down and returns
// to the character selection.
func (g *GUI) EndSession() {
	if !g.inSession {
		return
	}
	if err := g.SaveState(); err != nil {
		g.log.Warn("layout not saved", zap.String("character", g.character), zap.Error(err))
	}
	g.SetExclusiveMouse(nil)
	g.SetFocus(nil)
	g.decoder.Cancel()
	g.session.Dispose()
	g.session, g.world = nil, nil
	g.inventory, g.journal, g.chat, g.entry = nil, nil, nil, nil
	clear(g.containers)
	clear(g.bars)
	g.inSession = false
	g.charList.SetVisible(true)
	g.log.Info("session ended", zap.String("character", g.character))
}

// Close ends the session, stops the input pipeline and waits for pending
// screenshot files.
func (g *GUI) Close() {
	g.EndSession()
	g.input.Stop()
	g.shots.Wait()
}

// buildSession creates the default in-game tree.
func (g *GUI) buildSession() {
	g.session = NewWidget("session", g.width, g.height)
	g.root.AddChildAt(g.session, 0)

	g.world = g.newWorldView()
	g.session.AddChild(g.world)

	g.chat = NewChatLayer(g.cfg, g.font, g.width, g.height)
	g.session.AddChild(g.chat.Widget)

	bars := NewWidget("bars", 0, 0)
	bars.Layout = StackLayout{Vertical: true, Spacing: 3, Padding: 4, Fit: true}
	bars.SetPosition(8, 8)
	for _, b := range []struct {
		name string
		fill Color
	}{
		{BarHealth, Color{0.8, 0.1, 0.1, 1}},
		{BarBalance, Color{0.1, 0.3, 0.9, 1}},
		{BarSpirit, Color{0.6, 0.2, 0.8, 1}},
	} {
		ind := NewIndicator(b.name, 160, 10, b.fill, g.cfg)
		g.bars[b.name] = ind
		bars.AddChild(ind.Widget)
	}
	g.session.AddChild(bars)

	deps := g.slotDeps()
	g.inventory = NewInventory(g.cfg, deps)
	g.inventory.RefreshLayout()
	g.inventory.SetPosition(g.width-g.inventory.Width-8, 8)
	g.session.AddChild(g.inventory.Widget)

	jw, jh := max(g.width*0.45, 200), max(g.height*0.25, 80)
	g.journal = NewJournal(g.cfg, g.font, jw, jh, g.log)
	g.journal.SetPosition(8, g.height-jh-g.font.LineHeight()-20)
	g.session.AddChild(g.journal.Widget)

	g.entry = NewTextEntry("entry", g.font, jw, g.font.LineHeight()+8, g, g.sender, g.log)
	g.entry.SetPosition(8, g.height-g.entry.Height-4)
	g.session.AddChild(g.entry.Widget)

	logout := NewButton("logout", 72, g.font.LineHeight()+8, g.font, "Logout", g.EndSession)
	logout.Transient = true
	logout.SetPosition(g.width-logout.Width-8, g.height-logout.Height-4)
	g.session.AddChild(logout.Widget)
}

func (g *GUI) slotDeps() SlotDeps {
	sprites := g.opts.ItemSprite
	if sprites == nil {
		sprites = g.itemSprite
	}
	return SlotDeps{
		Decoder:  g.decoder,
		Sender:   g.sender,
		Sprites:  sprites,
		ItemName: g.opts.ItemName,
		Font:     g.font,
		Log:      g.log,
	}
}

// SetItemAtlas selects the atlas item sprites are cut from.
func (g *GUI) SetItemAtlas(h AtlasHandle) { g.itemAtlas = h }

func (g *GUI) itemSprite(itemID int) (*Sprite, error) {
	if g.itemAtlas.IsZero() {
		return nil, fmt.Errorf("item %d: no item atlas", itemID)
	}
	t, err := g.store.Texture(g.itemAtlas, fmt.Sprintf("item-%d", itemID))
	if err != nil {
		return nil, err
	}
	return NewSprite(t), nil
}

// OpenContainer shows a container grid with n slots. Opening an already
// open container returns the existing grid.
func (g *GUI) OpenContainer(id, n int) *SlotGrid {
	if !g.inSession {
		return nil
	}
	if c, ok := g.containers[id]; ok {
		return c
	}
	c := NewContainer(g.cfg, id, n, g.slotDeps())
	c.RefreshLayout()
	offset := float64(len(g.containers)) * 24
	c.SetPosition(g.width-g.inventory.Width-c.Width-16-offset, 8+offset)
	g.containers[id] = c
	g.session.AddChild(c.Widget)
	return c
}

// CloseContainer removes a container grid and releases its sprites.
func (g *GUI) CloseContainer(id int) {
	c, ok := g.containers[id]
	if !ok {
		return
	}
	delete(g.containers, id)
	c.Dispose()
}

// SetBar updates a named indicator from a current/maximum pair.
func (g *GUI) SetBar(name string, cur, maximum int) {
	if b := g.bars[name]; b != nil {
		b.SetRatio(cur, maximum)
	}
}

// newWorldView is the game view below every window. Dragging on it captures
// the mouse and walks the character toward the pointer; item drags released
// on it are dropped on the map tile under the pointer.
func (g *GUI) newWorldView() *Widget {
	w := NewWidget("world", g.width, g.height)
	w.Transient = true
	w.OnMouse = func(w *Widget, ev MouseEvent) bool {
		switch ev.Phase {
		case MouseDragStart:
			if ev.Button != MouseButtonLeft || g.decoder.Active() {
				return false
			}
			g.SetExclusiveMouse(w)
			g.walkToward(w, ev.X, ev.Y)
			return true
		case MouseDrag:
			if g.ExclusiveMouse() != w {
				return false
			}
			g.walkToward(w, ev.X, ev.Y)
			return true
		case MouseDragEnd:
			if g.ExclusiveMouse() == w {
				g.SetExclusiveMouse(nil)
				return true
			}
			if g.decoder.Active() {
				g.releaseDrag(ev.X, ev.Y)
				return true
			}
		case MouseClick:
			if ev.Button != MouseButtonRight || g.opts.MapTileAt == nil {
				return false
			}
			if tile, ok := g.opts.MapTileAt(ev.X, ev.Y); ok {
				g.send(LookAtCommand{At: tile})
				return true
			}
		}
		return false
	}
	return w
}

func (g *GUI) walkToward(w *Widget, x, y float64) {
	b := w.Bounds()
	dx := sign(x - (b.X + b.Width/2))
	dy := sign(y - (b.Y + b.Height/2))
	if dx == 0 && dy == 0 {
		return
	}
	if err := g.sender.Send(MoveCommand{DX: dx, DY: dy}); err != nil && !errors.Is(err, ErrThrottled) {
		g.log.Warn("move not sent", zap.Error(err))
	}
}

func sign(v float64) int {
	switch {
	case v > 0.5:
		return 1
	case v < -0.5:
		return -1
	}
	return 0
}

// dropOnMap finishes an item drag released over the game view.
// releaseDrag ends an item drag released outside every slot. Only a release
// on the game view itself drops on the map; any window cancels the drag.
func (g *GUI) releaseDrag(x, y float64) {
	if g.world == nil || g.root.WidgetAt(x, y) != g.world {
		g.decoder.Cancel()
		return
	}
	g.dropOnMap(x, y)
}

func (g *GUI) dropOnMap(x, y float64) {
	if g.opts.MapTileAt == nil {
		g.decoder.Cancel()
		return
	}
	tile, ok := g.opts.MapTileAt(x, y)
	if !ok {
		g.decoder.Cancel()
		return
	}
	g.decoder.Drop(tile)
	if err := g.decoder.Execute(); err != nil {
		g.log.Warn("drop failed", zap.Error(err))
	}
}

func (g *GUI) send(cmd Command) {
	if err := g.sender.Send(cmd); err != nil {
		g.log.Warn("command not sent", zap.String("kind", cmd.Kind()), zap.Error(err))
	}
}
