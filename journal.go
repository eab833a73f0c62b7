package guing

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hako/durafmt"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

// shortUnits abbreviates durafmt output, e.g. "3 m".
var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

const (
	journalPadding   = 4
	journalAgeColumn = 48
	journalWheelStep = 3
)

// JournalEntry is one message in the journal.
type JournalEntry struct {
	Time  time.Time
	Text  string
	Color Color
}

type journalLine struct {
	text  string
	entry int // index into entries
	first bool
}

// Journal is a scrollable log of wrapped text lines. It keeps at most
// maxEntries messages, sticks to the newest line unless the player scrolled
// up, and clips its text to its bounds. Add, AddColored and Len may be
// called from any goroutine; everything else belongs to the render thread.
type Journal struct {
	*Widget
	Font    Font
	ShowAge bool

	mu         deadlock.Mutex
	entries    []JournalEntry
	maxEntries int
	pending    []JournalEntry

	lines     []journalLine
	wrapWidth float64
	offset    int // lines scrolled up from the bottom
	now       func() time.Time
	log       *zap.Logger
}

// NewJournal creates an empty journal.
func NewJournal(cfg Config, font Font, width, height float64, log *zap.Logger) *Journal {
	j := &Journal{
		Widget:     NewWidget("journal", width, height),
		Font:       font,
		ShowAge:    cfg.JournalShowAge,
		maxEntries: max(cfg.JournalMaxEntries, 1),
		now:        time.Now,
		log:        orNop(log),
	}
	j.Clip = true
	j.Painter = j
	j.OnMouse = j.onMouse
	j.OnSave = func(*Widget) map[string]string {
		if j.ShowAge {
			return map[string]string{"showAge": "true"}
		}
		return map[string]string{"showAge": "false"}
	}
	j.OnRestore = func(_ *Widget, props map[string]string) {
		if v, ok := props["showAge"]; ok {
			j.ShowAge = v == "true"
			j.wrapWidth = 0
		}
	}
	return j
}

// Add appends a white message.
func (j *Journal) Add(text string) {
	j.AddColored(text, ColorWhite)
}

// AddColored appends a message. Safe to call from any goroutine; the text
// is wrapped on the render thread.
func (j *Journal) AddColored(text string, c Color) {
	j.mu.Lock()
	j.pending = append(j.pending, JournalEntry{Time: j.now(), Text: text, Color: c})
	j.mu.Unlock()
}

// Len returns the number of stored entries, including ones not yet drawn.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return min(len(j.entries)+len(j.pending), j.maxEntries)
}

// Clear removes every entry. Render thread only.
func (j *Journal) Clear() {
	j.mu.Lock()
	j.pending = nil
	j.entries = nil
	j.mu.Unlock()
	j.lines = nil
	j.offset = 0
}

// flush moves pending entries in, drops the oldest ones over the cap and
// rewraps when needed. Render thread only.
func (j *Journal) flush() {
	j.mu.Lock()
	added := j.pending
	j.pending = nil
	j.entries = append(j.entries, added...)
	dropped := 0
	if over := len(j.entries) - j.maxEntries; over > 0 {
		dropped = over
		j.entries = append(j.entries[:0], j.entries[over:]...)
	}
	j.mu.Unlock()

	width := j.textWidth()
	if len(added) == 0 && width == j.wrapWidth {
		return
	}

	before := len(j.lines)
	if width != j.wrapWidth || dropped > 0 {
		j.rewrap(width)
	} else {
		for i := len(j.entries) - len(added); i < len(j.entries); i++ {
			j.appendLines(i)
		}
	}
	// Keep the view on the same text while scrolled up.
	if j.offset > 0 && dropped == 0 {
		j.offset += len(j.lines) - before
	}
	j.clampOffset()
}

func (j *Journal) textWidth() float64 {
	w := j.Width - 2*journalPadding
	if j.ShowAge {
		w -= journalAgeColumn
	}
	return max(w, 1)
}

func (j *Journal) rewrap(width float64) {
	j.wrapWidth = width
	j.lines = j.lines[:0]
	for i := range j.entries {
		j.appendLines(i)
	}
}

func (j *Journal) appendLines(i int) {
	for k, l := range j.Font.Wrap(j.entries[i].Text, j.wrapWidth) {
		j.lines = append(j.lines, journalLine{text: l, entry: i, first: k == 0})
	}
}

// visibleLines is how many lines fit in the widget.
func (j *Journal) visibleLines() int {
	lh := j.Font.LineHeight()
	if lh <= 0 {
		return len(j.lines)
	}
	return max(int((j.Height-2*journalPadding)/lh), 1)
}

func (j *Journal) clampOffset() {
	maxOff := max(len(j.lines)-j.visibleLines(), 0)
	j.offset = min(max(j.offset, 0), maxOff)
}

// ScrollBy scrolls n lines toward older messages (negative scrolls back
// toward the newest).
func (j *Journal) ScrollBy(n int) {
	j.flush()
	j.offset += n
	j.clampOffset()
}

// ScrollToBottom shows the newest line.
func (j *Journal) ScrollToBottom() {
	j.offset = 0
}

// AtBottom reports whether the newest line is shown.
func (j *Journal) AtBottom() bool {
	return j.offset == 0
}

// ScrollOffset returns how many lines the view is scrolled up.
func (j *Journal) ScrollOffset() int {
	return j.offset
}

// VisibleText returns the wrapped lines currently in view, oldest first.
func (j *Journal) VisibleText() []string {
	j.flush()
	first, last := j.window()
	out := make([]string, 0, last-first)
	for _, l := range j.lines[first:last] {
		out = append(out, l.text)
	}
	return out
}

// window returns the half-open range of lines in view.
func (j *Journal) window() (first, last int) {
	last = len(j.lines) - j.offset
	first = max(last-j.visibleLines(), 0)
	return first, last
}

func (j *Journal) onMouse(_ *Widget, ev MouseEvent) bool {
	if ev.Phase != MouseWheel || ev.WheelY == 0 {
		return false
	}
	// Wheel up (positive) scrolls toward older lines.
	step := journalWheelStep
	if ev.WheelY < 0 {
		step = -step
	}
	j.ScrollBy(step)
	return true
}

// Paint implements Painter.
func (j *Journal) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	j.flush()
	b := w.Bounds()
	fillRect(dst, b, Color{0, 0, 0, 0.55 * w.Alpha})

	clip := dst.SubImage(rectToImage(b)).(*ebiten.Image)
	lh := j.Font.LineHeight()
	first, last := j.window()
	y := b.Y + b.Height - journalPadding - float64(last-first)*lh
	now := j.now()
	for _, l := range j.lines[first:last] {
		e := j.entries[l.entry]
		j.Font.Draw(clip, l.text, b.X+journalPadding, y, e.Color.WithAlpha(w.Alpha))
		if j.ShowAge && l.first {
			age := durafmt.Parse(now.Sub(e.Time).Truncate(time.Second)).LimitFirstN(1).Format(shortUnits)
			aw, _ := j.Font.Measure(age)
			j.Font.Draw(clip, age, b.X+b.Width-journalPadding-aw, y, Color{0.6, 0.6, 0.6, w.Alpha})
		}
		y += lh
	}
}
