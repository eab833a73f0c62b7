package guing

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const (
	caretBlinkMillis = 500
	maxEntryRunes    = 255
)

// FocusController owns keyboard focus. GUI implements it.
type FocusController interface {
	SetFocus(w *Widget)
	Focused() *Widget
}

// TextEntry is the single-line chat input. Enter focuses it; while focused,
// typed characters edit the line, Enter sends it as a SayCommand and Escape
// discards it. Either key gives focus back.
type TextEntry struct {
	*Widget
	Font   Font
	Prompt string

	text    []rune
	focus   FocusController
	sender  CommandSender
	log     *zap.Logger
	blinkMs int64
	caretOn bool
}

// NewTextEntry creates an empty entry.
func NewTextEntry(name string, font Font, width, height float64, focus FocusController, sender CommandSender, log *zap.Logger) *TextEntry {
	e := &TextEntry{
		Widget: NewWidget(name, width, height),
		Font:   font,
		Prompt: "> ",
		focus:  focus,
		sender: sender,
		log:    orNop(log),
	}
	e.Painter = e
	e.OnKeyboard = e.onKey
	e.OnMouse = func(_ *Widget, ev MouseEvent) bool {
		if ev.Phase != MouseClick || ev.Button != MouseButtonLeft {
			return false
		}
		e.focus.SetFocus(e.Widget)
		return true
	}
	e.OnHide = func(*Widget) { e.text = e.text[:0] }
	return e
}

// Text returns the current line.
func (e *TextEntry) Text() string { return string(e.text) }

// SetText replaces the line.
func (e *TextEntry) SetText(s string) {
	e.text = []rune(s)
	if len(e.text) > maxEntryRunes {
		e.text = e.text[:maxEntryRunes]
	}
}

// Focused reports whether the entry has keyboard focus.
func (e *TextEntry) Focused() bool {
	return e.focus != nil && e.focus.Focused() == e.Widget
}

func (e *TextEntry) onKey(_ *Widget, ev KeyboardEvent) bool {
	if !e.Focused() {
		if ev.Phase == KeyDown && ev.Key == ebiten.KeyEnter && !ev.Repeated {
			e.focus.SetFocus(e.Widget)
			return true
		}
		return false
	}
	switch ev.Phase {
	case KeyChar:
		if ev.Rune < ' ' || len(e.text) >= maxEntryRunes {
			return true
		}
		e.text = append(e.text, ev.Rune)
	case KeyDown:
		switch ev.Key {
		case ebiten.KeyBackspace:
			if len(e.text) > 0 {
				e.text = e.text[:len(e.text)-1]
			}
		case ebiten.KeyEnter:
			if !ev.Repeated {
				e.submit()
			}
		case ebiten.KeyEscape:
			e.text = e.text[:0]
			e.focus.SetFocus(nil)
		}
	}
	// A focused entry swallows every key so game shortcuts do not fire
	// while typing.
	return true
}

func (e *TextEntry) submit() {
	line := strings.TrimSpace(string(e.text))
	e.text = e.text[:0]
	e.focus.SetFocus(nil)
	if line == "" || e.sender == nil {
		return
	}
	if err := e.sender.Send(SayCommand{Text: line}); err != nil {
		e.log.Warn("chat line not sent", zap.Error(err))
	}
}

// Paint implements Painter.
func (e *TextEntry) Paint(dst *ebiten.Image, w *Widget, deltaMillis int64) {
	b := w.Bounds()
	focused := e.Focused()
	bg := Color{0, 0, 0, 0.4}
	if focused {
		bg.A = 0.7
	}
	fillRect(dst, b, bg.WithAlpha(w.Alpha))

	line := e.Prompt + string(e.text)
	lh := e.Font.LineHeight()
	y := b.Y + (b.Height-lh)/2
	e.Font.Draw(dst, line, b.X+4, y, ColorWhite.WithAlpha(w.Alpha))

	if !focused {
		e.caretOn = false
		e.blinkMs = 0
		return
	}
	e.blinkMs += deltaMillis
	if e.blinkMs >= caretBlinkMillis {
		e.blinkMs %= caretBlinkMillis
		e.caretOn = !e.caretOn
	}
	if e.caretOn {
		tw, _ := e.Font.Measure(line)
		fillRect(dst, Rect{X: b.X + 4 + tw + 1, Y: y, Width: 2, Height: lh}, ColorWhite.WithAlpha(w.Alpha))
	}
}

// RuneCount returns the length of the line in runes.
func (e *TextEntry) RuneCount() int {
	return len(e.text)
}
