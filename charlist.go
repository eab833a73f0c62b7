package guing

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// CharacterList lets the player pick a character. A click selects a row, a
// double-click (or Enter on the selection) logs in.
type CharacterList struct {
	*Widget
	font     Font
	rowH     float64
	names    []string
	selected int

	sender  CommandSender
	log     *zap.Logger
	OnLogin func(name string)
}

// NewCharacterList creates an empty list.
func NewCharacterList(font Font, width float64, sender CommandSender, log *zap.Logger) *CharacterList {
	l := &CharacterList{
		Widget:   NewWidget("characters", width, 0),
		font:     font,
		rowH:     max(font.LineHeight()+8, 20),
		selected: -1,
		sender:   sender,
		log:      orNop(log),
	}
	l.Layout = StackLayout{Vertical: true, Spacing: 2, Padding: 6, Fit: true}
	l.Painter = PainterFunc(func(dst *ebiten.Image, w *Widget, _ int64) {
		fillRect(dst, w.Bounds(), Color{0.08, 0.08, 0.1, 0.9 * w.Alpha})
	})
	l.OnKeyboard = l.onKey
	return l
}

// SetCharacters replaces the rows.
func (l *CharacterList) SetCharacters(names []string) {
	for _, c := range append([]*Widget(nil), l.children...) {
		c.Dispose()
	}
	l.names = append(l.names[:0], names...)
	l.selected = -1
	for i, n := range l.names {
		row := NewPanel("row-"+n, l.Width-12, l.rowH, Color{0.2, 0.2, 0.25, 0.8})
		row.UserData = i
		row.Transient = true
		label := NewLabel("name", l.font, n)
		label.PassThrough = true
		label.X, label.Y = 6, (l.rowH-label.Height)/2
		row.AddChild(label.Widget)
		row.OnMouse = func(_ *Widget, ev MouseEvent) bool {
			if ev.Button != MouseButtonLeft {
				return false
			}
			switch ev.Phase {
			case MouseClick:
				l.Select(i)
				return true
			case MouseDoubleClick:
				l.Select(i)
				l.Login()
				return true
			}
			return false
		}
		l.AddChild(row.Widget)
	}
}

// Characters returns the listed names.
func (l *CharacterList) Characters() []string { return l.names }

// Select highlights row i. Out-of-range indexes clear the selection.
func (l *CharacterList) Select(i int) {
	if i < 0 || i >= len(l.names) {
		i = -1
	}
	l.selected = i
	for j, c := range l.children {
		if p, ok := c.Painter.(*Panel); ok {
			p.Fill = Color{0.2, 0.2, 0.25, 0.8}
			if j == i {
				p.Fill = Color{0.3, 0.35, 0.6, 0.9}
			}
		}
	}
}

// Selected returns the selected name, or "".
func (l *CharacterList) Selected() string {
	if l.selected < 0 {
		return ""
	}
	return l.names[l.selected]
}

// Login sends a LoginCommand for the selection and fires OnLogin.
func (l *CharacterList) Login() {
	name := l.Selected()
	if name == "" {
		return
	}
	if l.sender != nil {
		if err := l.sender.Send(LoginCommand{Character: name}); err != nil {
			l.log.Warn("login not sent", zap.String("character", name), zap.Error(err))
			return
		}
	}
	if l.OnLogin != nil {
		l.OnLogin(name)
	}
}

func (l *CharacterList) onKey(_ *Widget, ev KeyboardEvent) bool {
	if ev.Phase != KeyDown || len(l.names) == 0 {
		return false
	}
	switch ev.Key {
	case ebiten.KeyArrowDown:
		l.Select(min(l.selected+1, len(l.names)-1))
	case ebiten.KeyArrowUp:
		l.Select(max(l.selected-1, 0))
	case ebiten.KeyEnter:
		l.Login()
	default:
		return false
	}
	return true
}
