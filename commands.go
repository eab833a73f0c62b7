package guing

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Command is a request for the game server. The network layer decides the
// wire format; the GUI only builds values.
type Command interface {
	Kind() string
}

// LoginCommand enters the world as the selected character.
type LoginCommand struct {
	Character string
}

// UseItemCommand uses an item, optionally on a target location.
type UseItemCommand struct {
	ItemID int
	From   Reference
	// Target is nil when the item is used on itself.
	Target Reference
}

// LookAtCommand asks for a description of whatever is at a location.
type LookAtCommand struct {
	ItemID int
	At     Reference
}

// MoveCommand walks the character one step toward a direction.
type MoveCommand struct {
	DX, DY int
}

// SayCommand speaks a line in the local chat.
type SayCommand struct {
	Text string
}

// MoveItemCommand moves Count items between two locations.
type MoveItemCommand struct {
	ItemID int
	Count  int
	From   Reference
	To     Reference
}

func (LoginCommand) Kind() string    { return "login" }
func (UseItemCommand) Kind() string  { return "use-item" }
func (LookAtCommand) Kind() string   { return "look-at" }
func (MoveCommand) Kind() string     { return "move" }
func (SayCommand) Kind() string      { return "say" }
func (MoveItemCommand) Kind() string { return "move-item" }

// CommandSender delivers commands to the network layer.
type CommandSender interface {
	Send(cmd Command) error
}

// CommandSenderFunc adapts a function to the CommandSender interface.
type CommandSenderFunc func(cmd Command) error

// Send calls f.
func (f CommandSenderFunc) Send(cmd Command) error { return f(cmd) }

// LogSender logs commands instead of sending them. Used when no network
// layer is attached.
type LogSender struct {
	Log *zap.Logger
}

// Send implements CommandSender.
func (s LogSender) Send(cmd Command) error {
	orNop(s.Log).Info("command", zap.String("kind", cmd.Kind()), zap.String("value", fmt.Sprintf("%+v", cmd)))
	return nil
}

// ThrottledSender rate-limits commands before they reach the wrapped sender.
// Commands over the limit are rejected, not queued.
type ThrottledSender struct {
	next    CommandSender
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewThrottledSender allows perSecond commands per second with the given
// burst. perSecond <= 0 disables limiting.
func NewThrottledSender(next CommandSender, perSecond float64, burst int, log *zap.Logger) *ThrottledSender {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Every(time.Duration(float64(time.Second) / perSecond))
	}
	if burst <= 0 {
		burst = 1
	}
	return &ThrottledSender{next: next, limiter: rate.NewLimiter(limit, burst), log: orNop(log)}
}

// Send implements CommandSender.
func (s *ThrottledSender) Send(cmd Command) error {
	if !s.limiter.Allow() {
		s.log.Warn("command throttled", zap.String("kind", cmd.Kind()))
		return fmt.Errorf("send %s: %w", cmd.Kind(), ErrThrottled)
	}
	return s.next.Send(cmd)
}
