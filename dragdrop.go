package guing

import (
	"fmt"

	"go.uber.org/zap"
)

// Reference describes where a dragged item came from or is dropped on.
type Reference interface {
	reference()
	String() string
}

// InventoryRef is a slot of the character's inventory.
type InventoryRef struct {
	Slot int
}

// ContainerRef is a slot of an open container (chest, corpse, bank).
type ContainerRef struct {
	ContainerID int
	Slot        int
}

// MapRef is a tile of the game map.
type MapRef struct {
	X, Y int
}

func (InventoryRef) reference() {}
func (ContainerRef) reference() {}
func (MapRef) reference()       {}

func (r InventoryRef) String() string { return fmt.Sprintf("inventory[%d]", r.Slot) }
func (r ContainerRef) String() string { return fmt.Sprintf("container %d[%d]", r.ContainerID, r.Slot) }
func (r MapRef) String() string       { return fmt.Sprintf("map(%d,%d)", r.X, r.Y) }

// DragState is the phase of the decoder.
type DragState uint8

const (
	DragIdle DragState = iota
	DragActive
	DragDropped
)

// Decoder records the single drag-and-drop gesture in flight. Only one drag
// can exist at a time; the decoder belongs to a GUI and is only touched from
// the render thread.
type Decoder struct {
	sender CommandSender
	log    *zap.Logger

	state  DragState
	source Reference
	target Reference
	itemID int
	count  int
	cursor *Sprite
}

// NewDecoder creates an idle decoder that sends commands through sender.
func NewDecoder(sender CommandSender, log *zap.Logger) *Decoder {
	return &Decoder{sender: sender, log: orNop(log)}
}

// Begin starts a drag of count items from src, with cursor drawn at the
// pointer until the drag ends. The decoder takes ownership of cursor.
//
// Starting a drag while another is active silently cancels the earlier one:
// its cursor sprite is released and its source forgotten.
func (d *Decoder) Begin(src Reference, itemID, count int, cursor *Sprite) {
	if d.state != DragIdle {
		d.log.Debug("drag replaced", zap.Stringer("previous", d.source), zap.Stringer("source", src))
		d.reset()
	}
	d.state = DragActive
	d.source = src
	d.itemID = itemID
	d.count = count
	d.cursor = cursor
}

// Drop records the target of the active drag. Dropping while idle is
// ignored and reports false.
func (d *Decoder) Drop(dst Reference) bool {
	if d.state == DragIdle {
		return false
	}
	d.target = dst
	d.state = DragDropped
	return true
}

// Execute sends the command for the recorded drag and resets the decoder.
// Slot-to-slot drops send a MoveItemCommand, a drop on a map tile uses the
// item on that tile and a drop on the source itself sends nothing. Executing
// without a drop cancels the drag. Calling Execute while idle is a
// programming error and panics with ErrDecoderIdle.
func (d *Decoder) Execute() error {
	if d.state == DragIdle {
		panic(fmt.Errorf("execute: %w", ErrDecoderIdle))
	}
	defer d.reset()
	if d.state != DragDropped || d.target == nil || d.target == d.source {
		return nil
	}
	var cmd Command = MoveItemCommand{ItemID: d.itemID, Count: d.count, From: d.source, To: d.target}
	if _, onMap := d.target.(MapRef); onMap {
		cmd = UseItemCommand{ItemID: d.itemID, From: d.source, Target: d.target}
	}
	if d.sender == nil {
		return nil
	}
	if err := d.sender.Send(cmd); err != nil {
		return fmt.Errorf("execute drag %s -> %s: %w", d.source, d.target, err)
	}
	return nil
}

// Cancel abandons the active drag. Idle decoders ignore it.
func (d *Decoder) Cancel() {
	if d.state != DragIdle {
		d.reset()
	}
}

func (d *Decoder) reset() {
	d.cursor.Release()
	d.cursor = nil
	d.state = DragIdle
	d.source = nil
	d.target = nil
	d.itemID = 0
	d.count = 0
}

// State returns the decoder phase.
func (d *Decoder) State() DragState { return d.state }

// Active reports whether a drag is in flight.
func (d *Decoder) Active() bool { return d.state != DragIdle }

// Source returns the reference the active drag started from.
func (d *Decoder) Source() Reference { return d.source }

// Target returns the reference recorded by Drop.
func (d *Decoder) Target() Reference { return d.target }

// Item returns the dragged item and count.
func (d *Decoder) Item() (itemID, count int) { return d.itemID, d.count }

// CursorSprite returns the sprite following the pointer, or nil.
func (d *Decoder) CursorSprite() *Sprite { return d.cursor }
