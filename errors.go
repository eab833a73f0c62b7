package guing

import "errors"

// Structural errors. These indicate a programming mistake and are raised as
// panics wrapping the sentinel so callers can still match them with errors.Is
// after a recover.
var (
	ErrChildNotFound     = errors.New("guing: widget is not a child")
	ErrChildAlreadyAdded = errors.New("guing: widget already has a parent")
	ErrDecoderIdle       = errors.New("guing: dragging decoder is idle")
	ErrTextureReleased   = errors.New("guing: texture already released")
	ErrFrameIndex        = errors.New("guing: unsupported sprite frame index")
	ErrWidgetDisposed    = errors.New("guing: widget is disposed")
)

// Runtime errors, returned to callers that degrade locally.
var (
	ErrRegionNotFound = errors.New("guing: atlas region not found")
	ErrStaleAtlas     = errors.New("guing: atlas handle is no longer loaded")
	ErrMaskSize       = errors.New("guing: transparency mask size mismatch")
	ErrNoHostData     = errors.New("guing: atlas host pixels were discarded")
	ErrStateCorrupt   = errors.New("guing: saved state is corrupt")
	ErrStateVersion   = errors.New("guing: saved state version is incompatible")
	ErrThrottled      = errors.New("guing: command rate limit exceeded")

	ErrUnbalancedRelease = errors.New("guing: atlas released more often than referenced")
)
