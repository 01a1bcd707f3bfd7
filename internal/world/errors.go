package world

import "errors"

// Sentinel errors returned by world operations, per the spec's error
// handling design: callers match with errors.Is, never string comparison.
var (
	ErrQueueFull       = errors.New("world: queue is full")
	ErrInvalidFirmware = errors.New("world: firmware is empty or exceeds ram size")
	ErrBotNotFound     = errors.New("world: bot not found")
	ErrWorldPaused     = errors.New("world: world is paused")
)
