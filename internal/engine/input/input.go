// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Event types for viewer use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventWindowHidden
	EventWindowShown
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	// Wheel is the vertical scroll amount, positive away from the user.
	Wheel float32
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.Push(event) {
			return true
		}
	}

	return false
}

// Push translates one SDL event and queues it. It reports whether the
// event asks to quit.
func (i *Input) Push(event sdl.Event) bool {
	e, ok := Translate(event)
	if !ok {
		return false
	}
	i.events = append(i.events, e)
	return e.Type == EventQuit
}

// Translate converts an SDL event. Events the viewer does not use
// report false.
func Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		case sdl.WINDOWEVENT_HIDDEN, sdl.WINDOWEVENT_MINIMIZED:
			return Event{Type: EventWindowHidden}, true
		case sdl.WINDOWEVENT_SHOWN, sdl.WINDOWEVENT_RESTORED:
			return Event{Type: EventWindowShown}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		} else if e.Type == sdl.KEYUP {
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
		}, true

	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONDOWN {
			return Event{
				Type:   EventMouseDown,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			}, true
		} else if e.Type == sdl.MOUSEBUTTONUP {
			return Event{
				Type:   EventMouseUp,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			}, true
		}

	case *sdl.MouseWheelEvent:
		wheel := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			wheel = -wheel
		}
		return Event{Type: EventMouseWheel, Wheel: wheel}, true
	}

	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
