// Package input samples mouse and keyboard state once per frame for the
// viewer.
package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// State is the mouse and keyboard state of the current frame.
type State struct {
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	prevMouseX       int
	prevMouseY       int
	ScrollY          float64

	// Dragging is set while the left or middle button is held and the
	// cursor has moved past DragThreshold.
	Dragging      bool
	DragThreshold int
	dragStartX    int
	dragStartY    int
}

func NewState() *State {
	return &State{DragThreshold: 3}
}

// Update should be called every frame
func (s *State) Update() {
	s.prevMouseX, s.prevMouseY = s.MouseX, s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	_, s.ScrollY = ebiten.Wheel()

	held := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		s.dragStartX, s.dragStartY = s.MouseX, s.MouseY
		s.Dragging = false
	}
	if held && !s.Dragging {
		dx := s.MouseX - s.dragStartX
		dy := s.MouseY - s.dragStartY
		if dx*dx+dy*dy > s.DragThreshold*s.DragThreshold {
			s.Dragging = true
		}
	}
	if !held {
		s.Dragging = false
	}
}

// Pressed reports whether any of keys is held.
func (s *State) Pressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// JustPressed reports whether any of keys went down this frame.
func (s *State) JustPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

// Repeat reports a key that went down this frame or has been held long
// enough to auto-repeat.
func (s *State) Repeat(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > 20 && d%4 == 0)
}
