package frame

import (
	"errors"
	"fmt"
)

// Capture bounds for an enrollment submission. The backend enforces the same
// bounds on its side; the buffer rejects out-of-range states before upload.
const (
	MinFrames = 5
	MaxFrames = 10
)

// ErrBufferFull indicates a capture beyond MaxFrames. The buffer is unchanged.
var ErrBufferFull = errors.New("capture buffer full")

// Buffer is a bounded, ordered collection of captured frames for enrollment.
// Frames have no identity beyond their position. A Buffer belongs to exactly
// one capture flow and must be Reset after a successful submission.
type Buffer struct {
	frames []*Frame
}

// NewBuffer creates an empty capture buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Capture appends a frame and returns the new size.
// Returns ErrBufferFull without modifying the buffer when it holds MaxFrames.
func (b *Buffer) Capture(f *Frame) (int, error) {
	if len(b.frames) >= MaxFrames {
		return len(b.frames), ErrBufferFull
	}
	b.frames = append(b.frames, f)
	return len(b.frames), nil
}

// Remove deletes the frame at the given position.
func (b *Buffer) Remove(index int) error {
	if index < 0 || index >= len(b.frames) {
		return fmt.Errorf("frame index %d out of range [0,%d)", index, len(b.frames))
	}
	b.frames = append(b.frames[:index], b.frames[index+1:]...)
	return nil
}

// Len returns the number of captured frames.
func (b *Buffer) Len() int {
	return len(b.frames)
}

// CanSubmit reports whether the buffer holds enough frames for enrollment.
func (b *Buffer) CanSubmit() bool {
	return len(b.frames) >= MinFrames
}

// Frames returns the captured frames in capture order.
func (b *Buffer) Frames() []*Frame {
	out := make([]*Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Reset discards all captured frames. Must be called after a successful
// submission and when leaving the enrollment flow so stale frames cannot
// leak into a subsequent registration.
func (b *Buffer) Reset() {
	b.frames = nil
}
