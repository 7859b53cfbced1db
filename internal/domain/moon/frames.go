// Package moon drives the confirmation page's URL-fragment animation: a
// moon-phase emoji chosen from wall-clock time, replaced on a fixed period.
package moon

import "time"

// Frames is the animation sequence, one moon phase per frame.
var Frames = [...]string{"🌑", "🌒", "🌓", "🌔", "🌝", "🌖", "🌗", "🌘"}

// FrameStep is how long each frame is current on the wall clock.
const FrameStep = 100 * time.Millisecond

// DefaultInterval is how often the fragment is replaced.
const DefaultInterval = 150 * time.Millisecond

// FrameIndex returns floor(unixMillis / 100) mod len(Frames).
func FrameIndex(t time.Time) int {
	step := t.UnixMilli() / FrameStep.Milliseconds()
	n := int64(len(Frames))
	return int(((step % n) + n) % n)
}

// FrameAt returns the frame current at t.
func FrameAt(t time.Time) string {
	return Frames[FrameIndex(t)]
}

// IsFrame reports whether s is one of Frames.
func IsFrame(s string) bool {
	for _, f := range Frames {
		if f == s {
			return true
		}
	}
	return false
}
