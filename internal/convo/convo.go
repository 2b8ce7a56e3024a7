// Package convo holds the assistant's short-term memory: a bounded
// conversation log and the single most-recent camera description.
package convo

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role     Role
	Content  string
	Language string
}

// VisionContext is the latest camera-derived description. It is a single
// slot, not a log: every capture overwrites the previous one.
type VisionContext struct {
	Description string
	CapturedAt  time.Time
}

// State owns the conversation log and the vision slot. It is mutated only by
// the assistant's loop goroutine, so it carries no lock.
type State struct {
	cap       int
	visionTTL time.Duration
	turns     []Turn
	vision    VisionContext
}

func NewState(cap int, visionTTL time.Duration) *State {
	if cap <= 0 {
		cap = 20
	}
	return &State{cap: cap, visionTTL: visionTTL}
}

// Append adds a turn, evicting the oldest entries first once the cap is
// exceeded.
func (s *State) Append(t Turn) {
	s.turns = append(s.turns, t)
	if len(s.turns) > s.cap {
		s.turns = s.turns[len(s.turns)-s.cap:]
	}
}

func (s *State) Len() int { return len(s.turns) }

// Recent returns a copy of the last n turns, oldest first.
func (s *State) Recent(n int) []Turn {
	if n > len(s.turns) {
		n = len(s.turns)
	}
	out := make([]Turn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// Reset clears the log and the vision slot.
func (s *State) Reset() {
	s.turns = nil
	s.vision = VisionContext{}
}

func (s *State) SetVision(description string, at time.Time) {
	s.vision = VisionContext{Description: description, CapturedAt: at}
}

func (s *State) Vision() VisionContext { return s.vision }

// FreshVision returns the stored description if it was captured within the
// validity window, or "" if it is stale or absent.
func (s *State) FreshVision(now time.Time) string {
	if s.vision.Description == "" {
		return ""
	}
	if now.Sub(s.vision.CapturedAt) >= s.visionTTL {
		return ""
	}
	return s.vision.Description
}
