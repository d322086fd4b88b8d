// Package chess defines the game entities
package chess

import "fmt"

// DefaultAllowance is the per-move allowance in seconds
const DefaultAllowance = 30

// Clock holds the per-move countdown for both players. Only the side to
// move ticks down, and an accepted move gives the new side to move a fresh
// allowance.
//
// Clock is not safe for concurrent use; it is owned by the goroutine that
// drives the game.
type Clock struct {
	whiteSeconds int
	blackSeconds int

	allowance int
}

// ClockState is a snapshot of both counters
type ClockState struct {
	White int
	Black int
}

// NewClock creates a clock with both sides set to the given allowance.
func NewClock(allowance int) *Clock {
	if allowance <= 0 {
		allowance = DefaultAllowance
	}

	return &Clock{
		whiteSeconds: allowance,
		blackSeconds: allowance,
		allowance:    allowance,
	}
}

// Allowance returns the configured per-move allowance in seconds
func (c *Clock) Allowance() int {
	return c.allowance
}

// Reset gives the side a fresh allowance. The other side is left untouched.
func (c *Clock) Reset(side Color) {
	if side == White {
		c.whiteSeconds = c.allowance
	} else {
		c.blackSeconds = c.allowance
	}
}

// Tick takes one second off the given side and returns what is left.
// Counters never go below zero.
func (c *Clock) Tick(side Color) int {
	counter := &c.blackSeconds
	if side == White {
		counter = &c.whiteSeconds
	}

	if *counter > 0 {
		*counter--
	}

	return *counter
}

// Remaining returns the current remaining seconds for both players
func (c *Clock) Remaining() ClockState {
	return ClockState{White: c.whiteSeconds, Black: c.blackSeconds}
}

// Flagged reports the first side whose counter has run out, if any.
func (c *Clock) Flagged() (Color, bool) {
	switch {
	case c.whiteSeconds <= 0:
		return White, true
	case c.blackSeconds <= 0:
		return Black, true
	}

	return "", false
}

// FormatClockTime formats seconds to a user-friendly string (e.g., "1:30")
func FormatClockTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
