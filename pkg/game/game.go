package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tecu23/chess-rooms/pkg/chess"
)

type GameStatus string

const (
	StatusActive    GameStatus = "active"
	StatusCompleted GameStatus = "completed"
)

// Game is one room: two seated players, any number of spectators, the
// rules oracle that owns the position and the per-move clock.
type Game struct {
	ID uuid.UUID

	White uuid.UUID
	Black uuid.UUID

	Oracle chess.Oracle
	Clock  *chess.Clock
	Status GameStatus

	CreatedAt time.Time

	spectators []uuid.UUID

	timer    *TurnTimer
	timerSeq uint64
}

// NewGame seats white and black on a fresh position. Both sides start with
// the full allowance.
func NewGame(white, black uuid.UUID, oracle chess.Oracle, allowance int, now time.Time) *Game {
	return &Game{
		ID:        uuid.New(),
		White:     white,
		Black:     black,
		Oracle:    oracle,
		Clock:     chess.NewClock(allowance),
		Status:    StatusActive,
		CreatedAt: now,
	}
}

// SideOf returns the side the connection plays, if it is seated
func (g *Game) SideOf(conn uuid.UUID) (chess.Color, bool) {
	switch conn {
	case g.White:
		return chess.White, true
	case g.Black:
		return chess.Black, true
	}

	return "", false
}

// PlayerFor returns the connection seated on side, or uuid.Nil when side
// is not a valid color.
func (g *Game) PlayerFor(side chess.Color) uuid.UUID {
	if !side.Valid() {
		return uuid.Nil
	}
	if side == chess.White {
		return g.White
	}

	return g.Black
}

// AddSpectator joins conn to the room as a read-only viewer
func (g *Game) AddSpectator(conn uuid.UUID) {
	for _, id := range g.spectators {
		if id == conn {
			return
		}
	}
	g.spectators = append(g.spectators, conn)
}

// RemoveSpectator drops conn from the room and reports whether it was there
func (g *Game) RemoveSpectator(conn uuid.UUID) bool {
	for i, id := range g.spectators {
		if id == conn {
			g.spectators = append(g.spectators[:i], g.spectators[i+1:]...)
			return true
		}
	}

	return false
}

// Members returns every connection in the room, players first
func (g *Game) Members() []uuid.UUID {
	members := make([]uuid.UUID, 0, 2+len(g.spectators))
	members = append(members, g.White, g.Black)
	return append(members, g.spectators...)
}

// StartTimer cancels any running timer and starts a new one. Ticks from
// the cancelled timer carry an older sequence number.
func (g *Game) StartTimer(clock clockwork.Clock, interval time.Duration, sink chan<- Tick) {
	g.StopTimer()

	g.timerSeq++
	g.timer = StartTurnTimer(clock, interval, g.ID, g.timerSeq, sink)
}

// StopTimer cancels the running timer. Safe to call when none is running.
func (g *Game) StopTimer() {
	if g.timer == nil {
		return
	}

	g.timer.Stop()
	g.timer = nil
}

// TimerRunning reports whether a timer is currently scheduled
func (g *Game) TimerRunning() bool {
	return g.timer != nil
}

// IsCurrent reports whether a tick comes from the timer that is running now
func (g *Game) IsCurrent(t Tick) bool {
	return g.timer != nil && t.GameID == g.ID && t.Seq == g.timerSeq
}

// Finish stops the clock and marks the game completed
func (g *Game) Finish() {
	g.StopTimer()
	g.Status = StatusCompleted
}
