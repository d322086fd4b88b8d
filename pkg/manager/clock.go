package manager

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/chess-rooms/pkg/chess"
	"github.com/tecu23/chess-rooms/pkg/game"
)

// HandleTick runs one clock period for a game: the side to move loses a
// second, the room sees the new clock, and a side that has run out
// forfeits. Ticks for removed games or from a cancelled timer are dropped.
func (m *Manager) HandleTick(t game.Tick) {
	g, err := m.repo.GetGame(t.GameID)
	if err != nil || !g.IsCurrent(t) {
		m.logger.Debug("dropping stale tick",
			zap.String("game_id", t.GameID.String()),
			zap.Uint64("seq", t.Seq),
		)
		return
	}

	side := g.Oracle.Turn()
	g.Clock.Tick(side)
	m.broadcastClock(g)

	flagged, ok := g.Clock.Flagged()
	if !ok {
		return
	}

	remaining := g.Clock.Remaining()
	m.logger.Info("player time expired",
		zap.String("game_id", g.ID.String()),
		zap.String("side", string(flagged)),
		zap.String("white_clock", chess.FormatClockTime(remaining.White)),
		zap.String("black_clock", chess.FormatClockTime(remaining.Black)),
	)
	m.finish(g, flagged.Opp(), fmt.Sprintf("%s ran out of time", flagged.Name()))
}
