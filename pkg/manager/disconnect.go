package manager

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpponentLeftReason is the game over reason after a player leaves
const OpponentLeftReason = "Opponent left the match"

// HandleDisconnect releases whatever conn held. A waiting player frees the
// slot, a seated player forfeits its game, a spectator leaves its room.
// playerExit is handled the same way.
func (m *Manager) HandleDisconnect(conn uuid.UUID) {
	if m.repo.ClearWaiting(conn) {
		m.logger.Info("waiting player left", zap.String("connection_id", conn.String()))
		return
	}

	if g, err := m.repo.FindByPlayer(conn); err == nil {
		side, _ := g.SideOf(conn)
		m.logger.Info("player left game",
			zap.String("game_id", g.ID.String()),
			zap.String("side", string(side)),
		)
		m.finish(g, side.Opp(), OpponentLeftReason)
		return
	}

	if m.repo.Unwatch(conn) {
		m.logger.Debug("spectator left", zap.String("connection_id", conn.String()))
	}
}
