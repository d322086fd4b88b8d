package manager

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/chess-rooms/pkg/chess"
	"github.com/tecu23/chess-rooms/pkg/events"
	"github.com/tecu23/chess-rooms/pkg/game"
	"github.com/tecu23/chess-rooms/pkg/messages"
)

// HandleMove routes a proposed move to its game.
//
// Moves for unknown games and moves from anyone but the side to move are
// dropped without a reply. A move the rules reject is echoed back to the
// sender as invalidMove. An accepted move is broadcast to the room together
// with the new position and clock, and the clock restarts for the other
// side.
func (m *Manager) HandleMove(conn uuid.UUID, payload messages.MakeMovePayload) {
	g, ok := m.lookup(payload.GameID)
	if !ok {
		return
	}

	toMove := g.Oracle.Turn()
	if side, seated := g.SideOf(conn); !seated || side != toMove {
		m.logger.Debug("ignoring move out of turn",
			zap.String("game_id", g.ID.String()),
			zap.String("connection_id", conn.String()),
			zap.String("side_to_move", string(toMove)),
		)
		return
	}

	applied, err := g.Oracle.Apply(chess.Move{
		From:      payload.Move.From,
		To:        payload.Move.To,
		Promotion: payload.Move.Promotion,
	})
	if err != nil {
		if !errors.Is(err, chess.ErrIllegalMove) {
			m.logger.Error("rules oracle failed", zap.String("game_id", g.ID.String()), zap.Error(err))
		}
		m.logger.Debug("rejected move",
			zap.String("game_id", g.ID.String()),
			zap.String("move", payload.Move.From+payload.Move.To),
			zap.Error(err),
		)
		m.send(conn, messages.EventInvalidMove, payload)
		return
	}

	g.Clock.Reset(g.Oracle.Turn())

	m.broadcast(g, messages.EventMove, messages.MovePayload{
		From:      applied.From,
		To:        applied.To,
		Promotion: applied.Promotion,
		SAN:       applied.SAN,
		Color:     string(applied.Color),
		Piece:     applied.Piece,
		Captured:  applied.Captured,
	})
	m.broadcast(g, messages.EventBoardState, g.Oracle.FEN())
	m.broadcastClock(g)

	m.publisher.Publish(events.Event{
		Type:    events.EventMoveApplied,
		GameID:  g.ID.String(),
		Payload: applied,
	})

	m.logger.Debug("processed move",
		zap.String("game_id", g.ID.String()),
		zap.String("move", applied.SAN),
		zap.String("new_turn", string(g.Oracle.Turn())),
	)

	if m.concludeIfTerminal(g, applied.Color) {
		return
	}

	g.StartTimer(m.clock, m.tickInterval, m.ticks)
}

// concludeIfTerminal ends the game when the last move mated or drew
func (m *Manager) concludeIfTerminal(g *game.Game, mover chess.Color) bool {
	switch {
	case g.Oracle.IsCheckmate():
		m.finish(g, mover, "Checkmate")
	case g.Oracle.IsDraw():
		m.finish(g, "", "Draw")
	default:
		return false
	}

	return true
}
