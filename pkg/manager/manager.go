// Package manager coordinates matchmaking, move routing, the per-move clock
// and forfeits for every active game.
//
// A Manager is not safe for concurrent use. Every Handle method must be
// called from one goroutine (the hub loop), which is what keeps the game
// state consistent without locks.
package manager

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tecu23/chess-rooms/pkg/chess"
	"github.com/tecu23/chess-rooms/pkg/events"
	"github.com/tecu23/chess-rooms/pkg/game"
	"github.com/tecu23/chess-rooms/pkg/messages"
	"github.com/tecu23/chess-rooms/pkg/repository"
)

// Sender delivers an outbound message to a single connection
type Sender interface {
	Send(conn uuid.UUID, msg messages.OutboundMessage)
}

// OracleFactory returns a rules oracle on a fresh starting position
type OracleFactory func() chess.Oracle

// Options tunes a Manager. Zero values fall back to the defaults.
type Options struct {
	Allowance    int           // per-move allowance in seconds
	TickInterval time.Duration // clock period
	MaxGames     int           // 0 means unlimited

	Clock     clockwork.Clock
	NewOracle OracleFactory
}

type Manager struct {
	repo      *repository.InMemoryGameRepository
	sender    Sender
	publisher *events.Publisher
	logger    *zap.Logger

	clock        clockwork.Clock
	newOracle    OracleFactory
	allowance    int
	tickInterval time.Duration
	maxGames     int

	ticks chan game.Tick
}

// NewManager creates a new manager over the given registry
func NewManager(
	repo *repository.InMemoryGameRepository,
	sender Sender,
	publisher *events.Publisher,
	logger *zap.Logger,
	opts Options,
) *Manager {
	if opts.Allowance <= 0 {
		opts.Allowance = chess.DefaultAllowance
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NewOracle == nil {
		opts.NewOracle = func() chess.Oracle { return chess.NewRulesOracle() }
	}

	return &Manager{
		repo:         repo,
		sender:       sender,
		publisher:    publisher,
		logger:       logger,
		clock:        opts.Clock,
		newOracle:    opts.NewOracle,
		allowance:    opts.Allowance,
		tickInterval: opts.TickInterval,
		maxGames:     opts.MaxGames,
		ticks:        make(chan game.Tick, 64),
	}
}

// Ticks is the stream of clock ticks the hub loop must feed back into
// HandleTick.
func (m *Manager) Ticks() <-chan game.Tick {
	return m.ticks
}

// HandleConnect pairs conn with the waiting player, parks it in the waiting
// slot, or seats it as a spectator when no more games can be opened.
func (m *Manager) HandleConnect(conn uuid.UUID) {
	if m.atCapacity() {
		m.spectate(conn)
		return
	}

	white, ok := m.repo.PopWaiting()
	if !ok {
		if !m.repo.ParkWaiting(conn) {
			m.logger.Error("waiting slot already taken", zap.String("connection_id", conn.String()))
			m.send(conn, messages.EventError, messages.ErrorPayload{Message: "could not join matchmaking"})
			return
		}
		m.send(conn, messages.EventWaiting, messages.WaitingMessage)
		m.logger.Info("player waiting for opponent", zap.String("connection_id", conn.String()))
		return
	}

	g := game.NewGame(white, conn, m.newOracle(), m.allowance, m.clock.Now())
	if err := m.repo.SaveGame(g); err != nil {
		m.logger.Error("failed to register game",
			zap.String("white", white.String()),
			zap.String("black", conn.String()),
			zap.Error(err),
		)
		m.send(conn, messages.EventError, messages.ErrorPayload{Message: "could not start game"})
		return
	}

	fen := g.Oracle.FEN()
	for _, side := range []chess.Color{chess.White, chess.Black} {
		player := g.PlayerFor(side)
		m.send(player, messages.EventPlayerRole, messages.PlayerRolePayload{
			Role:   string(side),
			GameID: g.ID.String(),
		})
		m.send(player, messages.EventGameStart, messages.GameStartPayload{
			FEN:    fen,
			Role:   string(side),
			GameID: g.ID.String(),
		})
	}
	m.broadcastClock(g)

	g.StartTimer(m.clock, m.tickInterval, m.ticks)

	m.publisher.Publish(events.Event{
		Type:   events.EventGameCreated,
		GameID: g.ID.String(),
		Payload: map[string]string{
			"white": g.White.String(),
			"black": g.Black.String(),
		},
	})

	m.logger.Info("created new game",
		zap.String("game_id", g.ID.String()),
		zap.String("white", g.White.String()),
		zap.String("black", g.Black.String()),
		zap.Int("allowance", g.Clock.Allowance()),
	)
}

// HandleBoardStateRequest sends the current position of the game to the
// requester only. Unknown or finished games are ignored.
func (m *Manager) HandleBoardStateRequest(conn uuid.UUID, payload messages.RequestBoardStatePayload) {
	g, ok := m.lookup(payload.GameID)
	if !ok {
		return
	}

	m.send(conn, messages.EventBoardState, g.Oracle.FEN())
}

// ActiveGames returns the number of games in progress
func (m *Manager) ActiveGames() int {
	return m.repo.Count()
}

// HasWaitingPlayer reports whether someone sits in the waiting slot
func (m *Manager) HasWaitingPlayer() bool {
	_, ok := m.repo.Waiting()
	return ok
}

// Shutdown stops every running clock without ending the games
func (m *Manager) Shutdown() {
	stopped := 0
	for _, g := range m.repo.ListActiveGames() {
		if g.TimerRunning() {
			g.StopTimer()
			stopped++
		}
	}

	m.logger.Info("game manager shut down", zap.Int("stopped_clocks", stopped))
}

func (m *Manager) atCapacity() bool {
	return m.maxGames > 0 && m.repo.Count() >= m.maxGames
}

func (m *Manager) spectate(conn uuid.UUID) {
	g, err := m.repo.Newest()
	if err != nil {
		m.logger.Warn("no game to spectate", zap.String("connection_id", conn.String()))
		return
	}

	if err := m.repo.Watch(conn, g.ID); err != nil {
		m.logger.Warn("failed to join room as spectator", zap.Error(err))
		return
	}

	m.send(conn, messages.EventSpectatorRole, messages.SpectatorRolePayload{GameID: g.ID.String()})
	m.send(conn, messages.EventBoardState, g.Oracle.FEN())

	m.logger.Info("spectator joined",
		zap.String("game_id", g.ID.String()),
		zap.String("connection_id", conn.String()),
	)
}

func (m *Manager) lookup(rawID string) (*game.Game, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		m.logger.Debug("ignoring malformed game id", zap.String("game_id", rawID))
		return nil, false
	}

	g, err := m.repo.GetGame(id)
	if err != nil {
		m.logger.Debug("ignoring unknown game", zap.String("game_id", rawID))
		return nil, false
	}

	return g, true
}

func (m *Manager) send(conn uuid.UUID, event string, payload interface{}) {
	m.sender.Send(conn, messages.OutboundMessage{Event: event, Payload: payload})
}

func (m *Manager) broadcast(g *game.Game, event string, payload interface{}) {
	msg := messages.OutboundMessage{Event: event, Payload: payload}
	for _, conn := range g.Members() {
		m.sender.Send(conn, msg)
	}
}

func (m *Manager) broadcastClock(g *game.Game) {
	remaining := g.Clock.Remaining()
	m.broadcast(g, messages.EventTimerUpdate, messages.TimerUpdatePayload{
		WhiteSeconds: remaining.White,
		BlackSeconds: remaining.Black,
	})
}

// finish announces the result to the room, stops the clock and removes
// the game. A game is finished at most once.
func (m *Manager) finish(g *game.Game, winner chess.Color, reason string) {
	if g.Status == game.StatusCompleted {
		return
	}

	m.broadcast(g, messages.EventGameOver, messages.GameOverPayload{
		Winner: string(winner),
		Reason: reason,
	})

	g.Finish()
	m.repo.DeleteGame(g.ID)

	m.publisher.Publish(events.Event{
		Type:   events.EventGameOver,
		GameID: g.ID.String(),
		Payload: messages.GameOverPayload{
			Winner: string(winner),
			Reason: reason,
		},
	})

	m.logger.Info("game over",
		zap.String("game_id", g.ID.String()),
		zap.String("winner", string(winner)),
		zap.String("reason", reason),
	)
}
