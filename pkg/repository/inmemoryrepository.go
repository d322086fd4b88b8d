package repository

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/chess-rooms/pkg/game"
)

var (
	// ErrGameNotFound is returned when no active game has the given id
	ErrGameNotFound = errors.New("game not found")
	// ErrAlreadySeated is returned when a connection already plays in a game
	ErrAlreadySeated = errors.New("connection already seated")
)

// InMemoryGameRepository holds the active games, which connection sits in
// which game, and the single waiting slot.
type InMemoryGameRepository struct {
	games    map[uuid.UUID]*game.Game
	byPlayer map[uuid.UUID]uuid.UUID
	watching map[uuid.UUID]uuid.UUID

	waiting   uuid.UUID
	isWaiting bool

	newest uuid.UUID

	mu     sync.RWMutex
	logger *zap.Logger
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(logger *zap.Logger) *InMemoryGameRepository {
	return &InMemoryGameRepository{
		games:    make(map[uuid.UUID]*game.Game),
		byPlayer: make(map[uuid.UUID]uuid.UUID),
		watching: make(map[uuid.UUID]uuid.UUID),
		logger:   logger,
	}
}

// SaveGame registers a new game and seats both of its players
func (r *InMemoryGameRepository) SaveGame(g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, conn := range []uuid.UUID{g.White, g.Black} {
		if _, seated := r.byPlayer[conn]; seated {
			return ErrAlreadySeated
		}
	}

	r.games[g.ID] = g
	r.byPlayer[g.White] = g.ID
	r.byPlayer[g.Black] = g.ID
	r.newest = g.ID

	r.logger.Debug("game saved", zap.String("game_id", g.ID.String()))
	return nil
}

// GetGame retrieves a game by ID
func (r *InMemoryGameRepository) GetGame(id uuid.UUID) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return g, nil
}

// FindByPlayer returns the game the connection plays in
func (r *InMemoryGameRepository) FindByPlayer(conn uuid.UUID) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPlayer[conn]
	if !ok {
		return nil, ErrGameNotFound
	}

	return r.games[id], nil
}

// DeleteGame removes the game, its seats and its spectators. It reports
// false when the game was already gone, so callers finalize only once.
func (r *InMemoryGameRepository) DeleteGame(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return false
	}

	delete(r.games, id)
	delete(r.byPlayer, g.White)
	delete(r.byPlayer, g.Black)
	for conn, gameID := range r.watching {
		if gameID == id {
			delete(r.watching, conn)
		}
	}
	if r.newest == id {
		r.newest = uuid.Nil
		for _, other := range r.games {
			if r.newest == uuid.Nil || other.CreatedAt.After(r.games[r.newest].CreatedAt) {
				r.newest = other.ID
			}
		}
	}

	r.logger.Debug("game deleted", zap.String("game_id", id.String()))
	return true
}

// Newest returns the most recently created active game
func (r *InMemoryGameRepository) Newest() (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[r.newest]
	if !ok {
		return nil, ErrGameNotFound
	}

	return g, nil
}

// Watch records conn as a spectator of the game
func (r *InMemoryGameRepository) Watch(conn, gameID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[gameID]
	if !ok {
		return ErrGameNotFound
	}

	g.AddSpectator(conn)
	r.watching[conn] = gameID
	return nil
}

// Unwatch removes conn from whatever room it is watching and reports
// whether it was watching one.
func (r *InMemoryGameRepository) Unwatch(conn uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	gameID, ok := r.watching[conn]
	if !ok {
		return false
	}

	delete(r.watching, conn)
	if g, ok := r.games[gameID]; ok {
		g.RemoveSpectator(conn)
	}

	return true
}

// ParkWaiting puts conn into the empty waiting slot. It reports false if
// the slot is already taken.
func (r *InMemoryGameRepository) ParkWaiting(conn uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isWaiting {
		return false
	}

	r.waiting = conn
	r.isWaiting = true
	return true
}

// PopWaiting empties the waiting slot and returns its occupant
func (r *InMemoryGameRepository) PopWaiting() (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isWaiting {
		return uuid.Nil, false
	}

	conn := r.waiting
	r.waiting = uuid.Nil
	r.isWaiting = false
	return conn, true
}

// ClearWaiting empties the slot if conn is the one waiting
func (r *InMemoryGameRepository) ClearWaiting(conn uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isWaiting || r.waiting != conn {
		return false
	}

	r.waiting = uuid.Nil
	r.isWaiting = false
	return true
}

// Waiting returns the occupant of the waiting slot
func (r *InMemoryGameRepository) Waiting() (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.waiting, r.isWaiting
}

// ListActiveGames returns all active games
func (r *InMemoryGameRepository) ListActiveGames() []*game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activeGames := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		if g.Status == game.StatusActive {
			activeGames = append(activeGames, g)
		}
	}

	return activeGames
}

// Count returns the number of registered games
func (r *InMemoryGameRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.games)
}
