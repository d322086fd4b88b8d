package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Tick is one clock period elapsing for a game
type Tick struct {
	GameID uuid.UUID
	Seq    uint64
}

// TurnTimer delivers a Tick for its game every interval until stopped.
type TurnTimer struct {
	ticker clockwork.Ticker
	done   chan struct{}
	once   sync.Once
}

// StartTurnTimer schedules a repeating tick and forwards each one to sink.
func StartTurnTimer(
	clock clockwork.Clock,
	interval time.Duration,
	gameID uuid.UUID,
	seq uint64,
	sink chan<- Tick,
) *TurnTimer {
	t := &TurnTimer{
		ticker: clock.NewTicker(interval),
		done:   make(chan struct{}),
	}

	go t.run(Tick{GameID: gameID, Seq: seq}, sink)

	return t
}

func (t *TurnTimer) run(tick Tick, sink chan<- Tick) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.Chan():
			select {
			case sink <- tick:
			case <-t.done:
				return
			}
		}
	}
}

// Stop cancels the timer. Safe to call more than once. A tick that was
// already in flight can still reach the sink, so receivers must check
// Game.IsCurrent.
func (t *TurnTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
