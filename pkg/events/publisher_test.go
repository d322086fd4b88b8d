package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()

	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	return Event{}
}

func TestPublishReachesTypedAndAllSubscribers(t *testing.T) {
	p := NewPublisher()

	typed := make(chan Event, 1)
	all := make(chan Event, 2)
	p.Subscribe(EventGameOver, func(e Event) { typed <- e })
	p.SubscribeAll(func(e Event) { all <- e })

	p.Publish(Event{Type: EventGameOver, GameID: "g1"})

	assert.Equal(t, "g1", receive(t, typed).GameID)
	assert.Equal(t, EventGameOver, receive(t, all).Type)

	p.Publish(Event{Type: EventMoveApplied, GameID: "g2"})
	assert.Equal(t, EventMoveApplied, receive(t, all).Type)

	select {
	case e := <-typed:
		t.Fatalf("typed handler got %v", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}
