package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tecu23/chess-rooms/pkg/events"
	"github.com/tecu23/chess-rooms/pkg/game"
	"github.com/tecu23/chess-rooms/pkg/messages"
)

type call struct {
	name string
	conn uuid.UUID
	arg  interface{}
}

type fakeCoordinator struct {
	calls    chan call
	ticks    chan game.Tick
	shutdown chan struct{}
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{
		calls:    make(chan call, 16),
		ticks:    make(chan game.Tick, 1),
		shutdown: make(chan struct{}),
	}
}

func (f *fakeCoordinator) HandleConnect(conn uuid.UUID) {
	f.calls <- call{name: "connect", conn: conn}
}

func (f *fakeCoordinator) HandleDisconnect(conn uuid.UUID) {
	f.calls <- call{name: "disconnect", conn: conn}
}

func (f *fakeCoordinator) HandleMove(conn uuid.UUID, p messages.MakeMovePayload) {
	f.calls <- call{name: "move", conn: conn, arg: p}
}

func (f *fakeCoordinator) HandleBoardStateRequest(conn uuid.UUID, p messages.RequestBoardStatePayload) {
	f.calls <- call{name: "boardState", conn: conn, arg: p}
}

func (f *fakeCoordinator) HandleTick(t game.Tick) {
	f.calls <- call{name: "tick", arg: t}
}

func (f *fakeCoordinator) Ticks() <-chan game.Tick { return f.ticks }

func (f *fakeCoordinator) Shutdown() { close(f.shutdown) }

func nextCall(t *testing.T, f *fakeCoordinator) call {
	t.Helper()

	select {
	case c := <-f.calls:
		return c
	case <-time.After(time.Second):
		t.Fatal("expected coordinator call")
	}

	return call{}
}

func nextFrame(t *testing.T, conn *Connection) messages.OutboundMessage {
	t.Helper()

	select {
	case data := <-conn.send:
		var msg messages.OutboundMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected outbound frame")
	}

	return messages.OutboundMessage{}
}

// runHub starts the hub loop and returns a cleanup that stops it and waits
// for Run to return, so nothing logs after the test ends.
func runHub(hub *Hub, c Coordinator) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(c)
	}()

	return func() {
		hub.Shutdown()
		<-done
	}
}

func startHub(t *testing.T) (*Hub, *fakeCoordinator) {
	t.Helper()

	hub := NewHub(events.NewPublisher(), zaptest.NewLogger(t))
	coord := newFakeCoordinator()
	t.Cleanup(runHub(hub, coord))

	return hub, coord
}

func TestHubRoutesInbound(t *testing.T) {
	hub, coord := startHub(t)
	conn := NewConnection(nil, hub, zaptest.NewLogger(t))

	hub.Register(conn)
	assert.Equal(t, call{name: "connect", conn: conn.ID}, nextCall(t, coord))
	assert.Equal(t, 1, hub.Count())

	hub.Dispatch(InboundHubMessage{Conn: conn, Message: messages.InboundMessage{
		Type:    messages.TypeMove,
		Payload: json.RawMessage(`{"move":{"from":"e2","to":"e4","promotion":"q"},"gameId":"g"}`),
	}})
	c := nextCall(t, coord)
	assert.Equal(t, "move", c.name)
	assert.Equal(t, messages.MakeMovePayload{
		GameID: "g",
		Move:   messages.MoveRequest{From: "e2", To: "e4", Promotion: "q"},
	}, c.arg)

	hub.Dispatch(InboundHubMessage{Conn: conn, Message: messages.InboundMessage{
		Type:    messages.TypeRequestBoardState,
		Payload: json.RawMessage(`{"gameId":"g"}`),
	}})
	c = nextCall(t, coord)
	assert.Equal(t, "boardState", c.name)
	assert.Equal(t, messages.RequestBoardStatePayload{GameID: "g"}, c.arg)

	hub.Dispatch(InboundHubMessage{Conn: conn, Message: messages.InboundMessage{Type: messages.TypePlayerExit}})
	assert.Equal(t, call{name: "disconnect", conn: conn.ID}, nextCall(t, coord))

	tick := game.Tick{GameID: uuid.New(), Seq: 3}
	coord.ticks <- tick
	assert.Equal(t, call{name: "tick", arg: tick}, nextCall(t, coord))
}

func TestHubRejectsUnknownAndMalformed(t *testing.T) {
	hub, coord := startHub(t)
	conn := NewConnection(nil, hub, zaptest.NewLogger(t))
	hub.Register(conn)
	nextCall(t, coord)

	hub.Dispatch(InboundHubMessage{Conn: conn, Message: messages.InboundMessage{Type: "resign"}})
	msg := nextFrame(t, conn)
	assert.Equal(t, messages.EventError, msg.Event)

	hub.Dispatch(InboundHubMessage{Conn: conn, Message: messages.InboundMessage{
		Type:    messages.TypeMove,
		Payload: json.RawMessage(`"e2e4"`),
	}})
	msg = nextFrame(t, conn)
	assert.Equal(t, messages.EventError, msg.Event)

	select {
	case c := <-coord.calls:
		t.Fatalf("unexpected coordinator call %v", c.name)
	default:
	}
}

func TestHubUnregisterDisconnectsOnce(t *testing.T) {
	hub, coord := startHub(t)
	conn := NewConnection(nil, hub, zaptest.NewLogger(t))
	hub.Register(conn)
	nextCall(t, coord)

	hub.Unregister(conn)
	assert.Equal(t, call{name: "disconnect", conn: conn.ID}, nextCall(t, coord))

	hub.Unregister(conn)
	select {
	case c := <-coord.calls:
		t.Fatalf("unexpected coordinator call %v", c.name)
	case <-time.After(50 * time.Millisecond):
	}

	_, open := <-conn.send
	assert.False(t, open, "send channel is closed on unregister")
	assert.Equal(t, 0, hub.Count())

	hub.Send(conn.ID, messages.OutboundMessage{Event: messages.EventWaiting})
}

func TestHubShutdownStopsCoordinator(t *testing.T) {
	hub, coord := startHub(t)

	hub.Shutdown()
	hub.Shutdown()

	select {
	case <-coord.shutdown:
	case <-time.After(time.Second):
		t.Fatal("coordinator was not shut down")
	}

	conn := NewConnection(nil, hub, zaptest.NewLogger(t))
	hub.Register(conn)
}
