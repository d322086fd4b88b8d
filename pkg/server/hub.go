package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/chess-rooms/pkg/events"
	"github.com/tecu23/chess-rooms/pkg/game"
	"github.com/tecu23/chess-rooms/pkg/messages"
)

// Coordinator is the game logic driven by the hub. All of its methods are
// called from the hub goroutine only.
type Coordinator interface {
	HandleConnect(conn uuid.UUID)
	HandleDisconnect(conn uuid.UUID)
	HandleMove(conn uuid.UUID, payload messages.MakeMovePayload)
	HandleBoardStateRequest(conn uuid.UUID, payload messages.RequestBoardStatePayload)
	HandleTick(t game.Tick)
	Ticks() <-chan game.Tick
	Shutdown()
}

// InboundHubMessage are the messages that the hub receives
type InboundHubMessage struct {
	Conn    *Connection             // who sent it
	Message messages.InboundMessage // raw JSON or texthub
}

// Hub should keep track of all active connection. Also be responsible of registering/unregistering connections
// Messages come from the inbound channel and are handed to the coordinator one at a time, interleaved
// with the coordinator's own clock ticks, so game state is only ever touched from the Run goroutine.
type Hub struct {
	mu          sync.RWMutex              // Mutex to protect direct access to the connections map.
	connections map[uuid.UUID]*Connection // Registered connections

	register   chan *Connection       // Incoming registration
	unregister chan *Connection       // Incoming unregistration
	inbound    chan InboundHubMessage // Channel or inbound messages that the hub routes to the coordinator

	quit     chan struct{}
	quitOnce sync.Once

	publisher *events.Publisher
	logger    *zap.Logger
}

// NewHub creates a new hub
func NewHub(publisher *events.Publisher, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan InboundHubMessage),
		quit:        make(chan struct{}),
		publisher:   publisher,
		logger:      logger,
	}
}

// Run is the main execution of the hub. It returns after Shutdown.
func (h *Hub) Run(c Coordinator) {
	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)
			c.HandleConnect(conn.ID)

		case conn := <-h.unregister:
			if h.isRegistered(conn) {
				c.HandleDisconnect(conn.ID)
				h.unregisterConnection(conn)
			}

		case msg := <-h.inbound:
			h.handleInbound(c, msg)

		case tick := <-c.Ticks():
			c.HandleTick(tick)

		case <-h.quit:
			c.Shutdown()
			h.closeAll()
			return
		}
	}
}

// Register hands a new connection to the hub
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.quit:
	}
}

// Unregister tells the hub the connection is gone
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// Dispatch queues an inbound message for the hub loop
func (h *Hub) Dispatch(msg InboundHubMessage) {
	select {
	case h.inbound <- msg:
	case <-h.quit:
	}
}

// Shutdown stops the hub loop. Safe to call more than once.
func (h *Hub) Shutdown() {
	h.quitOnce.Do(func() { close(h.quit) })
}

// Send queues a message for a single connection. Messages for unknown
// connections are dropped, as are messages for a client too slow to drain
// its buffer.
func (h *Hub) Send(id uuid.UUID, msg messages.OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling JSON", zap.String("event", msg.Event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.connections[id]
	if !ok {
		return
	}

	select {
	case conn.send <- data:
	default:
		h.logger.Warn("dropping message for slow connection",
			zap.String("connection_id", id.String()),
			zap.String("event", msg.Event),
		)
	}
}

// Count returns the number of registered connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) isRegistered(conn *Connection) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[conn.ID]
	return ok
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	count := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("New connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("connections", count),
	)
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	delete(h.connections, conn.ID)
	close(conn.send)
	count := len(h.connections)
	h.mu.Unlock()

	h.publisher.Publish(events.Event{
		Type: events.EventConnectionClosed,
		Payload: map[string]string{
			"connection_id": conn.ID.String(),
		},
	})

	h.logger.Info("Connection unregistered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("connections", count),
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		close(conn.send)
		delete(h.connections, id)
	}
}

// handleInbound is where you decode or route the message from a client.
func (h *Hub) handleInbound(c Coordinator, msg InboundHubMessage) {
	switch msg.Message.Type {
	case messages.TypeMove:
		var payload messages.MakeMovePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "Invalid move payload")
			return
		}
		c.HandleMove(msg.Conn.ID, payload)

	case messages.TypeRequestBoardState:
		var payload messages.RequestBoardStatePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "Invalid requestBoardState payload")
			return
		}
		c.HandleBoardStateRequest(msg.Conn.ID, payload)

	case messages.TypePlayerExit:
		c.HandleDisconnect(msg.Conn.ID)

	default:
		h.sendError(msg.Conn, "Unknown message type")
	}
}

func (h *Hub) sendError(conn *Connection, msg string) {
	h.Send(conn.ID, messages.OutboundMessage{
		Event: messages.EventError,
		Payload: messages.ErrorPayload{
			Message: msg,
		},
	})
}
