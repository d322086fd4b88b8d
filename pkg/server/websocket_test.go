package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/tecu23/chess-rooms/pkg/events"
	"github.com/tecu23/chess-rooms/pkg/manager"
	"github.com/tecu23/chess-rooms/pkg/messages"
	"github.com/tecu23/chess-rooms/pkg/repository"
)

type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func startServer(t *testing.T) string {
	t.Helper()

	logger := zaptest.NewLogger(t)
	publisher := events.NewPublisher()
	hub := NewHub(publisher, logger)
	gm := manager.NewManager(
		repository.NewInMemoryRepository(logger),
		hub,
		publisher,
		logger,
		manager.Options{Clock: clockwork.NewFakeClock()},
	)
	t.Cleanup(runHub(hub, gm))

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// the pumps outlive the test
		conn := NewConnection(ws, hub, zap.NewNop())
		hub.Register(conn)
		go conn.WritePump()
		go conn.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, ws.ReadJSON(&f))
	return f
}

func readEvents(t *testing.T, ws *websocket.Conn, n int) []frame {
	t.Helper()

	frames := make([]frame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, readFrame(t, ws))
	}
	return frames
}

func TestWebsocketGame(t *testing.T) {
	url := startServer(t)

	a := dial(t, url)
	assert.Equal(t, messages.EventWaiting, readFrame(t, a).Event)

	b := dial(t, url)

	aFrames := readEvents(t, a, 3)
	bFrames := readEvents(t, b, 3)
	assert.Equal(t, messages.EventPlayerRole, aFrames[0].Event)
	assert.Equal(t, messages.EventTimerUpdate, bFrames[2].Event)

	var role messages.PlayerRolePayload
	require.NoError(t, json.Unmarshal(aFrames[0].Payload, &role))
	assert.Equal(t, "w", role.Role)

	require.NoError(t, a.WriteJSON(map[string]interface{}{
		"type": messages.TypeMove,
		"payload": messages.MakeMovePayload{
			GameID: role.GameID,
			Move:   messages.MoveRequest{From: "e2", To: "e4", Promotion: "q"},
		},
	}))

	for _, ws := range []*websocket.Conn{a, b} {
		frames := readEvents(t, ws, 3)
		assert.Equal(t, messages.EventMove, frames[0].Event)
		assert.Equal(t, messages.EventBoardState, frames[1].Event)

		var timer messages.TimerUpdatePayload
		require.NoError(t, json.Unmarshal(frames[2].Payload, &timer))
		assert.Equal(t, messages.TimerUpdatePayload{WhiteSeconds: 30, BlackSeconds: 30}, timer)
	}

	require.NoError(t, b.Close())

	over := readFrame(t, a)
	require.Equal(t, messages.EventGameOver, over.Event)

	var result messages.GameOverPayload
	require.NoError(t, json.Unmarshal(over.Payload, &result))
	assert.Equal(t, messages.GameOverPayload{Winner: "w", Reason: manager.OpponentLeftReason}, result)
}
