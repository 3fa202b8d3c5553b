package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
	"github.com/akshatyadav31/Lumora-Ai/internal/logger"
	"github.com/akshatyadav31/Lumora-Ai/internal/service"
)

// fakeConversation echoes every question back as an assistant message,
// refusing "busy".
type fakeConversation struct {
	mu   sync.Mutex
	subs []func(service.Event)
}

func (f *fakeConversation) SendMessage(ctx context.Context, content string) (*domain.Message, error) {
	if content == "busy" {
		return nil, lerrors.New(lerrors.KindConflict, "another request is still being processed")
	}
	msg := &domain.Message{MessageID: "msg_1", Role: domain.RoleAssistant, Content: "echo: " + content}
	f.mu.Lock()
	subs := append([]func(service.Event){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(service.Event{Type: service.EventMessage, Message: msg})
	}
	return msg, nil
}

func (f *fakeConversation) State(ctx context.Context) domain.TurnStatus {
	return domain.TurnStatus{State: domain.TurnStateIdle, ActiveDatasetID: "1"}
}

func (f *fakeConversation) Subscribe(fn func(service.Event)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {}
}

func newTestSocket(t *testing.T) (*websocket.Conn, *Hub) {
	t.Helper()
	log := logger.Discard()
	hub := NewHub(log)
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv, unsubscribe := NewServer(Options{
		PingInterval: time.Second,
		WriteTimeout: time.Second,
		ReadTimeout:  5 * time.Second,
	}, hub, &fakeConversation{}, log)
	t.Cleanup(unsubscribe)

	e := echo.New()
	e.GET("/v1/ws", srv.HandleWebSocket)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, hub
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame ServerFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestConnectSendsState(t *testing.T) {
	conn, hub := newTestSocket(t)

	frame := readFrame(t, conn)
	assert.Equal(t, TypeState, frame.Type)
	require.NotNil(t, frame.State)
	assert.Equal(t, "1", frame.State.ActiveDatasetID)
	assert.Equal(t, 1, hub.GetConnectionCount())
}

func TestAskBroadcastsMessage(t *testing.T) {
	conn, _ := newTestSocket(t)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(AskFrame{BaseFrame: BaseFrame{Type: TypeAsk}, Content: "top regions"}))

	frame := readFrame(t, conn)
	assert.Equal(t, TypeMessage, frame.Type)
	require.NotNil(t, frame.Message)
	assert.Equal(t, "echo: top regions", frame.Message.Content)
}

func TestAskRejected(t *testing.T) {
	conn, _ := newTestSocket(t)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(AskFrame{BaseFrame: BaseFrame{Type: TypeAsk, RequestID: "r1"}, Content: "busy"}))

	frame := readFrame(t, conn)
	assert.Equal(t, TypeError, frame.Type)
	assert.Equal(t, "r1", frame.RequestID)
	require.NotNil(t, frame.Error)
	assert.Equal(t, ErrorCodeBusy, frame.Error.Code)
}

func TestInvalidFrames(t *testing.T) {
	conn, _ := newTestSocket(t)
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	frame := readFrame(t, conn)
	assert.Equal(t, TypeError, frame.Type)
	assert.Equal(t, ErrorCodeInvalidMessage, frame.Error.Code)

	require.NoError(t, conn.WriteJSON(BaseFrame{Type: "hello"}))
	frame = readFrame(t, conn)
	assert.Equal(t, ErrorCodeInvalidMessage, frame.Error.Code)
	assert.Contains(t, frame.Error.Message, "hello")
}
