package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
	"github.com/akshatyadav31/Lumora-Ai/internal/service"
)

// Conversation is the part of the orchestrator the socket needs.
type Conversation interface {
	SendMessage(ctx context.Context, content string) (*domain.Message, error)
	State(ctx context.Context) domain.TurnStatus
	Subscribe(fn func(service.Event)) func()
}

// Options tune connection keep-alive and limits.
type Options struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
}

// Server handles WebSocket connections.
type Server struct {
	opts     Options
	hub      *Hub
	conv     Conversation
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewServer creates a WebSocket server subscribed to conv's events. The
// returned function unsubscribes it.
func NewServer(opts Options, h *Hub, conv Conversation, log logrus.FieldLogger) (*Server, func()) {
	s := &Server{
		opts: opts,
		hub:  h,
		conv: conv,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Single-user local service.
				return true
			},
		},
	}
	unsubscribe := conv.Subscribe(s.forward)
	return s, unsubscribe
}

// forward turns an orchestrator event into a frame for every client.
func (s *Server) forward(ev service.Event) {
	ts := time.Now().UnixMilli()
	var frame interface{}
	switch ev.Type {
	case service.EventMessage:
		frame = MessageFrame{BaseFrame: BaseFrame{Type: TypeMessage, Ts: ts}, Message: ev.Message}
	case service.EventState:
		frame = StateFrame{BaseFrame: BaseFrame{Type: TypeState, Ts: ts}, State: ev.State}
	default:
		return
	}
	if err := s.hub.BroadcastJSON(frame); err != nil {
		s.log.WithError(err).Warn("failed to encode frame")
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.WithError(err).Warn("failed to upgrade websocket")
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	if s.opts.MaxMessageSize > 0 {
		ws.SetReadLimit(s.opts.MaxMessageSize)
	}

	state := s.conv.State(c.Request().Context())
	s.hub.SendJSONToConnection(conn, StateFrame{
		BaseFrame: BaseFrame{Type: TypeState, Ts: time.Now().UnixMilli()},
		State:     &state,
	})

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads frames from the WebSocket connection.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	s.extendRead(conn)
	conn.Conn.SetPongHandler(func(string) error {
		s.extendRead(conn)
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.WithError(err).Warn("websocket read failed")
			}
			break
		}
		s.extendRead(conn)
		s.handleFrame(conn, message)
	}
}

func (s *Server) extendRead(conn *Connection) {
	if s.opts.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}
}

// writePump writes frames to the WebSocket connection.
func (s *Server) writePump(conn *Connection) {
	interval := s.opts.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			s.extendWrite(conn)
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.WithError(err).Debug("failed to write frame")
				return
			}

		case <-ticker.C:
			s.extendWrite(conn)
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) extendWrite(conn *Connection) {
	if s.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
}

// handleFrame dispatches an incoming frame.
func (s *Server) handleFrame(conn *Connection, data []byte) {
	var base BaseFrame
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case TypeAsk:
		s.handleAsk(conn, data)
	default:
		s.sendError(conn, base.RequestID, ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// handleAsk submits a question. The transcript messages it produces reach
// every client through the hub; only refusals go back to the sender.
func (s *Server) handleAsk(conn *Connection, data []byte) {
	var frame AskFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid ask message")
		return
	}

	// Turns can take as long as the provider does; do not block the reader.
	go func() {
		if _, err := s.conv.SendMessage(context.Background(), frame.Content); err != nil {
			s.log.WithError(err).WithField("conn_id", conn.ID).Info("ask rejected")
			s.sendError(conn, frame.RequestID, errorCode(err), err.Error())
		}
	}()
}

func errorCode(err error) string {
	switch lerrors.KindOf(err) {
	case lerrors.KindConflict:
		return ErrorCodeBusy
	case lerrors.KindUnsupportedInput:
		return ErrorCodeRefused
	default:
		return ErrorCodeInternalError
	}
}

// sendError sends an error frame to a connection.
func (s *Server) sendError(conn *Connection, requestID, code, message string) {
	s.hub.SendJSONToConnection(conn, ErrorFrame{
		BaseFrame: BaseFrame{Type: TypeError, Ts: time.Now().UnixMilli(), RequestID: requestID},
		Error:     ErrorBody{Code: code, Message: message},
	})
}
