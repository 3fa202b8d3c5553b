package ws

import "github.com/akshatyadav31/Lumora-Ai/internal/domain"

// Frame types from client to server
const (
	TypeAsk = "ask"
)

// Frame types from server to client
const (
	TypeMessage = "message"
	TypeState   = "state"
	TypeError   = "error"
)

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeRefused        = "refused"
	ErrorCodeBusy           = "busy"
	ErrorCodeInternalError  = "internal_error"
)

// BaseFrame contains common fields for all frames.
type BaseFrame struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
}

// AskFrame is sent by the client to submit a question.
type AskFrame struct {
	BaseFrame
	Content string `json:"content"`
}

// MessageFrame carries one appended transcript message.
type MessageFrame struct {
	BaseFrame
	Message *domain.Message `json:"message"`
}

// StateFrame carries a turn state snapshot.
type StateFrame struct {
	BaseFrame
	State *domain.TurnStatus `json:"state"`
}

// ErrorBody describes a rejected frame.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorFrame is sent to the connection whose frame was rejected.
type ErrorFrame struct {
	BaseFrame
	Error ErrorBody `json:"error"`
}

// ServerFrame is the union of server frames, for clients decoding any of them.
type ServerFrame struct {
	BaseFrame
	Message *domain.Message    `json:"message,omitempty"`
	State   *domain.TurnStatus `json:"state,omitempty"`
	Error   *ErrorBody         `json:"error,omitempty"`
}
