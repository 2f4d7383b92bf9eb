package streaming

import (
	"encoding/json"

	"github.com/nightdrive/showcase/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeFrame        = "frame"
	TypeEvent        = "event"
	TypeNotice       = "notice"
	TypeHello        = "hello"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session header.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// NoticePayload is a user-facing message the viewer should display.
type NoticePayload struct {
	Message string `json:"message"`
}

// HelloPayload is sent to a viewer right after it connects.
type HelloPayload struct {
	Session *core.Session    `json:"session,omitempty"`
	Frame   *core.FrameState `json:"frame,omitempty"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
