package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound event names
const (
	EventJoin           = "join"
	EventCodeChange     = "code-change"
	EventLanguageChange = "language-change"
)

// Outbound event names
const (
	EventSessionState   = "session-state"
	EventCodeUpdate     = "code-update"
	EventLanguageUpdate = "language-update"
	EventError          = "error"
)

// Envelope is the wire frame for every event in both directions: an event
// name plus a JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinData struct {
	SessionID string `json:"sessionId"`
}

// CodeChangeData uses a pointer for Code so a missing or non-string field is
// distinguishable from an explicitly empty buffer.
type CodeChangeData struct {
	SessionID string  `json:"sessionId"`
	Code      *string `json:"code"`
}

type LanguageChangeData struct {
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
}

type SessionStateData struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CodeUpdateData struct {
	Code string `json:"code"`
}

type LanguageUpdateData struct {
	Language string `json:"language"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// Decode parses a raw inbound frame into an Envelope.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed event frame: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("event frame missing event name")
	}
	return env, nil
}

// Encode builds the wire bytes for an outbound event.
func Encode(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: payload})
}
