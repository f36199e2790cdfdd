package models

import (
	"encoding/json"
	"time"
)

// Role tags who authored a message. The set is closed: unknown wire values
// decode as RoleAssistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "bot"
	RoleSystem    Role = "system"
	// RolePending marks the client-side "assistant is composing" placeholder.
	RolePending Role = "bot-typing"
)

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Non-string roles are treated like any other non-user role.
		*r = RoleAssistant
		return nil
	}
	*r = ParseRole(s)
	return nil
}

// ParseRole maps a wire value onto the closed role set.
func ParseRole(s string) Role {
	switch s {
	case string(RoleUser):
		return RoleUser
	case string(RoleSystem):
		return RoleSystem
	case string(RolePending):
		return RolePending
	default:
		// "bot", "assistant" and anything unrecognised
		return RoleAssistant
	}
}

// Message represents a single turn in a conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// RelayRequest is the body accepted by POST /request and POST /spell-check.
// Conversation is kept raw so that a non-array value falls back to Prompt.
type RelayRequest struct {
	Conversation json.RawMessage `json:"conversation,omitempty"`
	Prompt       *string         `json:"prompt,omitempty"`
}

// RelayResponse is returned on success by both endpoints.
type RelayResponse struct {
	GeneratedText string `json:"generatedText"`
}

// ErrorResponse is returned with HTTP 500 on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RelayEvent describes one completed relay call for observers.
type RelayEvent struct {
	RequestID     string    `json:"request_id"`
	Endpoint      string    `json:"endpoint"`
	Prompt        string    `json:"prompt"`
	GeneratedText string    `json:"generated_text,omitempty"`
	Error         string    `json:"error,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	At            time.Time `json:"at"`
}
