// Package chat holds the client side of the relay: an in-memory conversation
// with a single in-flight request, and the HTTP client that talks to the relay.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gemini-relay/internal/models"
)

const (
	WelcomeText    = "Hey there! How can I help you today?"
	NoResponseText = "No response generated."
	errorPrefix    = "Error: "
)

var (
	ErrEmptyInput = errors.New("message is empty")
	ErrBusy       = errors.New("a request is already in flight")
)

// Relay is the server collaborator the session sends its history to.
type Relay interface {
	Request(ctx context.Context, conversation []models.Message) (string, error)
}

// Entry is one rendered row. Pending entries are the "assistant is
// composing" placeholder and never leave the client.
type Entry struct {
	Role models.Role
	Text string
}

func (e Entry) Pending() bool { return e.Role == models.RolePending }

// Session owns the conversation for the lifetime of one client. Messages are
// only ever appended.
type Session struct {
	relay Relay

	mu       sync.Mutex
	messages []models.Message
	busy     bool
	lastErr  string
}

func NewSession(relay Relay) *Session {
	return &Session{
		relay:    relay,
		messages: []models.Message{{Role: models.RoleAssistant, Text: WelcomeText}},
	}
}

// Submit appends text as a user message, sends the full history to the relay
// and appends the reply, or an "Error: " message when the relay fails. Only
// one Submit may be outstanding; others get ErrBusy.
func (s *Session) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.lastErr = ""
	s.messages = append(s.messages, models.Message{Role: models.RoleUser, Text: text})
	history := make([]models.Message, len(s.messages))
	copy(history, s.messages)
	s.mu.Unlock()

	reply, err := s.relay.Request(ctx, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		s.lastErr = err.Error()
		s.messages = append(s.messages, models.Message{Role: models.RoleAssistant, Text: errorPrefix + err.Error()})
		return err
	}

	if reply == "" {
		reply = NoResponseText
	}
	s.messages = append(s.messages, models.Message{Role: models.RoleAssistant, Text: reply})
	return nil
}

// View returns the rows to render: every message plus a trailing pending
// entry while a request is outstanding.
func (s *Session) View() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.messages)+1)
	for _, m := range s.messages {
		entries = append(entries, Entry{Role: m.Role, Text: m.Text})
	}
	if s.busy {
		entries = append(entries, Entry{Role: models.RolePending})
	}
	return entries
}

// Messages returns a copy of the conversation as sent to the relay.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Err is the banner error from the last failed Submit, empty when none.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}
