package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gemini-relay/internal/models"
)

type stubRelay struct {
	reply string
	err   error

	started chan struct{}
	release chan struct{}
	got     [][]models.Message
}

func (r *stubRelay) Request(ctx context.Context, conversation []models.Message) (string, error) {
	r.got = append(r.got, conversation)
	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	return r.reply, r.err
}

func TestNewSession_SeededWithWelcome(t *testing.T) {
	s := NewSession(&stubRelay{})

	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != models.RoleAssistant || msgs[0].Text != WelcomeText {
		t.Fatalf("unexpected seed %+v", msgs)
	}
	if s.Busy() || s.Err() != "" {
		t.Fatal("fresh session must be idle without error")
	}
}

func TestSession_SubmitSendsFullHistoryAndAppendsReply(t *testing.T) {
	relay := &stubRelay{reply: "Drink water."}
	s := NewSession(relay)

	if err := s.Submit(context.Background(), "I have a headache"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(relay.got) != 1 {
		t.Fatalf("expected one relay call, got %d", len(relay.got))
	}
	sent := relay.got[0]
	if len(sent) != 2 || sent[0].Text != WelcomeText || sent[1].Role != models.RoleUser || sent[1].Text != "I have a headache" {
		t.Fatalf("unexpected history sent %+v", sent)
	}

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	if len(msgs) != 3 || last.Role != models.RoleAssistant || last.Text != "Drink water." {
		t.Fatalf("unexpected conversation %+v", msgs)
	}
}

func TestSession_EmptyReplyFallsBack(t *testing.T) {
	s := NewSession(&stubRelay{reply: ""})

	if err := s.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := s.Messages()
	if msgs[len(msgs)-1].Text != NoResponseText {
		t.Fatalf("expected fallback text, got %q", msgs[len(msgs)-1].Text)
	}
}

func TestSession_ErrorBecomesAssistantMessage(t *testing.T) {
	s := NewSession(&stubRelay{err: errors.New("Server error: Internal Server Error")})

	err := s.Submit(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected relay error to be returned")
	}

	view := s.View()
	last := view[len(view)-1]
	if last.Role != models.RoleAssistant || !strings.HasPrefix(last.Text, "Error: ") {
		t.Fatalf("expected error bubble, got %+v", last)
	}
	for _, e := range view {
		if e.Pending() {
			t.Fatal("placeholder must be gone after the response")
		}
	}
	if s.Err() != "Server error: Internal Server Error" {
		t.Fatalf("unexpected banner %q", s.Err())
	}

	s.DismissError()
	if s.Err() != "" {
		t.Fatal("expected banner to be dismissed")
	}
}

func TestSession_EmptyInputIgnored(t *testing.T) {
	relay := &stubRelay{reply: "x"}
	s := NewSession(relay)

	if err := s.Submit(context.Background(), "   \t"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(relay.got) != 0 || len(s.Messages()) != 1 {
		t.Fatal("blank input must not change state or call the relay")
	}
}

func TestSession_SingleInFlightAndPlaceholder(t *testing.T) {
	relay := &stubRelay{reply: "done", started: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(relay)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Submit(context.Background(), "first") }()

	select {
	case <-relay.started:
	case <-time.After(2 * time.Second):
		t.Fatal("relay was never called")
	}

	if !s.Busy() {
		t.Fatal("expected session to be busy while waiting")
	}
	view := s.View()
	if !view[len(view)-1].Pending() {
		t.Fatalf("expected trailing placeholder, got %+v", view)
	}
	for _, m := range relay.got[0] {
		if m.Role == models.RolePending {
			t.Fatal("placeholder must never be sent to the relay")
		}
	}

	if err := s.Submit(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(relay.release)
	if err := <-errCh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view = s.View()
	if view[len(view)-1].Pending() || view[len(view)-1].Text != "done" {
		t.Fatalf("unexpected final view %+v", view)
	}
	if len(s.Messages()) != 3 {
		t.Fatalf("rejected submission must not be recorded, got %+v", s.Messages())
	}
}

func TestSession_PastMessagesAreNotMutated(t *testing.T) {
	relay := &stubRelay{reply: "one"}
	s := NewSession(relay)

	s.Submit(context.Background(), "a")
	before := s.Messages()
	relay.reply = "two"
	s.Submit(context.Background(), "b")
	after := s.Messages()

	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("message %d changed from %+v to %+v", i, before[i], after[i])
		}
	}
}
