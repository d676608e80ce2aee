package convo_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nmburu/supportprobe/internal/config"
	convomodel "github.com/nmburu/supportprobe/internal/model/convo"
	"github.com/nmburu/supportprobe/internal/model/faq"
	convo "github.com/nmburu/supportprobe/internal/service/convo"
)

type generatorFunc func(ctx context.Context, history []convomodel.Message) (string, error)

func (f generatorFunc) Reply(ctx context.Context, history []convomodel.Message) (string, error) {
	return f(ctx, history)
}

var failingGenerator = generatorFunc(func(context.Context, []convomodel.Message) (string, error) {
	return "", errors.New("backend unavailable")
})

type captureRecorder struct {
	mu   sync.Mutex
	rows []convo.Row
	err  error
}

func (r *captureRecorder) Append(_ context.Context, row convo.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	return r.err
}

func (r *captureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *captureRecorder) last() convo.Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[len(r.rows)-1]
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		IdleTimeout:   time.Minute,
		PollInterval:  time.Second,
		PersonaPrompt: "You are a probing customer.",
		AgentName:     "AI Agent",
	}
}

func newService(gen convo.Generator, rec convo.Recorder) *convo.Service {
	return convo.NewService(faq.NewMemoryStore(faq.Seed()), gen, rec, testConfig())
}

func TestTurnSeedsSystemPromptOnce(t *testing.T) {
	svc := newService(failingGenerator, nil)
	ctx := context.Background()

	for _, message := range []string{"hello", "how to deposit", "anything else"} {
		if _, err := svc.Turn(ctx, message); err != nil {
			t.Fatalf("Turn(%q) err: %v", message, err)
		}
	}

	history := svc.History()
	systemCount := 0
	for _, msg := range history {
		if msg.Role == convomodel.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Fatalf("expected exactly one system entry, got %d", systemCount)
	}
	if history[0].Role != convomodel.RoleSystem {
		t.Fatalf("expected system entry first, got role %q", history[0].Role)
	}
}

func TestTurnRejectsEmptyMessage(t *testing.T) {
	svc := newService(failingGenerator, nil)

	for _, message := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Turn(context.Background(), message); !errors.Is(err, convo.ErrEmptyMessage) {
			t.Fatalf("Turn(%q) err = %v, want ErrEmptyMessage", message, err)
		}
	}

	if got := len(svc.History()); got != 0 {
		t.Fatalf("rejected turns must not mutate history, got %d entries", got)
	}
}

func TestFAQPrecedence(t *testing.T) {
	svc := newService(failingGenerator, nil)

	want := ""
	for _, entry := range faq.Seed() {
		if faq.Normalize(entry.Question) == "how to deposit" {
			want = entry.Answer
		}
	}
	if want == "" {
		t.Fatal("seed data no longer contains the deposit question")
	}

	// Normalization is case- and whitespace-insensitive.
	reply, err := svc.Turn(context.Background(), "  How TO   Deposit ")
	if err != nil {
		t.Fatalf("Turn err: %v", err)
	}
	if reply != want {
		t.Fatalf("expected canned answer verbatim, got %q", reply)
	}
}

func TestDegradationOnGeneratorFailure(t *testing.T) {
	svc := newService(failingGenerator, nil)

	reply, err := svc.Turn(context.Background(), "tell me about your office dog")
	if err != nil {
		t.Fatalf("Turn err: %v", err)
	}
	if reply != convo.ApologyReply {
		t.Fatalf("expected apology reply, got %q", reply)
	}

	history := svc.History()
	if len(history) != 3 {
		t.Fatalf("expected system+user+assistant entries, got %d", len(history))
	}
	if history[1].Role != convomodel.RoleUser || history[2].Role != convomodel.RoleAssistant {
		t.Fatalf("unexpected roles: %q then %q", history[1].Role, history[2].Role)
	}
	if strings.TrimSpace(history[2].Content) == "" {
		t.Fatal("assistant entry must be non-empty")
	}
}

func TestGeneratorReceivesFullHistory(t *testing.T) {
	var seen []convomodel.Message
	gen := generatorFunc(func(_ context.Context, history []convomodel.Message) (string, error) {
		seen = append([]convomodel.Message(nil), history...)
		return "noted", nil
	})
	svc := newService(gen, nil)

	if _, err := svc.Turn(context.Background(), "is trading risky"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected system+user history, got %d entries", len(seen))
	}
	if seen[0].Role != convomodel.RoleSystem {
		t.Fatalf("expected system prompt first, got %q", seen[0].Role)
	}
	if seen[1].Content != "is trading risky" {
		t.Fatalf("expected pending user message last, got %q", seen[1].Content)
	}
}

func TestTurnAdvancesActivityClock(t *testing.T) {
	svc := newService(failingGenerator, nil)

	before := time.Now()
	if _, err := svc.Turn(context.Background(), "hello"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}

	if svc.LastActivity().Before(before) {
		t.Fatalf("lastActivity %v is before turn invocation %v", svc.LastActivity(), before)
	}
}

func TestEndIdempotent(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(failingGenerator, rec)

	if _, err := svc.Turn(context.Background(), "how to deposit"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}

	if !svc.End(convo.ReasonExplicit) {
		t.Fatal("first End should win")
	}
	if svc.End(convo.ReasonTimeout) {
		t.Fatal("second End should be a no-op")
	}

	if !svc.Ended() {
		t.Fatal("session should be ended")
	}
	if rec.count() != 1 {
		t.Fatalf("expected exactly one recorded transcript, got %d", rec.count())
	}
}

func TestEndEmptySessionSkipsRecorder(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(failingGenerator, rec)

	if !svc.End(convo.ReasonTimeout) {
		t.Fatal("End should succeed on an empty session")
	}
	if rec.count() != 0 {
		t.Fatalf("empty session must not record a transcript, got %d rows", rec.count())
	}
}

func TestEndSurvivesRecorderFailure(t *testing.T) {
	rec := &captureRecorder{err: errors.New("sheet unavailable")}
	svc := newService(failingGenerator, rec)

	if _, err := svc.Turn(context.Background(), "hello"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}

	if !svc.End(convo.ReasonTimeout) {
		t.Fatal("End should complete despite recorder failure")
	}
	if !svc.Ended() {
		t.Fatal("ended transition must not be reversed by recorder failure")
	}
}

func TestEndRendersTranscript(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(failingGenerator, rec)

	answer := ""
	for _, entry := range faq.Seed() {
		if faq.Normalize(entry.Question) == "how to deposit" {
			answer = entry.Answer
		}
	}

	if _, err := svc.Turn(context.Background(), "how to deposit"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}
	svc.End(convo.ReasonExplicit)

	row := rec.last()
	wantTranscript := "user: how to deposit\nassistant: " + answer
	if row.Transcript != wantTranscript {
		t.Fatalf("transcript mismatch:\ngot  %q\nwant %q", row.Transcript, wantTranscript)
	}
	if row.Assessment != "Conversation ended due to Explicit end" {
		t.Fatalf("unexpected assessment: %q", row.Assessment)
	}
	if row.Agent != "AI Agent" {
		t.Fatalf("unexpected agent label: %q", row.Agent)
	}
	if _, err := time.Parse("2006-01-02", row.Date); err != nil {
		t.Fatalf("bad date %q: %v", row.Date, err)
	}
	if _, err := time.Parse("15:04:05", row.Time); err != nil {
		t.Fatalf("bad time %q: %v", row.Time, err)
	}
}

func TestTurnAfterEndStillAppends(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(failingGenerator, rec)

	if _, err := svc.Turn(context.Background(), "hello"); err != nil {
		t.Fatalf("Turn err: %v", err)
	}
	svc.End(convo.ReasonTimeout)

	// The last-writer-wins contract: replies landing after termination are
	// still appended, only the snapshot taken at End is recorded.
	if _, err := svc.Turn(context.Background(), "still there?"); err != nil {
		t.Fatalf("Turn after End err: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("turns after End must not trigger extra records, got %d", rec.count())
	}
}
