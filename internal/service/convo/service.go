package convo

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nmburu/supportprobe/internal/config"
	"github.com/nmburu/supportprobe/internal/model/convo"
	"github.com/nmburu/supportprobe/internal/model/faq"
)

// ApologyReply is returned when the generator cannot produce a response.
const ApologyReply = "Sorry, I couldn't process your request."

// Termination reasons recorded in the transcript assessment.
const (
	ReasonTimeout  = "Timeout"
	ReasonExplicit = "Explicit end"
)

// ErrEmptyMessage rejects turns whose message is missing or blank.
var ErrEmptyMessage = errors.New("message is required")

// Generator produces a free-text reply from the full conversation history.
type Generator interface {
	Reply(ctx context.Context, history []convo.Message) (string, error)
}

// Row is one recorded transcript entry.
type Row struct {
	Date       string
	Time       string
	Agent      string
	Transcript string
	Assessment string
}

// Recorder persists one row per ended session.
type Recorder interface {
	Append(ctx context.Context, row Row) error
}

// Service owns the single in-flight conversation: its message history,
// activity clock, and one-shot ended flag. The turn path and the idle
// supervisor share it; every field access goes through mu.
type Service struct {
	mu           sync.Mutex
	history      []convo.Message
	lastActivity time.Time
	ended        bool
	done         chan struct{}

	id        string
	faqs      faq.Store
	generator Generator
	recorder  Recorder
	cfg       config.SessionConfig
}

// NewService bootstraps a fresh session. A nil generator degrades every
// non-FAQ turn to the apology reply; a nil recorder makes termination
// log-only.
func NewService(faqs faq.Store, generator Generator, recorder Recorder, cfg config.SessionConfig) *Service {
	return &Service{
		history:      make([]convo.Message, 0, 16),
		lastActivity: time.Now(),
		done:         make(chan struct{}),
		id:           uuid.NewString(),
		faqs:         faqs,
		generator:    generator,
		recorder:     recorder,
		cfg:          cfg,
	}
}

// ID returns the session identifier used for log correlation.
func (s *Service) ID() string {
	return s.id
}

// Ended reports whether the session has terminated.
func (s *Service) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// LastActivity returns the time of the most recent user turn.
func (s *Service) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// History returns a snapshot of the conversation so far.
func (s *Service) History() []convo.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]convo.Message(nil), s.history...)
}

// Turn processes one inbound user message and returns the assistant reply.
// The activity clock advances before any resolution work so the idle
// supervisor sees client liveness even when resolution degrades. The lock
// is not held across the generator call.
func (s *Service) Turn(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	now := time.Now()

	s.mu.Lock()
	s.lastActivity = now
	if len(s.history) == 0 {
		s.history = append(s.history, convo.Message{
			Role:      convo.RoleSystem,
			Content:   s.cfg.PersonaPrompt,
			CreatedAt: now,
		})
	}
	s.history = append(s.history, convo.Message{
		Role:      convo.RoleUser,
		Content:   message,
		CreatedAt: now,
	})
	snapshot := append([]convo.Message(nil), s.history...)
	s.mu.Unlock()

	reply := s.resolve(ctx, message, snapshot)

	// The session may have ended while the generator call was in flight;
	// the reply is still appended (last-writer-wins, single session).
	s.mu.Lock()
	s.history = append(s.history, convo.Message{
		Role:      convo.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	return reply, nil
}

// resolve answers a turn: exact-match FAQ first, generator fallback, and
// the fixed apology when the generator is unavailable or fails.
func (s *Service) resolve(ctx context.Context, message string, history []convo.Message) string {
	if answer, ok := s.faqs.Lookup(message); ok {
		log.Printf("[convo] session=%s answered from FAQ", s.id)
		return answer
	}

	if s.generator == nil {
		log.Printf("[convo] session=%s no generator configured, degrading", s.id)
		return ApologyReply
	}

	reply, err := s.generator.Reply(ctx, history)
	if err != nil {
		log.Printf("[convo] session=%s generator error: %v", s.id, err)
		return ApologyReply
	}
	if strings.TrimSpace(reply) == "" {
		log.Printf("[convo] session=%s generator returned empty reply", s.id)
		return ApologyReply
	}
	return reply
}

// End transitions the session to ended and records the transcript. It is
// idempotent: the first caller wins and returns true, every later caller
// is a no-op returning false. Recorder failures are logged and never
// reverse the transition.
func (s *Service) End(reason string) bool {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return false
	}
	s.ended = true
	close(s.done)
	snapshot := append([]convo.Message(nil), s.history...)
	s.mu.Unlock()

	log.Printf("[convo] session=%s ended, reason=%s", s.id, reason)

	exchanges := 0
	for _, msg := range snapshot {
		if msg.Role != convo.RoleSystem {
			exchanges++
		}
	}
	if exchanges == 0 {
		log.Printf("[convo] session=%s had no exchanges, skipping transcript", s.id)
		return true
	}

	if s.recorder == nil {
		log.Printf("[convo] session=%s no recorder configured, transcript discarded", s.id)
		return true
	}

	now := time.Now()
	row := Row{
		Date:       now.Format("2006-01-02"),
		Time:       now.Format("15:04:05"),
		Agent:      s.cfg.AgentName,
		Transcript: convo.Transcript(snapshot),
		Assessment: "Conversation ended due to " + reason,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.recorder.Append(ctx, row); err != nil {
		log.Printf("[convo] session=%s failed to record transcript: %v", s.id, err)
	}
	return true
}
