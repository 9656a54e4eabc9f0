// Package chat holds the client-side conversation state machine: one session
// per persona, optimistic user messages, a hard per-turn deadline, and a
// failure taxonomy that always leaves the session in a recoverable state. The
// session never drops user input on failure; it parks it for retry.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/useattune/attune/client"
	"github.com/useattune/attune/plugin/persona"
)

const (
	// DefaultTimeout bounds one send round-trip.
	DefaultTimeout = 30 * time.Second
	// MaxMessageRunes is the longest input accepted, counted in runes. The
	// server enforces the same bound.
	MaxMessageRunes = 5000
)

var (
	// ErrBusy is returned when a send is attempted while one is in flight.
	ErrBusy = errors.New("chat: a send is already in flight")
	// ErrEmptyInput is returned for whitespace-only input. No state changes.
	ErrEmptyInput = errors.New("chat: empty input")
	// ErrInputTooLong is the cause behind the local length rejection.
	ErrInputTooLong = errors.New("chat: input exceeds limit")
	// ErrNothingToRetry is returned by Retry when no turn has failed.
	ErrNothingToRetry = errors.New("chat: nothing to retry")
)

// Role tags who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the transcript.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Sender dispatches one user message and returns the assistant reply.
// *client.Client satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, personaID, message string) (string, error)
}

// Session is the conversation with one persona. All methods are safe for
// concurrent use; at most one send is in flight at a time.
type Session struct {
	mu      sync.Mutex
	sender  Sender
	persona *persona.Persona
	timeout time.Duration
	now     func() time.Time
	newID   func() string

	messages []Message
	pending  string
	awaiting bool
	lastErr  *Error

	// epoch identifies the turn a settlement belongs to. A turn that already
	// settled (e.g. by deadline) bumps it, so a late result from the same
	// round-trip no longer matches and is discarded.
	epoch uint64
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithTimeout overrides the per-turn deadline.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// WithNowFunc overrides the clock used for message timestamps.
func WithNowFunc(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithIDFunc overrides the message ID generator.
func WithIDFunc(newID func() string) SessionOption {
	return func(s *Session) { s.newID = newID }
}

// NewSession opens a conversation with p. The persona greeting, when present,
// seeds the transcript as the first assistant message.
func NewSession(sender Sender, p *persona.Persona, opts ...SessionOption) *Session {
	s := &Session{
		sender:  sender,
		persona: p,
		timeout: DefaultTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if p.Greeting != "" {
		s.messages = append(s.messages, Message{
			ID:        s.newID(),
			Role:      RoleAssistant,
			Content:   p.Greeting,
			CreatedAt: s.now(),
		})
	}
	return s
}

// Send dispatches one user message and blocks until the turn settles, at most
// the session timeout. The user message is appended before dispatch. On
// failure the session appends a persona fallback message, records the error,
// and parks the input for Retry; it returns the *Error for that turn.
// Whitespace-only input returns ErrEmptyInput with no effect, and a send
// while another is in flight returns ErrBusy with no effect.
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return ErrBusy
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		serr := &Error{
			Category: CategoryInvalidRequest,
			Message:  noticeText(CategoryInvalidRequest),
			Err:      ErrInputTooLong,
		}
		s.lastErr = serr
		s.mu.Unlock()
		return serr
	}
	s.messages = append(s.messages, Message{
		ID:        s.newID(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	})
	s.awaiting = true
	s.lastErr = nil
	epoch := s.epoch
	s.mu.Unlock()

	return s.roundTrip(ctx, epoch, text)
}

// Retry re-sends the parked input from the last failed turn, byte for byte.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return ErrBusy
	}
	text := s.pending
	s.mu.Unlock()

	if text == "" {
		return ErrNothingToRetry
	}
	return s.Send(ctx, text)
}

func (s *Session) roundTrip(parent context.Context, epoch uint64, text string) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	type result struct {
		reply string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		reply, err := s.sender.SendMessage(ctx, s.persona.ID, text)
		ch <- result{reply: reply, err: err}
	}()

	select {
	case res := <-ch:
		return s.settle(epoch, text, res.reply, res.err)
	case <-ctx.Done():
		serr := s.settle(epoch, text, "", ctx.Err())
		// Drain the sender's eventual result. Its settlement carries a stale
		// epoch and is discarded, even if it is a success.
		go func() {
			res := <-ch
			s.settle(epoch, text, res.reply, res.err)
		}()
		return serr
	}
}

// settle applies one turn outcome. Only the first settlement for an epoch
// takes effect; later ones are no-ops.
func (s *Session) settle(epoch uint64, text, reply string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return nil
	}
	s.epoch++
	s.awaiting = false

	if cause == nil && strings.TrimSpace(reply) == "" {
		cause = client.ErrMalformedReply
	}
	if cause == nil {
		s.messages = append(s.messages, Message{
			ID:        s.newID(),
			Role:      RoleAssistant,
			Content:   reply,
			CreatedAt: s.now(),
		})
		s.pending = ""
		s.lastErr = nil
		return nil
	}

	cat := Classify(cause)
	serr := &Error{Category: cat, Message: noticeText(cat), Err: cause}
	s.pending = text
	s.lastErr = serr
	s.messages = append(s.messages, Message{
		ID:        s.newID(),
		Role:      RoleAssistant,
		Content:   fallbackLine(s.persona, cat),
		CreatedAt: s.now(),
	})
	return serr
}

func fallbackLine(p *persona.Persona, cat Category) string {
	switch cat {
	case CategoryContentSafety:
		return p.Fallbacks.Safety
	case CategoryRateLimited:
		return p.Fallbacks.Busy
	default:
		return p.Fallbacks.General
	}
}

// Messages returns a copy of the transcript, oldest first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Awaiting reports whether a send is in flight.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// PendingInput returns the parked input from the last failed turn, or "".
func (s *Session) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastError returns the error of the last settled turn, or nil after a
// success.
func (s *Session) LastError() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Persona returns the persona this session speaks with.
func (s *Session) Persona() *persona.Persona {
	return s.persona
}
