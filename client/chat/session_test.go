package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/useattune/attune/client"
	"github.com/useattune/attune/plugin/persona"
)

type senderFunc func(ctx context.Context, personaID, message string) (string, error)

func (f senderFunc) SendMessage(ctx context.Context, personaID, message string) (string, error) {
	return f(ctx, personaID, message)
}

// recordingSender logs every dispatched call and replays a script, repeating
// the last step once the script runs out.
type recordingSender struct {
	mu       sync.Mutex
	messages []string
	personas []string
	script   []senderFunc
}

func (r *recordingSender) SendMessage(ctx context.Context, personaID, message string) (string, error) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.personas = append(r.personas, personaID)
	step := r.script[0]
	if len(r.script) > 1 {
		r.script = r.script[1:]
	}
	r.mu.Unlock()
	return step(ctx, personaID, message)
}

func (r *recordingSender) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func succeedWith(reply string) senderFunc {
	return func(context.Context, string, string) (string, error) { return reply, nil }
}

func failWith(err error) senderFunc {
	return func(context.Context, string, string) (string, error) { return "", err }
}

func testPersona() *persona.Persona {
	return &persona.Persona{
		ID:       "sage",
		Name:     "Sage",
		Greeting: "Welcome back.",
		Fallbacks: persona.FallbackSet{
			General: "I lost my train of thought. Give me another try.",
			Busy:    "We've talked a lot today. Let's pick this up tomorrow.",
			Safety:  "That's beyond what I can walk alongside you for.",
		},
	}
}

func TestSendHappyPath(t *testing.T) {
	rec := &recordingSender{script: []senderFunc{succeedWith("Take one slow breath.")}}
	s := NewSession(rec, testPersona())

	require.NoError(t, s.Send(context.Background(), "I feel scattered today"))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Welcome back.", msgs[0].Content)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "I feel scattered today", msgs[1].Content)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Equal(t, "Take one slow breath.", msgs[2].Content)

	assert.Empty(t, s.PendingInput())
	assert.Nil(t, s.LastError())
	assert.False(t, s.Awaiting())
	assert.Equal(t, []string{"sage"}, rec.personas)
}

func TestSendFailureCategories(t *testing.T) {
	tests := []struct {
		name         string
		cause        error
		wantCategory Category
		wantFallback func(p *persona.Persona) string
	}{
		{
			name:         "network",
			cause:        errors.New("dial tcp 127.0.0.1:8642: connect: connection refused"),
			wantCategory: CategoryNetworkError,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "invalid request",
			cause:        &client.APIError{Status: 400, Message: "message too long"},
			wantCategory: CategoryInvalidRequest,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "misconfigured 401",
			cause:        &client.APIError{Status: 401, Message: "unauthorized"},
			wantCategory: CategoryServiceMisconfigured,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "misconfigured 403",
			cause:        &client.APIError{Status: 403, Message: "forbidden"},
			wantCategory: CategoryServiceMisconfigured,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "rate limited",
			cause:        &client.APIError{Status: 429, Message: "allowance spent"},
			wantCategory: CategoryRateLimited,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.Busy },
		},
		{
			name:         "server error",
			cause:        &client.APIError{Status: 500, Message: "internal"},
			wantCategory: CategoryServerError,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "unknown status",
			cause:        &client.APIError{Status: 418, Message: "teapot"},
			wantCategory: CategoryServerError,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "malformed reply",
			cause:        client.ErrMalformedReply,
			wantCategory: CategoryMalformedResponse,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.General },
		},
		{
			name:         "content safety",
			cause:        &client.APIError{Status: 400, Code: "content_safety", Message: "declined"},
			wantCategory: CategoryContentSafety,
			wantFallback: func(p *persona.Persona) string { return p.Fallbacks.Safety },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPersona()
			s := NewSession(failWith(tt.cause), p)

			err := s.Send(context.Background(), "hello?")
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.wantCategory, serr.Category)

			msgs := s.Messages()
			require.Len(t, msgs, 3)
			assert.Equal(t, RoleUser, msgs[1].Role)
			assert.Equal(t, "hello?", msgs[1].Content)
			assert.Equal(t, RoleAssistant, msgs[2].Role)
			assert.Equal(t, tt.wantFallback(p), msgs[2].Content)

			assert.Equal(t, "hello?", s.PendingInput())
			require.NotNil(t, s.LastError())
			assert.Equal(t, tt.wantCategory, s.LastError().Category)
			assert.False(t, s.Awaiting())
		})
	}
}

func TestEmptySuccessIsMalformed(t *testing.T) {
	s := NewSession(succeedWith("   \n"), testPersona())

	err := s.Send(context.Background(), "hi")
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CategoryMalformedResponse, serr.Category)
	assert.Equal(t, "hi", s.PendingInput())
}

func TestTimeoutDiscardsLateSuccess(t *testing.T) {
	returned := make(chan struct{})
	slow := senderFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		// Return a success well after the deadline arm has settled the turn.
		time.Sleep(30 * time.Millisecond)
		defer close(returned)
		return "a late but perfectly fine reply", nil
	})
	p := testPersona()
	s := NewSession(slow, p, WithTimeout(25*time.Millisecond))

	err := s.Send(context.Background(), "still there?")
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CategoryTimeout, serr.Category)

	// Let the late result arrive and be discarded.
	<-returned
	time.Sleep(50 * time.Millisecond)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, p.Fallbacks.General, msgs[2].Content)
	for _, m := range msgs {
		assert.NotEqual(t, "a late but perfectly fine reply", m.Content)
	}
	assert.Equal(t, "still there?", s.PendingInput())
	require.NotNil(t, s.LastError())
	assert.Equal(t, CategoryTimeout, s.LastError().Category)
	assert.False(t, s.Awaiting())
}

func TestSendWhileAwaitingIsRejected(t *testing.T) {
	release := make(chan struct{})
	rec := &recordingSender{script: []senderFunc{
		func(ctx context.Context, _, _ string) (string, error) {
			<-release
			return "done", nil
		},
	}}
	s := NewSession(rec, testPersona())

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Send(context.Background(), "first") }()

	require.Eventually(t, s.Awaiting, time.Second, time.Millisecond)
	assert.ErrorIs(t, s.Send(context.Background(), "second"), ErrBusy)
	assert.ErrorIs(t, s.Retry(context.Background()), ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)

	assert.Equal(t, []string{"first"}, rec.sent())
	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[1].Content)
}

func TestRetryResendsExactInput(t *testing.T) {
	rec := &recordingSender{script: []senderFunc{
		failWith(errors.New("connection reset by peer")),
		succeedWith("Hi there!"),
	}}
	s := NewSession(rec, testPersona())

	input := "Hello again,\tit's me  (still at the café)"
	require.Error(t, s.Send(context.Background(), input))
	require.Equal(t, input, s.PendingInput())

	require.NoError(t, s.Retry(context.Background()))

	require.Equal(t, []string{input, input}, rec.sent())
	assert.Empty(t, s.PendingInput())
	assert.Nil(t, s.LastError())

	msgs := s.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "Hi there!", msgs[4].Content)
}

func TestRetryWithNothingPending(t *testing.T) {
	s := NewSession(succeedWith("ok"), testPersona())
	assert.ErrorIs(t, s.Retry(context.Background()), ErrNothingToRetry)
}

func TestInputValidation(t *testing.T) {
	t.Run("whitespace only is a no-op", func(t *testing.T) {
		rec := &recordingSender{script: []senderFunc{succeedWith("ok")}}
		s := NewSession(rec, testPersona())

		assert.ErrorIs(t, s.Send(context.Background(), "   \n\t "), ErrEmptyInput)
		assert.Empty(t, rec.sent())
		assert.Len(t, s.Messages(), 1)
		assert.Nil(t, s.LastError())
	})

	t.Run("limit is inclusive", func(t *testing.T) {
		rec := &recordingSender{script: []senderFunc{succeedWith("ok")}}
		s := NewSession(rec, testPersona())

		require.NoError(t, s.Send(context.Background(), strings.Repeat("a", MaxMessageRunes)))
		require.Len(t, rec.sent(), 1)
	})

	t.Run("over limit is rejected locally", func(t *testing.T) {
		rec := &recordingSender{script: []senderFunc{succeedWith("ok")}}
		s := NewSession(rec, testPersona())

		err := s.Send(context.Background(), strings.Repeat("a", MaxMessageRunes+1))
		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, CategoryInvalidRequest, serr.Category)
		assert.ErrorIs(t, err, ErrInputTooLong)

		assert.Empty(t, rec.sent())
		assert.Len(t, s.Messages(), 1)
		assert.Empty(t, s.PendingInput())
	})

	t.Run("limit counts runes not bytes", func(t *testing.T) {
		rec := &recordingSender{script: []senderFunc{succeedWith("ok")}}
		s := NewSession(rec, testPersona())

		require.NoError(t, s.Send(context.Background(), strings.Repeat("é", MaxMessageRunes)))
		require.Len(t, rec.sent(), 1)
	})
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, CategoryNetworkError, Classify(context.Canceled))
	assert.Equal(t, CategoryNetworkError, Classify(errors.New("EOF")))
	assert.Equal(t, CategoryContentSafety, Classify(&client.APIError{Status: 400, Code: "content_safety"}))
	assert.Equal(t, CategoryInvalidRequest, Classify(&client.APIError{Status: 400}))
	assert.Equal(t, CategoryServerError, Classify(&client.APIError{Status: 502}))
}
