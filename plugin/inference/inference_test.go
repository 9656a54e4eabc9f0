package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	resp *llms.ContentResponse
	err  error

	gotMessages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.gotMessages = messages
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("unused")
}

func TestCompletePassesRoles(t *testing.T) {
	fake := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "  Take a slow breath.  "}},
	}}
	c := &Client{model: fake, maxTokens: 256, temperature: 0.7}

	reply, err := c.Complete(context.Background(), "You are Sage.", "I feel scattered")
	require.NoError(t, err)
	assert.Equal(t, "Take a slow breath.", reply)

	require.Len(t, fake.gotMessages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.gotMessages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.gotMessages[1].Role)
}

func TestCompleteEmptyChoiceIsError(t *testing.T) {
	tests := []struct {
		name string
		resp *llms.ContentResponse
	}{
		{"no choices", &llms.ContentResponse{}},
		{"blank content", &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "   "}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{model: &fakeModel{resp: tt.resp}, maxTokens: 256, temperature: 0.7}
			_, err := c.Complete(context.Background(), "sys", "msg")
			assert.Error(t, err)
		})
	}
}

func TestCompletePropagatesBackendError(t *testing.T) {
	backendErr := errors.New("429: rate limited")
	c := &Client{model: &fakeModel{err: backendErr}, maxTokens: 256, temperature: 0.7}
	_, err := c.Complete(context.Background(), "sys", "msg")
	assert.ErrorIs(t, err, backendErr)
}

func TestCompleteContentFilterStop(t *testing.T) {
	fake := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "", StopReason: "content_filter"}},
	}}
	c := &Client{model: fake, maxTokens: 256, temperature: 0.7}
	_, err := c.Complete(context.Background(), "sys", "msg")
	assert.ErrorIs(t, err, ErrContentFiltered)
}
