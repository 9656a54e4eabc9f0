package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryPushTruncatesForwardTail(t *testing.T) {
	h := NewHistory(Location{Path: "/today"})
	h.Push(Location{Path: "/chat"}, State{})
	h.Push(Location{Path: "/insights"}, State{})
	require.Equal(t, 3, h.Len())

	require.True(t, h.Back())
	require.True(t, h.Back())
	assert.Equal(t, "/today", h.Current().Location.Path)

	h.Push(Location{Path: "/settings"}, State{})
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "/settings", h.Current().Location.Path)
	assert.False(t, h.Forward())
}

func TestHistoryReplaceKeepsLength(t *testing.T) {
	h := NewHistory(Location{Path: "/chat/personas/sage"})
	h.Replace(Location{Path: "/chat"}, State{})
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "/chat", h.Current().Location.Path)
	assert.False(t, h.CanBack())
}

func TestHistoryBounds(t *testing.T) {
	h := NewHistory(Location{Path: "/today"})
	assert.False(t, h.Back())
	assert.False(t, h.Forward())

	h.Push(Location{Path: "/chat"}, State{})
	require.True(t, h.Back())
	require.True(t, h.Forward())
	assert.Equal(t, "/chat", h.Current().Location.Path)
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"today", "/today"},
		{"/today/", "/today"},
		{"  /chat ", "/chat"},
		{"/chat/personas/sage/", "/chat/personas/sage"},
		{"//", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanPath(tt.in), "CleanPath(%q)", tt.in)
	}
}
