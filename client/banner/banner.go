// Package banner tracks the single notice strip shown above the screen
// content. One notice is visible at a time; a new one supersedes the old.
// Plain notices expire on their own, notices that offer a retry stay until
// the user dismisses them or another notice replaces them.
package banner

import (
	"sync"
	"time"
)

// DefaultTTL is how long a non-retryable notice stays visible.
const DefaultTTL = 8 * time.Second

// Kind selects the notice styling.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is one banner entry.
type Notice struct {
	Kind Kind
	Text string
	// Retryable notices persist until dismissed or superseded, and the UI
	// renders a retry hint next to them.
	Retryable bool
	ShownAt   time.Time
}

// Center holds the current notice. Expiry is evaluated lazily on read, so it
// needs no timer of its own; pull-based UIs read Current on every frame.
type Center struct {
	mu      sync.Mutex
	now     func() time.Time
	ttl     time.Duration
	current *Notice
}

// Option customizes a Center.
type Option func(*Center)

// WithTTL overrides the notice lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) { c.ttl = ttl }
}

// WithNowFunc overrides the clock.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// NewCenter creates an empty Center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		now: time.Now,
		ttl: DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post shows n, replacing whatever was visible.
func (c *Center) Post(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n.ShownAt = c.now()
	c.current = &n
}

// Info shows a transient informational notice.
func (c *Center) Info(text string) { c.Post(Notice{Kind: KindInfo, Text: text}) }

// Success shows a transient success notice.
func (c *Center) Success(text string) { c.Post(Notice{Kind: KindSuccess, Text: text}) }

// Error shows a transient error notice.
func (c *Center) Error(text string) { c.Post(Notice{Kind: KindError, Text: text}) }

// RetryableError shows an error notice that persists until dismissed or
// superseded.
func (c *Center) RetryableError(text string) {
	c.Post(Notice{Kind: KindError, Text: text, Retryable: true})
}

// Current returns the visible notice, or nil. A non-retryable notice whose
// lifetime has elapsed is cleared here.
func (c *Center) Current() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	if !c.current.Retryable && c.now().Sub(c.current.ShownAt) >= c.ttl {
		c.current = nil
		return nil
	}
	n := *c.current
	return &n
}

// Dismiss clears the visible notice.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}
