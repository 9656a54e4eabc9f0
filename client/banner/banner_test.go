package banner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func newTestCenter() (*Center, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return NewCenter(WithNowFunc(clk.Now)), clk
}

func TestTransientNoticeExpires(t *testing.T) {
	c, clk := newTestCenter()
	c.Success("Check-in saved")

	require.NotNil(t, c.Current())

	clk.advance(DefaultTTL - time.Millisecond)
	got := c.Current()
	require.NotNil(t, got)
	assert.Equal(t, KindSuccess, got.Kind)
	assert.Equal(t, "Check-in saved", got.Text)

	clk.advance(time.Millisecond)
	assert.Nil(t, c.Current())
}

func TestRetryableNoticePersists(t *testing.T) {
	c, clk := newTestCenter()
	c.RetryableError("Couldn't reach the server. Check your connection and retry.")

	clk.advance(time.Hour)
	got := c.Current()
	require.NotNil(t, got)
	assert.True(t, got.Retryable)

	c.Dismiss()
	assert.Nil(t, c.Current())
}

func TestNewNoticeSupersedes(t *testing.T) {
	c, clk := newTestCenter()
	c.RetryableError("first failure")
	c.Info("something else happened")

	got := c.Current()
	require.NotNil(t, got)
	assert.Equal(t, "something else happened", got.Text)
	assert.False(t, got.Retryable)

	// The replacement is transient and expires on its own schedule.
	clk.advance(DefaultTTL)
	assert.Nil(t, c.Current())
}

func TestExpiredNoticeStaysGone(t *testing.T) {
	c, clk := newTestCenter()
	c.Error("oops")
	clk.advance(DefaultTTL + time.Second)
	assert.Nil(t, c.Current())
	assert.Nil(t, c.Current())
}
