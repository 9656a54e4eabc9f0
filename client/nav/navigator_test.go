package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	focused int
}

func (r *recordingTarget) Focus() { r.focused++ }

func TestOpenAndCloseModal(t *testing.T) {
	n := New(Location{Path: "/chat"}, testRoutes(), NewFocusRegistry())
	require.Equal(t, PhaseClosed, n.Phase())

	require.NoError(t, n.OpenModal("/chat/personas/sage", "persona-card-sage"))
	assert.Equal(t, PhaseOpening, n.Phase())

	require.NotNil(t, n.Background())
	assert.Equal(t, "/chat", n.Background().Path)
	assert.Equal(t, "/chat/personas/sage", n.Location().Path)

	assert.Equal(t, PhaseOpen, n.FinishTransition())
	route, params, ok := n.ModalContent()
	require.True(t, ok)
	assert.Equal(t, "persona", route.Name)
	assert.Equal(t, "sage", params["id"])

	require.NoError(t, n.CloseModal())
	assert.Equal(t, PhaseClosing, n.Phase())
	assert.Equal(t, "/chat", n.Location().Path)

	assert.Equal(t, PhaseClosed, n.FinishTransition())
	_, _, ok = n.ModalContent()
	assert.False(t, ok)
}

func TestDeepLinkSynthesizesParent(t *testing.T) {
	n := New(Location{Path: "/chat/personas/ember"}, testRoutes(), NewFocusRegistry())

	// The cold entry was replaced by the parent, then the overlay pushed.
	assert.Equal(t, PhaseOpening, n.Phase())
	assert.Equal(t, 2, n.History().Len())
	assert.Equal(t, "/chat/personas/ember", n.Location().Path)
	require.NotNil(t, n.Background())
	assert.Equal(t, "/chat", n.Background().Path)

	n.FinishTransition()

	// Going back once lands on the synthesized parent, never on a blank
	// pre-app state.
	require.True(t, n.Back())
	n.FinishTransition()
	assert.Equal(t, PhaseClosed, n.Phase())
	assert.Equal(t, "/chat", n.Location().Path)
	assert.False(t, n.History().CanBack())
}

func TestResolveDeepLinkExplicit(t *testing.T) {
	n := New(Location{Path: "/today"}, testRoutes(), NewFocusRegistry())
	assert.ErrorIs(t, n.ResolveDeepLink("/settings"), ErrNotModalRoute)

	require.NoError(t, n.ResolveDeepLink("/today/routines/r_1"))
	assert.Equal(t, PhaseOpening, n.Phase())
	require.NotNil(t, n.Background())
	assert.Equal(t, "/today", n.Background().Path)
}

func TestFocusReturnsToTrigger(t *testing.T) {
	focus := NewFocusRegistry()
	trigger := &recordingTarget{}
	fallback := &recordingTarget{}
	focus.Register("routine-row-3", trigger)
	focus.SetFallback(fallback)

	n := New(Location{Path: "/today"}, testRoutes(), focus)
	require.NoError(t, n.OpenModal("/today/routines/r_3", "routine-row-3"))
	n.FinishTransition()

	require.NoError(t, n.CloseModal())
	n.FinishTransition()

	assert.Equal(t, 1, trigger.focused)
	assert.Equal(t, 0, fallback.focused)
}

func TestFocusFallsBackWhenTriggerGone(t *testing.T) {
	focus := NewFocusRegistry()
	trigger := &recordingTarget{}
	fallback := &recordingTarget{}
	focus.Register("routine-row-3", trigger)
	focus.SetFallback(fallback)

	n := New(Location{Path: "/today"}, testRoutes(), focus)
	require.NoError(t, n.OpenModal("/today/routines/r_3", "routine-row-3"))
	n.FinishTransition()

	// The list re-rendered and the row went away before the close.
	focus.Unregister("routine-row-3")

	require.NoError(t, n.CloseModal())
	n.FinishTransition()

	assert.Equal(t, 0, trigger.focused)
	assert.Equal(t, 1, fallback.focused)
}

func TestFocusRestoreWithNothingRegistered(t *testing.T) {
	focus := NewFocusRegistry()
	assert.False(t, focus.Restore("gone"))

	n := New(Location{Path: "/today"}, testRoutes(), focus)
	require.NoError(t, n.OpenModal("/today/routines/r_3", "gone"))
	n.FinishTransition()
	require.NoError(t, n.CloseModal())
	assert.Equal(t, PhaseClosed, n.FinishTransition())
}

func TestCloseGesturesLeaveSameHistory(t *testing.T) {
	open := func() *Navigator {
		n := New(Location{Path: "/chat"}, testRoutes(), NewFocusRegistry())
		require.NoError(t, n.OpenModal("/chat/personas/sage", ""))
		n.FinishTransition()
		return n
	}

	viaClose := open()
	require.NoError(t, viaClose.CloseModal())
	viaClose.FinishTransition()

	viaBack := open()
	require.True(t, viaBack.Back())
	viaBack.FinishTransition()

	assert.Equal(t, viaClose.History().Len(), viaBack.History().Len())
	assert.Equal(t, viaClose.Location(), viaBack.Location())
	assert.Equal(t, viaClose.Phase(), viaBack.Phase())
}

func TestModalGuards(t *testing.T) {
	n := New(Location{Path: "/chat"}, testRoutes(), NewFocusRegistry())

	assert.ErrorIs(t, n.CloseModal(), ErrNoModalOpen)
	assert.ErrorIs(t, n.OpenModal("/chat", ""), ErrNotModalRoute)

	require.NoError(t, n.OpenModal("/chat/personas/sage", ""))
	assert.ErrorIs(t, n.OpenModal("/chat/personas/ember", ""), ErrModalAlreadyOpen)
	assert.ErrorIs(t, n.NavigateTo("/today"), ErrModalAlreadyOpen)
	assert.ErrorIs(t, n.ResolveDeepLink("/chat/personas/ember"), ErrModalAlreadyOpen)
}

func TestUnknownEntityStillOpens(t *testing.T) {
	n := New(Location{Path: "/chat"}, testRoutes(), NewFocusRegistry())
	require.NoError(t, n.OpenModal("/chat/personas/ghost", ""))
	n.FinishTransition()

	route, params, ok := n.ModalContent()
	require.True(t, ok)
	assert.Equal(t, "persona", route.Name)
	// Whether "ghost" exists is the content layer's question; the overlay is
	// legitimately open either way.
	assert.Equal(t, "ghost", params["id"])
}

func TestNavigateTo(t *testing.T) {
	n := New(Location{Path: "/today"}, testRoutes(), NewFocusRegistry())
	require.NoError(t, n.NavigateTo("/chat"))
	assert.Equal(t, "/chat", n.Location().Path)
	assert.Equal(t, 2, n.History().Len())

	// A modal path through plain navigation still opens the overlay with the
	// background captured.
	require.NoError(t, n.NavigateTo("/chat/personas/sage"))
	assert.Equal(t, PhaseOpening, n.Phase())
	require.NotNil(t, n.Background())
	assert.Equal(t, "/chat", n.Background().Path)
}

func TestBackOnPlainHistory(t *testing.T) {
	n := New(Location{Path: "/today"}, testRoutes(), NewFocusRegistry())
	require.NoError(t, n.NavigateTo("/chat"))
	require.True(t, n.Back())
	assert.Equal(t, "/today", n.Location().Path)
	assert.False(t, n.Back())
}
