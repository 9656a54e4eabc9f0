package persona

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	all := r.All()
	require.NotEmpty(t, all)

	for _, p := range all {
		require.NotEmpty(t, p.ID)
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.Greeting)
		require.NotEmpty(t, p.SystemPrompt)
		// Every persona must be able to answer on every failure path.
		require.NotEmpty(t, p.Fallbacks.General, "persona %s missing general fallback", p.ID)
		require.NotEmpty(t, p.Fallbacks.Busy, "persona %s missing busy fallback", p.ID)
		require.NotEmpty(t, p.Fallbacks.Safety, "persona %s missing safety fallback", p.ID)
	}

	require.NotNil(t, r.Get("sage"))
	require.Nil(t, r.Get("nobody"))
}

func TestRegistryOrderAndOverride(t *testing.T) {
	r := NewRegistry(
		&Persona{ID: "b", Name: "first"},
		&Persona{ID: "a", Name: "second"},
		&Persona{ID: "b", Name: "override"},
	)

	all := r.All()
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].ID)
	require.Equal(t, "b", all[1].ID)
	require.Equal(t, "override", r.Get("b").Name)
}
