package nav

import "sync"

// FocusTarget is any widget that can take keyboard focus.
type FocusTarget interface {
	Focus()
}

// FocusFunc adapts a function to FocusTarget.
type FocusFunc func()

func (f FocusFunc) Focus() { f() }

// FocusRegistry maps stable ids to live focus targets. Widgets register on
// mount and unregister on unmount, so a restore may find its target gone;
// Restore then falls back rather than failing.
type FocusRegistry struct {
	mu       sync.Mutex
	targets  map[string]FocusTarget
	fallback FocusTarget
}

// NewFocusRegistry creates an empty registry.
func NewFocusRegistry() *FocusRegistry {
	return &FocusRegistry{targets: map[string]FocusTarget{}}
}

// Register binds id to a target, replacing any previous binding.
func (r *FocusRegistry) Register(id string, t FocusTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[id] = t
}

// Unregister drops the binding for id.
func (r *FocusRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.targets, id)
}

// SetFallback sets the target used when a restore can't find its element.
func (r *FocusRegistry) SetFallback(t FocusTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = t
}

// Restore focuses the target registered under id, or the fallback when the
// target is gone. It reports whether the original target took focus. A
// restore with no target and no fallback does nothing.
func (r *FocusRegistry) Restore(id string) bool {
	r.mu.Lock()
	target, ok := r.targets[id]
	fallback := r.fallback
	r.mu.Unlock()

	if ok && target != nil {
		target.Focus()
		return true
	}
	if fallback != nil {
		fallback.Focus()
	}
	return false
}
