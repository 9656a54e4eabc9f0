// Package nav implements overlay navigation for the terminal client. An
// explicit history stack stands in for the browser's; modal routes render
// above a preserved background location while staying addressable, deep
// links synthesize the background they arrive without, and keyboard focus
// returns to the widget that opened the overlay once it closes.
package nav

import "errors"

var (
	// ErrModalAlreadyOpen is returned when an open or in-transition modal
	// blocks the requested navigation.
	ErrModalAlreadyOpen = errors.New("nav: a modal is already open")
	// ErrNoModalOpen is returned by CloseModal when nothing is open.
	ErrNoModalOpen = errors.New("nav: no modal is open")
	// ErrNotModalRoute is returned when a path doesn't address an overlay.
	ErrNotModalRoute = errors.New("nav: path is not a modal route")
)

// Phase is the overlay lifecycle position.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpening
	PhaseOpen
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Navigator drives the overlay state machine over a History. It is meant to
// be driven from a single goroutine, the UI loop.
//
// Transitions run in two steps: OpenModal and CloseModal move into Opening
// and Closing, and the UI acknowledges the rendered result with
// FinishTransition to land in Open or Closed. A modal entry always carries
// its background location; ResolveDeepLink manufactures one for cold loads
// before the overlay may open.
type Navigator struct {
	history *History
	routes  *RouteSet
	focus   *FocusRegistry

	phase   Phase
	trigger string
	restore string
}

// New builds a Navigator at the initial location. When that location is
// itself a modal path, the deep link is resolved immediately: the modal's
// parent replaces the cold entry and the overlay begins opening above it.
func New(initial Location, routes *RouteSet, focus *FocusRegistry) *Navigator {
	n := &Navigator{
		history: NewHistory(initial),
		routes:  routes,
		focus:   focus,
	}
	if route, _, ok := routes.Match(initial.Path); ok {
		n.resolve(route, CleanPath(initial.Path))
	}
	return n
}

// Phase returns the overlay lifecycle position.
func (n *Navigator) Phase() Phase { return n.phase }

// History exposes the underlying stack, mainly for back-affordance checks.
func (n *Navigator) History() *History { return n.history }

// Location returns the current foreground location.
func (n *Navigator) Location() Location {
	return n.history.Current().Location
}

// Background returns the location rendered beneath the overlay, or nil when
// the current entry has none.
func (n *Navigator) Background() *Location {
	return n.history.Current().State.Background
}

// ModalContent returns the route and bound parameters of the overlay the
// current entry addresses. ok is false when no overlay is up.
func (n *Navigator) ModalContent() (ModalRoute, map[string]string, bool) {
	if n.phase != PhaseOpening && n.phase != PhaseOpen {
		return ModalRoute{}, nil, false
	}
	return n.routes.Match(n.Location().Path)
}

// NavigateTo pushes a plain page navigation. A path that addresses an
// overlay is forwarded to OpenModal with no trigger.
func (n *Navigator) NavigateTo(path string) error {
	if n.phase != PhaseClosed {
		return ErrModalAlreadyOpen
	}
	if n.routes.IsModal(path) {
		return n.OpenModal(path, "")
	}
	n.history.Push(Location{Path: path}, State{})
	return nil
}

// OpenModal pushes the overlay at path above the current location, recording
// that location as the background and triggerID as where focus returns on
// close. An unknown entity inside a known pattern is not an error here; the
// overlay opens and renders a not-found payload.
func (n *Navigator) OpenModal(path, triggerID string) error {
	if n.phase != PhaseClosed {
		return ErrModalAlreadyOpen
	}
	if !n.routes.IsModal(path) {
		return ErrNotModalRoute
	}
	background := n.Location()
	n.history.Push(Location{Path: path}, State{Background: &background})
	n.trigger = triggerID
	n.phase = PhaseOpening
	return nil
}

// CloseModal starts dismissing the overlay. It is history-back under the
// hood, whichever gesture asked for it, so explicit close and back leave the
// same stack behind.
func (n *Navigator) CloseModal() error {
	if n.phase != PhaseOpen && n.phase != PhaseOpening {
		return ErrNoModalOpen
	}
	n.history.Back()
	n.restore = n.trigger
	n.trigger = ""
	n.phase = PhaseClosing
	return nil
}

// ResolveDeepLink turns a cold modal path into the state an in-app open
// would have produced: the parent route replaces the current entry, then the
// overlay opens above it with the parent as background. The replace commits
// before the overlay push, never concurrently with it.
func (n *Navigator) ResolveDeepLink(path string) error {
	if n.phase != PhaseClosed {
		return ErrModalAlreadyOpen
	}
	route, _, ok := n.routes.Match(path)
	if !ok {
		return ErrNotModalRoute
	}
	n.resolve(route, CleanPath(path))
	return nil
}

func (n *Navigator) resolve(route ModalRoute, path string) {
	parent := Location{Path: route.Parent}
	n.history.Replace(parent, State{})
	n.history.Push(Location{Path: path}, State{Background: &parent})
	n.trigger = ""
	n.phase = PhaseOpening
}

// Back is the user's back gesture. With an overlay up it closes the overlay;
// otherwise it pops history. It reports whether anything moved.
func (n *Navigator) Back() bool {
	switch n.phase {
	case PhaseOpen, PhaseOpening:
		return n.CloseModal() == nil
	case PhaseClosing:
		return false
	default:
		return n.history.Back()
	}
}

// FinishTransition is the UI's acknowledgement that the pending transition
// has rendered. Opening becomes Open; Closing becomes Closed and focus
// returns to the trigger, or to the fallback when the trigger is gone. It
// returns the settled phase and is a no-op outside transitions.
func (n *Navigator) FinishTransition() Phase {
	switch n.phase {
	case PhaseOpening:
		n.phase = PhaseOpen
	case PhaseClosing:
		n.phase = PhaseClosed
		if n.focus != nil {
			n.focus.Restore(n.restore)
		}
		n.restore = ""
	}
	return n.phase
}
