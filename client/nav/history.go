package nav

import "strings"

// Location is one addressable place in the client.
type Location struct {
	Path string
}

// State is the opaque payload attached to a history entry. Background is the
// location to keep rendered beneath an overlay; a modal entry without one is
// the deep-link signal.
type State struct {
	Background *Location
}

// Entry is one history record.
type Entry struct {
	Location Location
	State    State
}

// History is an explicit navigation stack with a cursor, mimicking browser
// history semantics: Push drops the forward tail, Back and Forward move the
// cursor without changing the entries.
type History struct {
	entries []Entry
	cursor  int
}

// NewHistory starts a stack at the given location.
func NewHistory(initial Location) *History {
	initial.Path = CleanPath(initial.Path)
	return &History{entries: []Entry{{Location: initial}}}
}

// Current returns the entry under the cursor.
func (h *History) Current() Entry {
	return h.entries[h.cursor]
}

// Push appends a new entry after the cursor, discarding any forward tail.
func (h *History) Push(loc Location, st State) {
	loc.Path = CleanPath(loc.Path)
	h.entries = append(h.entries[:h.cursor+1], Entry{Location: loc, State: st})
	h.cursor = len(h.entries) - 1
}

// Replace swaps the entry under the cursor without growing the stack.
func (h *History) Replace(loc Location, st State) {
	loc.Path = CleanPath(loc.Path)
	h.entries[h.cursor] = Entry{Location: loc, State: st}
}

// Back moves the cursor one entry back. It reports false at the bottom.
func (h *History) Back() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

// Forward moves the cursor one entry forward. It reports false at the top.
func (h *History) Forward() bool {
	if h.cursor >= len(h.entries)-1 {
		return false
	}
	h.cursor++
	return true
}

// CanBack reports whether Back would move.
func (h *History) CanBack() bool {
	return h.cursor > 0
}

// Len returns the number of entries, forward tail included.
func (h *History) Len() int {
	return len(h.entries)
}

// CleanPath normalizes a path to the "/a/b/c" shape the router matches on.
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}
