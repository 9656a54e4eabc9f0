package nav

import "strings"

// ModalRoute declares one overlay route: the pattern it answers to and the
// non-modal parent it renders above. Pattern segments starting with ':' bind
// path parameters, e.g. "/chat/personas/:id".
type ModalRoute struct {
	Name    string
	Pattern string
	Parent  string
}

// RouteSet is the static table of modal routes.
type RouteSet struct {
	modals []ModalRoute
}

// NewRouteSet builds a table from the given routes.
func NewRouteSet(routes ...ModalRoute) *RouteSet {
	rs := &RouteSet{}
	for _, r := range routes {
		r.Pattern = CleanPath(r.Pattern)
		r.Parent = CleanPath(r.Parent)
		rs.modals = append(rs.modals, r)
	}
	return rs
}

// Match resolves path against the table. It returns the route, the bound
// parameters, and whether anything matched.
func (rs *RouteSet) Match(path string) (ModalRoute, map[string]string, bool) {
	segs := splitPath(CleanPath(path))
	for _, r := range rs.modals {
		if params, ok := matchPattern(splitPath(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return ModalRoute{}, nil, false
}

// IsModal reports whether path addresses an overlay.
func (rs *RouteSet) IsModal(path string) bool {
	_, _, ok := rs.Match(path)
	return ok
}

func splitPath(path string) []string {
	if path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, false
			}
			params[strings.TrimPrefix(p, ":")] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}
