package hierarchy

import "strings"

// FilterSpec selects which parts of a hierarchy are laid out. The zero value
// keeps everything.
type FilterSpec struct {
	// Search is a case-insensitive substring matched against client names
	// and project names. A client survives when it matches directly or has at
	// least one matching project; a surviving client keeps its whole subtree.
	Search string `json:"search,omitempty"`

	// Status keeps only projects whose status equals this value
	// (case-insensitive).
	Status string `json:"status,omitempty"`

	// Owner keeps only projects owned by this user id.
	Owner string `json:"owner,omitempty"`

	// ActiveOnly drops projects in a terminal status.
	ActiveOnly bool `json:"active_only,omitempty"`
}

// IsZero reports whether the spec filters nothing.
func (s FilterSpec) IsZero() bool {
	return strings.TrimSpace(s.Search) == "" && s.Status == "" && s.Owner == "" && !s.ActiveOnly
}

// prunesProjects reports whether any project-level predicate is active.
func (s FilterSpec) prunesProjects() bool {
	return s.Status != "" || s.Owner != "" || s.ActiveOnly
}

// keepProject applies the project-level predicates.
func (s FilterSpec) keepProject(p Project) bool {
	if s.Status != "" && !strings.EqualFold(strings.TrimSpace(p.Status), strings.TrimSpace(s.Status)) {
		return false
	}
	if s.Owner != "" && p.OwnerID != s.Owner {
		return false
	}
	if s.ActiveOnly && IsTerminal(p.Status) {
		return false
	}
	return true
}

// matchesSearch reports whether a branch survives the search predicate,
// judged on the unfiltered branch.
func matchesSearch(b Branch, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.Client.Name), term) {
		return true
	}
	for _, p := range b.Projects {
		if strings.Contains(strings.ToLower(p.Name), term) {
			return true
		}
	}
	return false
}

// Filter returns a new hierarchy holding only what spec selects. h is not
// modified.
//
// All predicates are judged against h itself, so the result is the same
// whatever order they are thought of as being applied in. When a
// project-level predicate (Status, Owner, ActiveOnly) is active, clients left
// with no projects are dropped; otherwise a client that matches Search is kept
// even if it has no projects at all.
func Filter(h *Hierarchy, spec FilterSpec) *Hierarchy {
	if spec.IsZero() {
		return h.Clone()
	}

	term := strings.ToLower(strings.TrimSpace(spec.Search))
	out := &Hierarchy{Company: h.Company, Branches: make([]Branch, 0, len(h.Branches))}

	for _, b := range h.Branches {
		if !matchesSearch(b, term) {
			continue
		}
		kept := make([]Project, 0, len(b.Projects))
		for _, p := range b.Projects {
			if spec.keepProject(p) {
				kept = append(kept, p)
			}
		}
		if spec.prunesProjects() && len(kept) == 0 {
			continue
		}
		out.Branches = append(out.Branches, Branch{Client: b.Client, Projects: kept})
	}

	for _, p := range h.Orphans {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		if spec.keepProject(p) {
			out.Orphans = append(out.Orphans, p)
		}
	}

	return out
}

// Apply builds t and filters the result. It is the entry point the layout
// pipeline uses: malformed input is rejected here, before any geometry is
// computed.
func Apply(t Tree, spec FilterSpec) (*Hierarchy, error) {
	h, err := Build(t)
	if err != nil {
		return nil, err
	}
	return Filter(h, spec), nil
}
