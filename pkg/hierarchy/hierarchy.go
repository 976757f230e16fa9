package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCompany is returned by [Build] when the tree has no company id.
	ErrMissingCompany = errors.New("company id must not be empty")

	// ErrInvalidID is returned by [Build] when a client or project has an
	// empty id.
	ErrInvalidID = errors.New("id must not be empty")

	// ErrDuplicateID is returned by [Build] when two entities share an id.
	// Ids are unique across the company, clients and projects because they
	// become node ids in the layout.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnknownClient is returned by [Build] when a project references a
	// client that is not part of the tree.
	ErrUnknownClient = errors.New("project references unknown client")
)

// Terminal project statuses. Projects in one of these are hidden by the
// ActiveOnly filter.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusArchived  = "archived"
)

// IsTerminal reports whether status is one of the terminal statuses.
// Comparison is case-insensitive.
func IsTerminal(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusCompleted, StatusCancelled, StatusArchived:
		return true
	}
	return false
}

// Company is the root of the hierarchy.
type Company struct {
	ID   string `json:"id" toml:"id"`
	Name string `json:"name,omitempty" toml:"name"`
}

// Client is a direct child of the company.
type Client struct {
	ID      string `json:"id" toml:"id"`
	Name    string `json:"name" toml:"name"`
	Status  string `json:"status,omitempty" toml:"status"`
	OwnerID string `json:"owner_id,omitempty" toml:"owner_id"`
}

// Project belongs to at most one client. StageCount, TodoCount and OwnerName
// are joined in by the data-fetch collaborator and passed through untouched.
type Project struct {
	ID         string `json:"id" toml:"id"`
	Name       string `json:"name" toml:"name"`
	ClientID   string `json:"client_id,omitempty" toml:"client_id"`
	Status     string `json:"status,omitempty" toml:"status"`
	OwnerID    string `json:"owner_id,omitempty" toml:"owner_id"`
	OwnerName  string `json:"owner_name,omitempty" toml:"owner_name"`
	StageCount int    `json:"stage_count,omitempty" toml:"stage_count"`
	TodoCount  int    `json:"todo_count,omitempty" toml:"todo_count"`
}

// IsOrphan reports whether the project has no parent client.
func (p Project) IsOrphan() bool { return p.ClientID == "" }

// Tree is the flat snapshot delivered by the data-fetch collaborator.
type Tree struct {
	Company  Company   `json:"company" toml:"company"`
	Clients  []Client  `json:"clients" toml:"clients"`
	Projects []Project `json:"projects" toml:"projects"`
}

// Branch is a client together with its projects, in input order.
type Branch struct {
	Client   Client    `json:"client"`
	Projects []Project `json:"projects"`
}

// Hierarchy is a validated, grouped tree.
type Hierarchy struct {
	Company  Company   `json:"company"`
	Branches []Branch  `json:"branches"`
	Orphans  []Project `json:"orphans,omitempty"`
}

// Build validates t and groups projects under their clients.
// Client order and per-client project order follow the input.
func Build(t Tree) (*Hierarchy, error) {
	if t.Company.ID == "" {
		return nil, ErrMissingCompany
	}

	seen := map[string]bool{t.Company.ID: true}
	index := make(map[string]int, len(t.Clients))
	h := &Hierarchy{
		Company:  t.Company,
		Branches: make([]Branch, 0, len(t.Clients)),
	}

	for _, c := range t.Clients {
		if c.ID == "" {
			return nil, fmt.Errorf("client %q: %w", c.Name, ErrInvalidID)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("client %s: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = true
		index[c.ID] = len(h.Branches)
		h.Branches = append(h.Branches, Branch{Client: c})
	}

	for _, p := range t.Projects {
		if p.ID == "" {
			return nil, fmt.Errorf("project %q: %w", p.Name, ErrInvalidID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("project %s: %w", p.ID, ErrDuplicateID)
		}
		seen[p.ID] = true

		if p.IsOrphan() {
			h.Orphans = append(h.Orphans, p)
			continue
		}
		i, ok := index[p.ClientID]
		if !ok {
			return nil, fmt.Errorf("project %s -> %s: %w", p.ID, p.ClientID, ErrUnknownClient)
		}
		h.Branches[i].Projects = append(h.Branches[i].Projects, p)
	}

	return h, nil
}

// Clone returns a deep copy of h.
func (h *Hierarchy) Clone() *Hierarchy {
	out := &Hierarchy{
		Company:  h.Company,
		Branches: make([]Branch, len(h.Branches)),
		Orphans:  append([]Project(nil), h.Orphans...),
	}
	for i, b := range h.Branches {
		out.Branches[i] = Branch{Client: b.Client, Projects: append([]Project(nil), b.Projects...)}
	}
	return out
}

// ClientCount returns the number of clients.
func (h *Hierarchy) ClientCount() int { return len(h.Branches) }

// ProjectCount returns the number of non-orphan projects.
func (h *Hierarchy) ProjectCount() int {
	n := 0
	for _, b := range h.Branches {
		n += len(b.Projects)
	}
	return n
}

// Branch returns the branch for clientID.
func (h *Hierarchy) Branch(clientID string) (Branch, bool) {
	for _, b := range h.Branches {
		if b.Client.ID == clientID {
			return b, true
		}
	}
	return Branch{}, false
}

// Tree flattens h back into a snapshot. Build(h.Tree()) reproduces h.
func (h *Hierarchy) Tree() Tree {
	t := Tree{Company: h.Company}
	for _, b := range h.Branches {
		t.Clients = append(t.Clients, b.Client)
		t.Projects = append(t.Projects, b.Projects...)
	}
	t.Projects = append(t.Projects, h.Orphans...)
	return t
}
