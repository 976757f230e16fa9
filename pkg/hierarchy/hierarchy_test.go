package hierarchy

import (
	"errors"
	"testing"
)

func sampleTree() Tree {
	return Tree{
		Company: Company{ID: "co", Name: "Northwind"},
		Clients: []Client{
			{ID: "c1", Name: "Acme Corp"},
			{ID: "c2", Name: "Globex"},
			{ID: "c3", Name: "Initech"},
		},
		Projects: []Project{
			{ID: "p1", Name: "Website relaunch", ClientID: "c1", Status: "active", OwnerID: "u1"},
			{ID: "p2", Name: "Mobile app", ClientID: "c1", Status: "completed", OwnerID: "u2"},
			{ID: "p3", Name: "ERP rollout", ClientID: "c2", Status: "cancelled", OwnerID: "u1"},
			{ID: "p4", Name: "Internal wiki", Status: "active", OwnerID: "u1"},
		},
	}
}

func TestBuild(t *testing.T) {
	h, err := Build(sampleTree())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.ClientCount() != 3 {
		t.Errorf("ClientCount = %d, want 3", h.ClientCount())
	}
	if h.ProjectCount() != 3 {
		t.Errorf("ProjectCount = %d, want 3", h.ProjectCount())
	}
	if len(h.Orphans) != 1 || h.Orphans[0].ID != "p4" {
		t.Errorf("Orphans = %+v, want [p4]", h.Orphans)
	}

	// Order follows input
	for i, want := range []string{"c1", "c2", "c3"} {
		if h.Branches[i].Client.ID != want {
			t.Errorf("Branches[%d] = %s, want %s", i, h.Branches[i].Client.ID, want)
		}
	}
	b, ok := h.Branch("c1")
	if !ok || len(b.Projects) != 2 || b.Projects[0].ID != "p1" || b.Projects[1].ID != "p2" {
		t.Errorf("Branch(c1) = %+v", b)
	}
	if b, _ := h.Branch("c3"); len(b.Projects) != 0 {
		t.Errorf("c3 should have no projects, got %d", len(b.Projects))
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tree)
		want   error
	}{
		{
			name:   "MissingCompany",
			mutate: func(t *Tree) { t.Company.ID = "" },
			want:   ErrMissingCompany,
		},
		{
			name:   "EmptyClientID",
			mutate: func(t *Tree) { t.Clients[0].ID = "" },
			want:   ErrInvalidID,
		},
		{
			name:   "EmptyProjectID",
			mutate: func(t *Tree) { t.Projects[0].ID = "" },
			want:   ErrInvalidID,
		},
		{
			name:   "DuplicateClient",
			mutate: func(t *Tree) { t.Clients[1].ID = "c1" },
			want:   ErrDuplicateID,
		},
		{
			name:   "ProjectCollidesWithCompany",
			mutate: func(t *Tree) { t.Projects[0].ID = "co" },
			want:   ErrDuplicateID,
		},
		{
			name:   "UnknownClient",
			mutate: func(t *Tree) { t.Projects[0].ClientID = "nope" },
			want:   ErrUnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := sampleTree()
			tt.mutate(&tree)
			_, err := Build(tree)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Build error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	h, err := Build(Tree{Company: Company{ID: "co"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.ClientCount() != 0 || h.ProjectCount() != 0 {
		t.Errorf("expected empty hierarchy, got %d clients %d projects", h.ClientCount(), h.ProjectCount())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	h, _ := Build(sampleTree())
	c := h.Clone()
	c.Branches[0].Projects[0].Name = "changed"
	c.Branches = c.Branches[:1]
	if h.Branches[0].Projects[0].Name != "Website relaunch" {
		t.Error("Clone shares project storage with the original")
	}
	if h.ClientCount() != 3 {
		t.Error("Clone shares branch storage with the original")
	}
}

func TestTreeRoundTrip(t *testing.T) {
	h, _ := Build(sampleTree())
	again, err := Build(h.Tree())
	if err != nil {
		t.Fatalf("Build(h.Tree()): %v", err)
	}
	if again.ClientCount() != h.ClientCount() || again.ProjectCount() != h.ProjectCount() || len(again.Orphans) != len(h.Orphans) {
		t.Error("Tree() round trip changed the hierarchy")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []string{"completed", "Cancelled", " ARCHIVED "} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = false", s)
		}
	}
	for _, s := range []string{"", "active", "on_hold"} {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = true", s)
		}
	}
}
