package hierarchy_test

import (
	"fmt"

	"github.com/matzehuels/crmmap/pkg/hierarchy"
)

func ExampleFilter() {
	h, err := hierarchy.Build(hierarchy.Tree{
		Company: hierarchy.Company{ID: "co"},
		Clients: []hierarchy.Client{
			{ID: "acme", Name: "Acme"},
			{ID: "globex", Name: "Globex"},
		},
		Projects: []hierarchy.Project{
			{ID: "p1", Name: "Portal", ClientID: "acme", Status: "active"},
			{ID: "p2", Name: "Billing", ClientID: "globex", Status: "completed"},
		},
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	active := hierarchy.Filter(h, hierarchy.FilterSpec{ActiveOnly: true})
	for _, b := range active.Branches {
		fmt.Println(b.Client.Name, len(b.Projects))
	}
	// Output:
	// Acme 1
}
