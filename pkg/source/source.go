// Package source loads company hierarchy snapshots for the layout engine.
//
// The engine never queries a data store itself. A [Source] delivers an
// already joined [hierarchy.Tree] (clients, projects, stage and todo counts,
// owner names) and the engine takes it from there. Trees are returned
// unvalidated; [hierarchy.Build] rejects malformed ones.
package source

import (
	"context"

	"github.com/matzehuels/crmmap/pkg/hierarchy"
)

// Source loads a company snapshot.
type Source interface {
	// Name identifies the backend in cache keys and logs.
	Name() string

	// Load returns the snapshot of companyID. A missing company yields an
	// error with code NOT_FOUND.
	Load(ctx context.Context, companyID string) (hierarchy.Tree, error)
}
