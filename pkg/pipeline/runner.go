package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/observability"
	"github.com/matzehuels/crmmap/pkg/source"
)

// Runner loads company snapshots from a source and lays them out.
// Both the CLI and the API use it so loading and caching behave the same.
//
// The Runner keeps no pass results. Multiple goroutines can safely use the
// same Runner with different requests.
type Runner struct {
	Source source.Source
	Engine *Engine
	Logger *log.Logger
}

// NewRunner creates a runner. A nil engine gets a radial-only engine.
func NewRunner(src source.Source, engine *Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = NewEngine(nil, logger)
	}
	return &Runner{
		Source: src,
		Engine: engine,
		Logger: logger,
	}
}

// refresher is implemented by sources that can bypass their cache.
type refresher interface {
	Refresh(ctx context.Context, companyID string) (hierarchy.Tree, error)
}

// Load fetches the snapshot of companyID. With refresh set, cached copies
// are bypassed when the source supports it.
func (r *Runner) Load(ctx context.Context, companyID string, refresh bool) (hierarchy.Tree, error) {
	if r.Source == nil {
		return hierarchy.Tree{}, crmerrors.New(crmerrors.ErrCodeUnsupported, "no hierarchy source configured")
	}
	if err := crmerrors.ValidateID("company", companyID); err != nil {
		return hierarchy.Tree{}, err
	}

	hooks := observability.Layout()
	hooks.OnLoadStart(ctx, companyID)
	start := time.Now()

	var (
		t   hierarchy.Tree
		err error
	)
	if rs, ok := r.Source.(refresher); ok && refresh {
		t, err = rs.Refresh(ctx, companyID)
	} else {
		t, err = r.Source.Load(ctx, companyID)
	}
	hooks.OnLoadComplete(ctx, companyID, len(t.Projects), time.Since(start), err)
	if err != nil {
		return hierarchy.Tree{}, err
	}

	r.Logger.Info("loaded hierarchy",
		"company", companyID,
		"source", r.Source.Name(),
		"clients", len(t.Clients),
		"projects", len(t.Projects),
		"duration", time.Since(start))
	return t, nil
}

// Execute lays out req. A request without an inline tree is resolved
// through the source first.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var loadTime time.Duration
	if req.Tree == nil {
		start := time.Now()
		t, err := r.Load(ctx, req.CompanyID, req.Refresh)
		if err != nil {
			return nil, err
		}
		loadTime = time.Since(start)
		req.Tree = &t
	}

	res, err := r.Engine.Compute(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = loadTime

	r.Logger.Info("computed layout",
		"strategy", res.Strategy,
		"nodes", res.Stats.NodeCount,
		"hidden", len(res.Hidden),
		"duration", res.Stats.LayoutTime)
	return res, nil
}

// Hierarchy loads companyID and applies filter, without laying it out.
func (r *Runner) Hierarchy(ctx context.Context, companyID string, filter hierarchy.FilterSpec) (*hierarchy.Hierarchy, error) {
	if err := crmerrors.ValidateSearch(filter.Search); err != nil {
		return nil, err
	}
	t, err := r.Load(ctx, companyID, false)
	if err != nil {
		return nil, err
	}
	h, err := hierarchy.Apply(t, filter)
	if err != nil {
		return nil, crmerrors.Wrap(crmerrors.ErrCodeInvalidHierarchy, err, "invalid hierarchy")
	}
	return h, nil
}

// Close releases resources held by the source, if any.
func (r *Runner) Close(ctx context.Context) error {
	switch s := r.Source.(type) {
	case interface{ Close(context.Context) error }:
		return s.Close(ctx)
	case interface{ Close() error }:
		return s.Close()
	}
	return nil
}
