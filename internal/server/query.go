package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/pipeline"
	"github.com/matzehuels/crmmap/pkg/visibility"
)

func filterFromQuery(q url.Values) (hierarchy.FilterSpec, error) {
	f := hierarchy.FilterSpec{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Owner:  q.Get("owner"),
	}
	if v := q.Get("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, crmerrors.Wrap(crmerrors.ErrCodeInvalidInput, err, "active_only")
		}
		f.ActiveOnly = b
	}
	return f, crmerrors.ValidateSearch(f.Search)
}

// requestFromQuery builds a layout request for companyID from base and the
// query string. Parameters left out keep the value from base.
func requestFromQuery(base pipeline.Request, companyID string, q url.Values) (pipeline.Request, error) {
	req := base.Defaults()
	req.CompanyID = companyID

	filter, err := filterFromQuery(q)
	if err != nil {
		return req, err
	}
	req.Filter = filter

	if v := q.Get("strategy"); v != "" {
		req.Strategy = layout.Strategy(v)
	}
	if v := q.Get("direction"); v != "" {
		req.Params.Direction = layout.Direction(v)
	}
	if v := q.Get("projects_outside"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, crmerrors.Wrap(crmerrors.ErrCodeInvalidInput, err, "projects_outside")
		}
		req.Params.SetOutside(b)
	}
	if v := q.Get("refresh"); v != "" {
		req.Refresh = v == "true" || v == "1"
	}

	s := &req.Interaction
	if v := q.Get("connector"); v != "" {
		s.ConnectorMode = visibility.ConnectorMode(v)
	}
	if v := q.Get("density"); v != "" {
		s.DensityMode = density.Mode(v)
	}
	if v := q.Get("zoom"); v != "" {
		zoom, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, crmerrors.Wrap(crmerrors.ErrCodeInvalidInput, err, "zoom")
		}
		s.SetZoom(zoom)
	}
	s.FocusedID = q.Get("focus")
	s.HoveredID = q.Get("hover")
	s.ClickedID = q.Get("click")

	if req.Collapsed, err = pipeline.ParseIDList(q.Get("collapsed")); err != nil {
		return req, err
	}
	if s.ExpandedIDs, err = pipeline.ParseIDList(q.Get("expanded")); err != nil {
		return req, err
	}

	return req, req.ValidateAndSetDefaults()
}
