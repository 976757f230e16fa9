// Package density maps the coarse density toggle and the continuous zoom
// level to node footprints and label visibility.
//
// Both layout strategies size nodes through [Size], so switching strategy
// never changes a node's footprint at a given density. Label thresholds are
// ordered company <= client <= project: zooming out hides project labels
// first and the company label last.
package density

import (
	"fmt"
	"strings"

	"github.com/matzehuels/crmmap/pkg/layout"
)

// Mode is the coarse density toggle.
type Mode string

const (
	Overview Mode = "overview"
	Details  Mode = "details"
)

// ParseMode parses a density mode (case-insensitive). Empty means Overview.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Overview, "":
		return Overview, nil
	case Details:
		return Details, nil
	}
	return "", fmt.Errorf("unknown density mode %q (must be one of: overview, details)", s)
}

// Dimensions is a node footprint in pixels.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var sizes = map[Mode][3]Dimensions{
	Overview: {
		layout.KindCompany: {Width: 160, Height: 64},
		layout.KindClient:  {Width: 120, Height: 48},
		layout.KindProject: {Width: 96, Height: 36},
	},
	Details: {
		layout.KindCompany: {Width: 220, Height: 88},
		layout.KindClient:  {Width: 180, Height: 72},
		layout.KindProject: {Width: 150, Height: 60},
	},
}

// Size returns the fixed footprint of a node kind in the given mode.
// Unknown modes fall back to Overview.
func Size(kind layout.Kind, mode Mode) Dimensions {
	table, ok := sizes[mode]
	if !ok {
		table = sizes[Overview]
	}
	if kind < layout.KindCompany || kind > layout.KindProject {
		return Dimensions{}
	}
	return table[kind]
}

// Zoom levels below which labels of each kind are hidden.
const (
	CompanyLabelThreshold = 0.15
	ClientLabelThreshold  = 0.35
	ProjectLabelThreshold = 0.6
)

// Threshold returns the zoom level at which labels of kind become visible.
func Threshold(kind layout.Kind) float64 {
	switch kind {
	case layout.KindCompany:
		return CompanyLabelThreshold
	case layout.KindClient:
		return ClientLabelThreshold
	default:
		return ProjectLabelThreshold
	}
}

// LabelVisible reports whether labels of kind are shown at zoom.
func LabelVisible(kind layout.Kind, zoom float64) bool {
	return zoom >= Threshold(kind)
}

// Labels is the label visibility of every kind at one zoom level.
type Labels struct {
	Company bool `json:"company"`
	Client  bool `json:"client"`
	Project bool `json:"project"`
}

// LabelsAt returns label visibility for all kinds at zoom.
func LabelsAt(zoom float64) Labels {
	return Labels{
		Company: LabelVisible(layout.KindCompany, zoom),
		Client:  LabelVisible(layout.KindClient, zoom),
		Project: LabelVisible(layout.KindProject, zoom),
	}
}

// Policy bundles mode and zoom for the strategies.
type Policy struct {
	Mode Mode
	Zoom float64
}

// Size returns the footprint of kind under p.
func (p Policy) Size(kind layout.Kind) Dimensions { return Size(kind, p.Mode) }

// LabelVisible reports whether labels of kind are shown under p.
func (p Policy) LabelVisible(kind layout.Kind) bool { return LabelVisible(kind, p.Zoom) }

// MinDistance returns the default collision distance: the longer side of the
// larger non-company footprint.
func (p Policy) MinDistance() float64 {
	c := p.Size(layout.KindClient)
	pr := p.Size(layout.KindProject)
	w := max(c.Width, pr.Width)
	h := max(c.Height, pr.Height)
	return max(w, h)
}
