package density

import (
	"testing"

	"github.com/matzehuels/crmmap/pkg/layout"
)

var kinds = []layout.Kind{layout.KindCompany, layout.KindClient, layout.KindProject}

func TestSizeTable(t *testing.T) {
	seen := map[Dimensions]bool{}
	for _, mode := range []Mode{Overview, Details} {
		for _, k := range kinds {
			d := Size(k, mode)
			if d.Width <= 0 || d.Height <= 0 {
				t.Errorf("Size(%v, %v) = %+v, want positive", k, mode, d)
			}
			seen[d] = true
		}
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct size pairs, got %d", len(seen))
	}
}

func TestSizeDetailsLarger(t *testing.T) {
	for _, k := range kinds {
		o, d := Size(k, Overview), Size(k, Details)
		if d.Width <= o.Width || d.Height <= o.Height {
			t.Errorf("%v: details %+v should be larger than overview %+v", k, d, o)
		}
	}
}

func TestSizeDeterministicAndFallback(t *testing.T) {
	if Size(layout.KindClient, Details) != Size(layout.KindClient, Details) {
		t.Error("Size should be deterministic")
	}
	if Size(layout.KindClient, Mode("weird")) != Size(layout.KindClient, Overview) {
		t.Error("unknown mode should fall back to overview")
	}
}

func TestThresholdOrdering(t *testing.T) {
	if !(Threshold(layout.KindCompany) <= Threshold(layout.KindClient) &&
		Threshold(layout.KindClient) <= Threshold(layout.KindProject)) {
		t.Error("thresholds must be ordered company <= client <= project")
	}
}

func TestLabelsAt(t *testing.T) {
	tests := []struct {
		zoom float64
		want Labels
	}{
		{0.05, Labels{}},
		{0.2, Labels{Company: true}},
		{0.5, Labels{Company: true, Client: true}},
		{1.0, Labels{Company: true, Client: true, Project: true}},
	}
	for _, tt := range tests {
		if got := LabelsAt(tt.zoom); got != tt.want {
			t.Errorf("LabelsAt(%v) = %+v, want %+v", tt.zoom, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != Overview {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMode("DETAILS"); err != nil || m != Details {
		t.Errorf("ParseMode(DETAILS) = %v, %v", m, err)
	}
	if _, err := ParseMode("compact"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPolicyMinDistance(t *testing.T) {
	p := Policy{Mode: Overview}
	if got := p.MinDistance(); got != 120 {
		t.Errorf("MinDistance = %v, want 120", got)
	}
}
