package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/render/nodelink"
)

// RenderOptions configures Render.
type RenderOptions struct {
	Formats  []string
	Detailed bool    // add status and owner lines to project labels
	Scale    float64 // PNG scale factor, 0 means 2
}

// SetRenderDefaults sets default values for rendering.
func (o *RenderOptions) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
}

// Render produces the requested artifacts for res, keyed by format. The
// JSON artifact is the render-ready node and edge set; the others are drawn
// by Graphviz with nodes pinned where the engine placed them.
func Render(ctx context.Context, res *Result, opts RenderOptions) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	for _, f := range opts.Formats {
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
	}

	l := res.Layout()
	nl := nodelink.Options{Detailed: opts.Detailed}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(res, "", "  ")
		case FormatDOT:
			data = []byte(nodelink.LayoutDOT(l, nl))
		case FormatSVG:
			data, err = nodelink.RenderLayout(ctx, l, nl)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, l, nl, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, l, nl)
		}
		if err != nil {
			return nil, crmerrors.Wrap(crmerrors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderOne is a convenience wrapper around Render for a single format.
func RenderOne(ctx context.Context, res *Result, format string, detailed bool) ([]byte, error) {
	artifacts, err := Render(ctx, res, RenderOptions{Formats: []string{format}, Detailed: detailed})
	if err != nil {
		return nil, err
	}
	data, ok := artifacts[format]
	if !ok {
		return nil, fmt.Errorf("render %s: no output", format)
	}
	return data, nil
}
