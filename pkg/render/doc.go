// Package render turns computed layouts into files.
//
// The [nodelink] subpackage draws layouts with Graphviz and also provides
// the Graphviz-backed solver for the tree strategy. [ToPDF] and [ToPNG]
// convert its SVG output using the external rsvg-convert tool (from
// librsvg).
//
//	svg, err := nodelink.RenderLayout(ctx, l, nodelink.Options{})
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render
