package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crmmap/pkg/density"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/pipeline"
	"github.com/matzehuels/crmmap/pkg/visibility"
)

// requestFlags are the layout request flags shared by layout and explore.
// Empty values keep the configured defaults.
type requestFlags struct {
	company   string
	strategy  string
	direction string
	focus     string
	hover     string
	click     string
	connector string
	density   string
	zoom      float64
	collapsed string
	expanded  string
	filter    hierarchy.FilterSpec
	noCache   bool
	refresh   bool
	noCollide bool

	projectsInside bool

	// changed reports whether a flag was set on the command line.
	changed func(name string) bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	f.changed = fs.Changed
	fs.StringVarP(&f.company, "company", "c", "", "company id to load from the configured source")
	fs.StringVarP(&f.strategy, "strategy", "s", "", "layout strategy: radial, tree")
	fs.StringVar(&f.direction, "direction", "", "tree direction: LR, TB")
	fs.StringVar(&f.focus, "focus", "", "focused node id")
	fs.StringVar(&f.hover, "hover", "", "hovered node id")
	fs.StringVar(&f.click, "click", "", "clicked node id")
	fs.StringVar(&f.connector, "connector", "", "connector mode: off, minimal, neighborhood, all")
	fs.StringVar(&f.density, "density", "", "density mode: overview, details")
	fs.Float64Var(&f.zoom, "zoom", 0, "zoom level (default 1)")
	fs.StringVar(&f.collapsed, "collapsed", "", "comma-separated client ids to collapse")
	fs.StringVar(&f.expanded, "expanded", "", "comma-separated client ids expanded in the tree strategy")
	fs.StringVar(&f.filter.Search, "search", "", "keep clients whose name or project names contain this")
	fs.StringVar(&f.filter.Status, "status", "", "keep projects with this status")
	fs.StringVar(&f.filter.Owner, "owner", "", "keep projects owned by this id")
	fs.BoolVar(&f.filter.ActiveOnly, "active-only", false, "hide completed, cancelled and archived projects")
	fs.BoolVar(&f.noCache, "no-cache", false, "bypass the snapshot cache")
	fs.BoolVar(&f.refresh, "refresh", false, "reload the snapshot and update the cache")
	fs.BoolVar(&f.noCollide, "no-collide", false, "skip collision resolution")
	fs.BoolVar(&f.projectsInside, "projects-inside", false, "radial: place all projects on one ring inside the clients")
}

// apply overlays the flags on req and validates the result.
func (f *requestFlags) apply(req *pipeline.Request) error {
	if f.company != "" {
		req.CompanyID = f.company
	}
	if f.strategy != "" {
		req.Strategy = layout.Strategy(strings.ToLower(f.strategy))
	}
	if f.direction != "" {
		req.Params.Direction = layout.Direction(strings.ToUpper(f.direction))
	}
	req.Filter = f.filter
	req.Refresh = f.refresh
	if f.noCollide {
		req.Collision.Disabled = true
	}
	if f.projectsInside {
		req.Params.SetOutside(false)
	}

	s := &req.Interaction
	s.FocusedID, s.HoveredID, s.ClickedID = f.focus, f.hover, f.click
	if f.connector != "" {
		s.ConnectorMode = visibility.ConnectorMode(f.connector)
	}
	if f.density != "" {
		s.DensityMode = density.Mode(f.density)
	}
	if f.zoom != 0 || (f.changed != nil && f.changed("zoom")) {
		s.SetZoom(f.zoom)
	}

	var err error
	if req.Collapsed, err = pipeline.ParseIDList(f.collapsed); err != nil {
		return err
	}
	if s.ExpandedIDs, err = pipeline.ParseIDList(f.expanded); err != nil {
		return err
	}
	return req.ValidateAndSetDefaults()
}

// resolve turns the positional input and flags into a request and the
// runner that serves it. A tree file is laid out directly; otherwise the
// company is loaded from the configured source.
func (c *CLI) resolve(ctx context.Context, input string, f *requestFlags) (pipeline.Request, *pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Request{}, nil, err
	}
	req := cfg.Request()

	if input != "" {
		t, err := hierarchy.ReadTreeFile(input)
		if err != nil {
			return pipeline.Request{}, nil, fmt.Errorf("read %s: %w", input, err)
		}
		req.Tree = &t
		if err := f.apply(&req); err != nil {
			return pipeline.Request{}, nil, err
		}
		return req, pipeline.NewRunner(nil, c.newEngine(cfg), c.Logger), nil
	}

	if f.company == "" {
		return pipeline.Request{}, nil, fmt.Errorf("pass a tree file or --company")
	}
	if err := f.apply(&req); err != nil {
		return pipeline.Request{}, nil, err
	}
	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return pipeline.Request{}, nil, fmt.Errorf("initialize runner: %w", err)
	}
	return req, runner, nil
}

// =============================================================================
// layout
// =============================================================================

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags    requestFlags
		output   string
		formats  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.toml]",
		Short: "Compute the layout of a company hierarchy",
		Long: `Compute the layout of a company hierarchy and write it out.

The hierarchy comes from a tree file or, with --company, from the configured
source (a directory of tree files or MongoDB). The JSON output is the
render-ready node and edge set; svg, png, pdf and dot are drawn by Graphviz
with every node pinned where the layout placed it.`,
		Example: `  crmmap layout northwind.json --focus acme -f json,svg
  crmmap layout --company northwind --strategy tree --direction TB -f png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			fs, err := parseFormats(formats)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), input, &flags, fs, output, detailed)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for one format, base path for several, - for stdout")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatJSON, "output formats: json, svg, png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add status and owner to project labels")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags *requestFlags, formats []string, output string, detailed bool) error {
	req, runner, err := c.resolve(ctx, input, flags)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	spinner := startSpinner(ctx, fmt.Sprintf("Computing %s layout...", req.Strategy))
	res, err := runner.Execute(ctx, req)
	if err != nil {
		spinner.Fail("Layout failed")
		return err
	}
	artifacts, err := pipeline.Render(ctx, res, pipeline.RenderOptions{Formats: formats, Detailed: detailed})
	spinner.Stop()
	if err != nil {
		return err
	}

	if output == "-" {
		if len(formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format")
		}
		_, err := stdout.Write(artifacts[formats[0]])
		return err
	}

	paths := outputPaths(input, req.CompanyID, output, formats)
	for _, f := range formats {
		if err := os.WriteFile(paths[f], artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
	}

	printSuccess("Layout complete")
	for _, f := range formats {
		printFile(paths[f])
	}
	fmt.Fprintln(stdout, "  "+statsLine(res.Stats.NodeCount, len(res.Edges), len(res.Hidden), res.Stats.LoadTime+res.Stats.LayoutTime))
	if len(res.Orphans) > 0 {
		printWarning("%d projects without a client were left out", len(res.Orphans))
	}
	if !res.Stats.Collision.Converged {
		printDetail("collision pass stopped after %d iterations", res.Stats.Collision.Iterations)
	}
	if input != "" {
		printNextStep("Explore", "crmmap explore "+input)
	}
	return nil
}

// outputPaths names the file of each format. One format with an explicit
// output uses it verbatim; otherwise <base>.<format>, where base defaults to
// <input>.layout or <company>.layout.
func outputPaths(input, company, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}

	base := output
	if base == "" {
		if input != "" {
			base = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout"
		} else {
			base = company + ".layout"
		}
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// parseFormats parses the --format flag. Duplicates are dropped.
func parseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := pipeline.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []string{pipeline.FormatJSON}
	}
	return out, nil
}
