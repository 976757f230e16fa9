package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crmmap/pkg/hierarchy"
)

func (c *CLI) hierarchyCommand() *cobra.Command {
	var (
		company string
		noCache bool
		filter  hierarchy.FilterSpec
	)

	cmd := &cobra.Command{
		Use:   "hierarchy [tree.json|tree.toml]",
		Short: "Print the clients and projects of a company",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			h, err := c.loadHierarchy(cmd.Context(), input, company, noCache, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, StyleTitle.Render(h.Company.Name)+" "+StyleDim.Render(h.Company.ID))
			fmt.Fprintln(stdout, hierarchyTable(h))
			if n := len(h.Orphans); n > 0 {
				printWarning("%d projects without a client", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&company, "company", "c", "", "company id to load from the configured source")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the snapshot cache")
	cmd.Flags().StringVar(&filter.Search, "search", "", "keep clients whose name or project names contain this")
	cmd.Flags().StringVar(&filter.Status, "status", "", "keep projects with this status")
	cmd.Flags().StringVar(&filter.Owner, "owner", "", "keep projects owned by this id")
	cmd.Flags().BoolVar(&filter.ActiveOnly, "active-only", false, "hide completed, cancelled and archived projects")

	return cmd
}

func (c *CLI) loadHierarchy(ctx context.Context, input, company string, noCache bool, filter hierarchy.FilterSpec) (*hierarchy.Hierarchy, error) {
	if input != "" {
		t, err := hierarchy.ReadTreeFile(input)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", input, err)
		}
		return hierarchy.Apply(t, filter)
	}
	if company == "" {
		return nil, fmt.Errorf("pass a tree file or --company")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	prog := newProgress(c.Logger)
	h, err := runner.Hierarchy(ctx, company, filter)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d clients", h.ClientCount()))
	return h, nil
}

// hierarchyTable renders one row per client: project count, open projects
// and the distinct project owners.
func hierarchyTable(h *hierarchy.Hierarchy) string {
	rows := make([][]string, 0, len(h.Branches))
	for _, b := range h.Branches {
		open := 0
		var owners []string
		seen := make(map[string]bool)
		for _, p := range b.Projects {
			if !hierarchy.IsTerminal(p.Status) {
				open++
			}
			name := p.OwnerName
			if name == "" {
				name = p.OwnerID
			}
			if name != "" && !seen[name] {
				seen[name] = true
				owners = append(owners, name)
			}
		}
		rows = append(rows, []string{b.Client.Name, b.Client.ID, strconv.Itoa(len(b.Projects)), strconv.Itoa(open), strings.Join(owners, ", ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Client", "ID", "Projects", "Open", "Owners").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return StyleDim
			case col == 3 && rows[row][3] != "0":
				return StyleSuccess
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
