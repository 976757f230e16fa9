package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/pipeline"
)

const (
	zoomStep = 0.25
	zoomMin  = 0.25
	zoomMax  = 3.0
)

func (c *CLI) exploreCommand() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "explore [tree.json|tree.toml]",
		Short: "Explore a layout interactively",
		Long: `Explore a layout interactively.

Every key press changes the interaction state and recomputes the layout.
Tree layouts are solved in the background; a result that arrives after a
newer change is dropped, and a failed pass keeps the previous layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			ctx := cmd.Context()
			req, runner, err := c.resolve(ctx, input, &flags)
			if err != nil {
				return err
			}
			defer runner.Close(context.WithoutCancel(ctx))

			if req.Tree == nil {
				t, err := runner.Load(ctx, req.CompanyID, req.Refresh)
				if err != nil {
					return err
				}
				req.Tree = &t
			}

			_, err = tea.NewProgram(newExploreModel(ctx, runner.Engine, req), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	flags.bind(cmd)
	return cmd
}

// =============================================================================
// exploreModel
// =============================================================================

// layoutMsg carries the result of pass gen.
type layoutMsg struct {
	gen uint64
	res *pipeline.Result
	err error
}

// exploreModel holds the interaction state. The layout shown is always the
// result of the newest pass that succeeded.
type exploreModel struct {
	ctx    context.Context
	engine *pipeline.Engine
	gen    *pipeline.Generation

	req     pipeline.Request
	clients []string // focus cycle, in hierarchy order
	focus   int      // index into clients, -1 for none

	res     *pipeline.Result
	err     error
	pending bool
	height  int
}

func newExploreModel(ctx context.Context, engine *pipeline.Engine, req pipeline.Request) exploreModel {
	var clients []string
	if req.Tree != nil {
		for _, cl := range req.Tree.Clients {
			clients = append(clients, cl.ID)
		}
	}
	focus := slices.Index(clients, req.Interaction.FocusedID)
	return exploreModel{
		ctx:     ctx,
		engine:  engine,
		gen:     &pipeline.Generation{},
		req:     req,
		clients: clients,
		focus:   focus,
		height:  20,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.recompute()
}

// recompute starts a new pass for the current state. The request is copied
// so later key presses cannot touch it.
func (m *exploreModel) recompute() tea.Cmd {
	gen := m.gen.Next()
	m.pending = true

	req := m.req
	req.Collapsed = slices.Clone(m.req.Collapsed)
	req.Interaction.ExpandedIDs = slices.Clone(m.req.Interaction.ExpandedIDs)
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		res, err := engine.Compute(ctx, req)
		return layoutMsg{gen: gen, res: res, err: err}
	}
}

func (m exploreModel) focusedClient() string {
	if m.focus < 0 || m.focus >= len(m.clients) {
		return ""
	}
	return m.clients[m.focus]
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case layoutMsg:
		if !m.gen.IsCurrent(msg.gen) {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.res, m.err = msg.res, nil
		return m, nil

	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
		return m, nil

	case tea.KeyMsg:
		s := &m.req.Interaction
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.focus++
			if m.focus >= len(m.clients) {
				m.focus = -1
			}
			s.FocusedID = m.focusedClient()
		case "shift+tab", "left", "h":
			m.focus--
			if m.focus < -1 {
				m.focus = len(m.clients) - 1
			}
			s.FocusedID = m.focusedClient()
		case "c":
			s.ConnectorMode = s.ConnectorMode.Next()
		case "d":
			if s.DensityMode == density.Details {
				s.DensityMode = density.Overview
			} else {
				s.DensityMode = density.Details
			}
		case "+", "=":
			s.SetZoom(min(s.Zoom()+zoomStep, zoomMax))
		case "-":
			s.SetZoom(max(s.Zoom()-zoomStep, zoomMin))
		case " ", "x":
			id := m.focusedClient()
			if id == "" {
				return m, nil
			}
			m.req.Collapsed = toggle(m.req.Collapsed, id)
		case "e":
			id := m.focusedClient()
			if id == "" {
				return m, nil
			}
			s.ExpandedIDs = toggle(s.ExpandedIDs, id)
		case "s":
			if m.req.Strategy == layout.StrategyTree {
				m.req.Strategy = layout.StrategyRadial
			} else {
				m.req.Strategy = layout.StrategyTree
			}
		case "o":
			m.req.Params.SetOutside(!m.req.Params.Outside())
		case "r":
			if m.req.Params.Direction == layout.DirectionTB {
				m.req.Params.Direction = layout.DirectionLR
			} else {
				m.req.Params.Direction = layout.DirectionTB
			}
		default:
			return m, nil
		}
		cmd := m.recompute()
		return m, cmd
	}
	return m, nil
}

// toggle adds id to ids or removes it.
func toggle(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

// =============================================================================
// View
// =============================================================================

var (
	styleStatusKey   = lipgloss.NewStyle().Foreground(colorGray)
	styleStatusValue = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

func (m exploreModel) View() string {
	var b strings.Builder

	name := ""
	if m.req.Tree != nil {
		name = m.req.Tree.Company.Name
	}
	b.WriteString(StyleTitle.Render(name))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.res == nil {
		if m.err != nil {
			b.WriteString(StyleError.Render(iconError + " " + crmerrors.UserMessage(m.err)))
		} else {
			b.WriteString(StyleDim.Render("computing..."))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.nodeTable())
	b.WriteString("\n")
	b.WriteString(statsLine(m.res.Stats.NodeCount, len(m.res.Edges), len(m.res.Hidden), m.res.Stats.LayoutTime))
	if m.pending {
		b.WriteString(StyleDim.Render("  (updating)"))
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleWarning.Render(iconWarning + " " + crmerrors.UserMessage(m.err) + ", showing previous layout"))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("tab focus · c connectors · d density · +/- zoom · x collapse · e expand · s strategy · r direction · o projects ring · q quit"))
	return b.String()
}

func (m exploreModel) statusLine() string {
	s := m.req.Interaction
	focus := s.FocusedID
	if focus == "" {
		focus = "none"
	}
	parts := []struct{ k, v string }{
		{"strategy", string(m.req.Strategy)},
		{"connectors", string(s.ConnectorMode)},
		{"density", string(s.DensityMode)},
		{"zoom", fmt.Sprintf("%.2f", s.Zoom())},
		{"focus", focus},
	}
	if m.req.Strategy == layout.StrategyTree {
		parts = append(parts, struct{ k, v string }{"direction", string(m.req.Params.Direction)})
	} else {
		ring := "outside"
		if !m.req.Params.Outside() {
			ring = "inside"
		}
		parts = append(parts, struct{ k, v string }{"projects", ring})
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = styleStatusKey.Render(p.k+" ") + styleStatusValue.Render(p.v)
	}
	return strings.Join(out, "  ")
}

// nodeTable lists the laid-out nodes, dimmed ones in gray.
func (m exploreModel) nodeTable() string {
	nodes := m.res.Nodes
	if len(nodes) > m.height {
		nodes = nodes[:m.height]
	}
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		label := n.Label()
		if cd, ok := n.Client(); ok && cd.Collapsed {
			label += " [+]"
		}
		if !n.LabelVisible {
			label = StyleDim.Render(label)
		}
		rows[i] = []string{
			n.Kind.String(),
			label,
			fmt.Sprintf("%7.1f", n.Position.X),
			fmt.Sprintf("%7.1f", n.Position.Y),
			fmt.Sprintf("%.2f", n.Opacity),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Label", "X", "Y", "Opacity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			n := nodes[row]
			switch {
			case m.req.Interaction.Active(n.ID):
				return StyleHighlight.Bold(true)
			case n.Opacity < 1:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	out := t.Render()
	if more := len(m.res.Nodes) - len(nodes); more > 0 {
		out += "\n" + StyleDim.Render(fmt.Sprintf("  … %d more", more))
	}
	return out
}
