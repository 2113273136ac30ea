package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/core/canvas"
	"github.com/matzehuels/entitymap/pkg/core/diagram"
	"github.com/matzehuels/entitymap/pkg/core/geom"
	"github.com/matzehuels/entitymap/pkg/core/render/sink"
)

// Explorer layout, in terminal cells.
const (
	paneWidth    = 30
	headerHeight = 2
	footerHeight = 2

	// cellDeleteControl covers the × glyph and the border beside it.
	cellDeleteControl = 2
)

var gridStyles = map[string]lipgloss.Style{
	sink.ClassEdge:   lipgloss.NewStyle().Foreground(colorDim),
	sink.ClassMarker: lipgloss.NewStyle().Foreground(colorCyan),
	sink.ClassBox:    lipgloss.NewStyle().Foreground(colorWhite),
	sink.ClassTitle:  lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	sink.ClassDrag:   lipgloss.NewStyle().Foreground(colorYellow),
	sink.ClassDelete: lipgloss.NewStyle().Foreground(colorRed),
}

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle         = lipgloss.NewStyle().Width(paneWidth)
)

const exploreHelp = "↑/↓ pick  ⏎ add  tab select  shift+arrows nudge  x remove  c clear  r redraw  q quit"

func (c *CLI) exploreCommand() *cobra.Command {
	var latency time.Duration
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the catalog interactively in the terminal",
		Long: `Explore opens a terminal canvas. Pick a root class, then drill into related
classes; each one is placed to the right of its parent. Drag boxes with the
mouse and click × to remove them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("latency") {
				latency = c.Config.Explore.Latency.Duration
			}
			m, err := c.newExploreModel(cmd.Context(), cat, catalog.WithLatency(cat, latency))
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&latency, "latency", 0, "simulated content load latency")
	return cmd
}

// loadedMsg carries the result of an asynchronous content load.
type loadedMsg struct {
	id      string
	content catalog.Content
	err     error
}

// exploreModel is the bubbletea model of the explorer.
type exploreModel struct {
	ctx    context.Context
	cat    *catalog.Catalog
	loader catalog.Loader

	canvas   *canvas.Canvas
	grid     *sink.GridSurface
	contents map[string]catalog.Content
	pending  map[string]bool

	selected string
	cursor   int
	status   string
}

func (c *CLI) newExploreModel(ctx context.Context, cat *catalog.Catalog, loader catalog.Loader) (*exploreModel, error) {
	resolver, err := diagram.ParseResolveMode(c.Config.Layout.Resolve)
	if err != nil {
		return nil, err
	}
	engine := c.Config.Engine()
	engine.Gap = c.Config.Explore.Gap

	m := &exploreModel{
		ctx:      ctx,
		cat:      cat,
		loader:   loader,
		grid:     sink.NewGridSurface(80-paneWidth, 24-headerHeight-footerHeight),
		contents: make(map[string]catalog.Content),
		pending:  make(map[string]bool),
	}
	m.canvas = canvas.New(m.grid,
		canvas.WithResolver(resolver),
		canvas.WithEngine(engine),
		canvas.WithDeleteControl(cellDeleteControl),
		canvas.WithResetFunc(m.reset),
	)
	return m, nil
}

func (m *exploreModel) Init() tea.Cmd { return nil }

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.grid.Resize(max(msg.Width-paneWidth, 0), max(msg.Height-headerHeight-footerHeight, 0))
		m.canvas.RedrawEdges()
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case loadedMsg:
		m.handleLoaded(msg)
	}
	m.grid.DrawBoxes(m.boxes(), true)
	return m, cmd
}

func (m *exploreModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	choices := m.choices()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(choices)-1 {
			m.cursor++
		}
	case "enter":
		if len(choices) == 0 {
			return nil
		}
		return m.show(choices[min(m.cursor, len(choices)-1)])
	case "esc":
		m.selected, m.cursor = "", 0
	case "tab":
		m.cycleSelection()
	case "x", "delete":
		if m.selected != "" {
			m.remove(m.selected)
		}
	case "c":
		m.canvas.Clear()
		clear(m.contents)
		m.selected, m.cursor = "", 0
		m.status = "cleared"
	case "r":
		m.canvas.RedrawEdges()
	case "shift+left":
		m.nudge(-1, 0)
	case "shift+right":
		m.nudge(1, 0)
	case "shift+up":
		m.nudge(0, -1)
	case "shift+down":
		m.nudge(0, 1)
	}
	return nil
}

func (m *exploreModel) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X-paneWidth, msg.Y-headerHeight
	p := m.grid.CellToPoint(x, y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || x < 0 || y < 0 {
			return
		}
		n, onDelete, ok := m.canvas.Hit(p)
		if !ok {
			return
		}
		if onDelete {
			m.remove(n.ID)
			return
		}
		m.selected, m.cursor = n.ID, 0
		m.canvas.BeginDrag(n.ID, p)
	case tea.MouseActionMotion:
		m.canvas.MoveDrag(p)
	case tea.MouseActionRelease:
		m.canvas.EndDrag()
	}
}

// show adds a class under the selected node, or as a new root, and starts
// loading its content.
func (m *exploreModel) show(id string) tea.Cmd {
	ref := canvas.Ref{ID: id, ParentID: m.selected}
	if m.selected == "" {
		ref.Position = m.nextRootPosition()
	}
	if !m.canvas.Add(ref) {
		return nil
	}
	m.pending[id] = true
	m.status = "loading " + diagram.ShortName(id)

	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		content, err := loader.Load(ctx, id)
		return loadedMsg{id: id, content: content, err: err}
	}
}

// handleLoaded is the content-rendered signal: the box size is known only
// once the content has arrived.
func (m *exploreModel) handleLoaded(msg loadedMsg) {
	delete(m.pending, msg.id)
	if _, ok := m.canvas.Node(msg.id); !ok {
		return
	}
	if msg.err != nil {
		m.canvas.Remove(msg.id)
		m.status = StyleWarning.Render(msg.err.Error())
		return
	}
	m.contents[msg.id] = msg.content
	m.canvas.Rendered(msg.id, measureCells(msg.content))
	if m.selected == "" {
		m.selected = msg.id
	}
	m.cursor = 0
	m.status = "added " + msg.content.Title
}

func (m *exploreModel) remove(id string) {
	if !m.canvas.Remove(id) {
		return
	}
	delete(m.contents, id)
	if m.selected == id {
		m.selected, m.cursor = "", 0
	}
	m.status = "removed " + diagram.ShortName(id)
}

// reset runs when the last node is removed.
func (m *exploreModel) reset() {
	m.selected, m.cursor = "", 0
}

func (m *exploreModel) nudge(dx, dy float64) {
	n, ok := m.canvas.Node(m.selected)
	if !ok || !n.Rendered {
		return
	}
	grip := n.Position.Add(geom.Point{X: 1, Y: n.Size.Height / 2})
	if !m.canvas.BeginDrag(n.ID, grip) {
		return
	}
	m.canvas.MoveDrag(grip.Add(geom.Point{X: dx, Y: dy}))
	m.canvas.EndDrag()
}

func (m *exploreModel) cycleSelection() {
	nodes := m.canvas.Nodes()
	if len(nodes) == 0 {
		return
	}
	next := 0
	for i, n := range nodes {
		if n.ID == m.selected {
			next = (i + 1) % len(nodes)
		}
	}
	m.selected, m.cursor = nodes[next].ID, 0
}

// choices lists the classes the picker offers: relations of the selected
// node, or every class when nothing is selected. Shown classes are left out.
func (m *exploreModel) choices() []string {
	ids := m.cat.IDs()
	if m.selected != "" {
		ids = m.cat.Related(m.selected)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, shown := m.canvas.Node(id); !shown {
			out = append(out, id)
		}
	}
	return out
}

func (m *exploreModel) nextRootPosition() diagram.Position {
	pos := diagram.Position{X: 1, Y: 1}
	for _, n := range m.canvas.Nodes() {
		pos.Y = max(pos.Y, n.Bounds().Bottom()+1)
	}
	return pos
}

func (m *exploreModel) boxes() []sink.Box {
	return sink.Boxes(m.canvas.Nodes(), func(id string) []string {
		return m.contents[id].Rows
	})
}

func (m *exploreModel) View() string {
	header := StyleTitle.Render("entitymap explore") + "  " + StyleDim.Render(m.cat.Name)
	_, gridHeight := m.grid.Size()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Height(gridHeight).Render(m.pickerView()),
		m.grid.Render(gridStyles),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, m.statusLine(), listDimStyle.Render(exploreHelp))
}

func (m *exploreModel) pickerView() string {
	var b strings.Builder
	title := "Add root"
	if m.selected != "" {
		title = "Drill from " + diagram.ShortName(m.selected)
	}
	b.WriteString(StyleHighlight.Render(truncate(title, paneWidth-1)))
	b.WriteString("\n")

	choices := m.choices()
	if len(choices) == 0 {
		b.WriteString(listDimStyle.Render("  nothing left to add"))
	}
	for i, id := range choices {
		line := truncate(id, paneWidth-3)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *exploreModel) statusLine() string {
	parts := []string{fmt.Sprintf("%d nodes", m.canvas.Len()), fmt.Sprintf("%d edges", len(m.canvas.Edges()))}
	if len(m.pending) > 0 {
		parts = append(parts, fmt.Sprintf("%d loading", len(m.pending)))
	}
	if id, ok := m.canvas.Dragging(); ok {
		parts = append(parts, "dragging "+diagram.ShortName(id))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// measureCells sizes a box for the grid: a rounded border, one space of
// padding each side, and a column for the × control.
func measureCells(c catalog.Content) diagram.Size {
	width := 0
	lines := c.Lines()
	for _, l := range lines {
		width = max(width, lipgloss.Width(l))
	}
	return diagram.Size{Width: float64(width + 5), Height: float64(len(lines) + 2)}
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:max(n-1, 0)]) + "…"
}
