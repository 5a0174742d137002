// Package dagview is a terminal browser for an expression pool. It lists the
// nodes reachable from a set of roots and evaluates them at a point typed
// into the input line.
package dagview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/dag"
	"github.com/msto63/paramval/pkg/engine"
)

// Model is the Bubbletea model of the DAG browser
type Model struct {
	// State
	width  int
	height int
	ready  bool
	typing bool
	err    error

	// Components
	viewport viewport.Model
	input    textinput.Model

	// Pool state
	ctx    *engine.Context
	roots  []dag.Handle
	isRoot map[dag.Handle]bool
	nodes  []dag.Handle
	cursor int

	// Last evaluation
	point    string
	results  []*engine.Result
	selected *engine.Result
}

// New creates a browser over the nodes reachable from roots
func New(ctx *engine.Context, roots ...dag.Handle) Model {
	ti := textinput.New()
	ti.Prompt = "point> "
	ti.Placeholder = "p=1/2, q=0.3"
	ti.CharLimit = 512

	isRoot := make(map[dag.Handle]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}

	return Model{
		input:  ti,
		ctx:    ctx,
		roots:  roots,
		isRoot: isRoot,
		nodes:  ctx.Pool().Reachable(roots...),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.typing {
			return m.handleInputKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Title panel
		footerHeight := 7 // Input, results and help
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 12
		m.updateViewportContent()

	case evaluatedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.point = msg.point
			m.results = msg.roots
			m.selected = msg.selected
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keys while browsing the node list
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyUp:
		m.moveCursor(-1)
		return m, nil

	case tea.KeyDown:
		m.moveCursor(1)
		return m, nil

	case tea.KeyPgUp:
		m.moveCursor(-m.viewport.Height)
		return m, nil

	case tea.KeyPgDown:
		m.moveCursor(m.viewport.Height)
		return m, nil

	case tea.KeyTab, tea.KeyEnter:
		m.typing = true
		cmd := m.input.Focus()
		return m, cmd

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m, tea.Quit
		case "k":
			m.moveCursor(-1)
		case "j":
			m.moveCursor(1)
		case "g":
			m.moveCursor(-len(m.nodes))
		case "G":
			m.moveCursor(len(m.nodes))
		case "e", "/":
			m.typing = true
			cmd := m.input.Focus()
			return m, cmd
		case "r":
			if m.point != "" {
				return m, m.evaluate(m.point)
			}
		}
		return m, nil
	}

	return m, nil
}

// handleInputKey handles keys while the point input has focus
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc, tea.KeyTab:
		m.typing = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		m.typing = false
		m.input.Blur()
		return m, m.evaluate(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	if len(m.nodes) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}

	// Keep the cursor line visible
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.viewport.Height > 0 && m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
	m.updateViewportContent()
}

// Selected returns the handle under the cursor
func (m Model) Selected() (dag.Handle, bool) {
	if len(m.nodes) == 0 {
		return 0, false
	}
	return m.nodes[m.cursor], true
}

// evaluate evaluates the roots and the selected node and returns a command
// delivering the results. The work happens here, on the update goroutine,
// because the run context is not safe for concurrent use.
func (m Model) evaluate(input string) tea.Cmd {
	msg := m.evaluateNow(input)
	return func() tea.Msg { return msg }
}

func (m Model) evaluateNow(input string) evaluatedMsg {
	values, err := ParsePointInput(input)
	if err != nil {
		return evaluatedMsg{err: err}
	}
	pt, err := m.ctx.ParsePoint(values)
	if err != nil {
		return evaluatedMsg{err: err}
	}

	out := evaluatedMsg{point: input}
	for _, r := range m.roots {
		out.roots = append(out.roots, m.ctx.EvaluateHandle(r, pt))
	}
	if sel, ok := m.Selected(); ok {
		out.selected = m.ctx.EvaluateHandle(sel, pt)
	}
	return out
}

// ParsePointInput reads "name=value" pairs separated by commas or spaces
func ParsePointInput(s string) (map[string]string, error) {
	values := make(map[string]string)
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	for _, f := range fields {
		name, value, ok := strings.Cut(f, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, pverrors.InvalidInput(pverrors.ModuleEngine, "parse_point", f, "name=value")
		}
		values[name] = value
	}
	return values, nil
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	pool := m.ctx.Pool()
	lines := make([]string, len(m.nodes))
	for i, h := range m.nodes {
		lines[i] = m.renderNode(pool, i, h)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m Model) renderNode(pool *dag.Pool, i int, h dag.Handle) string {
	e := pool.Entry(h)
	handle := HandleStyle.Render(fmt.Sprintf("n%-4d", h))

	var body string
	switch e.Kind {
	case dag.KindConstant:
		body = ConstantStyle.Render(e.Value.String())
	case dag.KindVariable:
		body = VariableStyle.Render(pool.Registry().Get(e.Param))
	default:
		ops := make([]string, len(e.Operands))
		for j, o := range e.Operands {
			ops[j] = fmt.Sprintf("n%d", o)
		}
		body = OperatorStyle.Render(e.Op.String()) + " " + HandleStyle.Render(strings.Join(ops, ", "))
	}

	line := handle + " " + body
	if m.isRoot[h] {
		line += "  " + RootStyle.Render("root")
	}
	if i == m.cursor {
		return SelectedStyle.Render("> " + line)
	}
	return "  " + line
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(NodePanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderResults())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	st := m.ctx.Pool().StatsOf(m.roots...)
	stats := HelpDescStyle.Render(fmt.Sprintf("%d nodes  %d constants  %d variables  %d operators  %d roots",
		st.Total(), st.Constants, st.Variables, st.Operators, len(m.roots)))
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		stats,
	)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

func (m Model) renderInput() string {
	style := InputPanelStyle
	if m.typing {
		style = FocusedInputPanelStyle
	}
	return style.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderResults() string {
	if m.err != nil {
		return StatusBarStyle.Width(m.width).Render(ErrorStyle.Render(m.err.Error()))
	}
	if m.results == nil {
		return StatusBarStyle.Width(m.width).Render(HelpDescStyle.Render("no point evaluated"))
	}

	parts := make([]string, 0, len(m.results)+1)
	for i, r := range m.results {
		parts = append(parts, fmt.Sprintf("f%d = %s", i, ValueStyle.Render(r.Value.String())))
	}
	if m.selected != nil {
		parts = append(parts, fmt.Sprintf("n%d = %s [%g, %g]",
			m.selected.Handle, ValueStyle.Render(m.selected.Value.String()), m.selected.Lo, m.selected.Hi))
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(parts, "   "))
}

func (m Model) renderHelpBar() string {
	hints := []string{
		RenderKeyHint("j/k", "move"),
		RenderKeyHint("e", "point"),
		RenderKeyHint("enter", "evaluate"),
		RenderKeyHint("r", "re-evaluate"),
		RenderKeyHint("q", "quit"),
	}
	return strings.Join(hints, "  ")
}

// Run starts the browser program
func Run(ctx *engine.Context, roots ...dag.Handle) error {
	p := tea.NewProgram(New(ctx, roots...))
	_, err := p.Run()
	return err
}
