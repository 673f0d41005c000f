package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brightfold/portal/internal/project"
)

// ReleaseModel shows each project's deliverable-release position: settled
// invoice total against agreed cost.
type ReleaseModel struct {
	CommonModel
	projSvc *project.Service

	table    table.Model
	projects []*project.Project
	decision map[int]string

	loading bool
	err     error
}

func NewReleaseModel(projSvc *project.Service) ReleaseModel {
	columns := []table.Column{
		{Title: "Project", Width: 30},
		{Title: "Cost", Width: 14},
		{Title: "Release", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ReleaseModel{
		projSvc:  projSvc,
		table:    t,
		decision: map[int]string{},
	}
}

func (m ReleaseModel) Title() string     { return "Release Status" }
func (m ReleaseModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m ReleaseModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReleaseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReleaseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.projects = msg.projects
		m.decision = msg.decision
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 8)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ReleaseModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading projects...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(tableView)
}

func (m *ReleaseModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.projects))
	for i, p := range m.projects {
		cost := "not set"
		if p.Cost != nil {
			cost = FormatAmount(*p.Cost, p.Currency)
		}

		rows = append(rows, table.Row{p.Name, cost, m.decision[i]})
	}
	m.table.SetRows(rows)
}

// Messages

type loadReleaseMsg struct {
	projects []*project.Project
	decision map[int]string
	err      error
}

func (m ReleaseModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		projects, err := m.projSvc.List(ctx, nil)
		if err != nil {
			return loadReleaseMsg{err: err}
		}

		decision := make(map[int]string, len(projects))

		for i, p := range projects {
			d, err := m.projSvc.CanReleaseDeliverables(ctx, p.ID)
			if err != nil {
				decision[i] = err.Error()
				continue
			}

			if d.Allowed {
				decision[i] = "fully paid, release allowed"
			} else {
				decision[i] = fmt.Sprintf("blocked, %s outstanding", d.Remaining)
			}
		}

		return loadReleaseMsg{projects: projects, decision: decision}
	}
}
