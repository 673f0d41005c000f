package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/brightfold/portal/internal/payment"
)

type paymentsState int

const (
	paymentsStateBrowse paymentsState = iota
	paymentsStateReview
)

type PaymentsModel struct {
	CommonModel
	paySvc *payment.Service

	state paymentsState
	table table.Model
	recs  []*payment.Record
	form  *huh.Form

	statusFilterIdx int

	filter  payment.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	formAction string
	formNotes  string
	adminName  string
}

func NewPaymentsModel(paySvc *payment.Service, adminName string) PaymentsModel {
	columns := []table.Column{
		{Title: "Created", Width: 12},
		{Title: "Status", Width: 11},
		{Title: "Amount", Width: 14},
		{Title: "Method", Width: 14},
		{Title: "Txn ID", Width: 22},
		{Title: "Notes", Width: 30},
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

	return PaymentsModel{
		paySvc:    paySvc,
		table:     t,
		filter:    payment.ListFilter{},
		adminName: adminName,
	}
}

func (m PaymentsModel) Title() string { return "Payments Review" }
func (m PaymentsModel) ShortHelp() string {
	if m.state == paymentsStateReview {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | v: review | s: status filter | r: refresh"
}

func (m PaymentsModel) Init() tea.Cmd {
	return m.loadRecsCmd()
}

func (m PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPaymentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.recs = msg.recs
		m.status = ""
		m.refreshTable()
		return m, nil

	case reviewSaveMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}
		m.state = paymentsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadRecsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case paymentsStateBrowse:
		return m.updateBrowse(msg)
	case paymentsStateReview:
		return m.updateReview(msg)
	}

	return m, nil
}

func (m PaymentsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadRecsCmd()
		case "v":
			return m.enterReviewMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 5
			m.applyFilter()
			return m, m.loadRecsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m PaymentsModel) enterReviewMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.recs) {
		return m, nil
	}

	rec := m.recs[idx]
	if rec.Status.IsTerminal() {
		m.status = fmt.Sprintf("Payment is %s; only notes can change", rec.Status)
		return m, nil
	}

	m.formAction = string(payment.StatusVerified)
	m.formNotes = rec.Notes

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Action").
				Options(
					huh.NewOption("Verify", string(payment.StatusVerified)),
					huh.NewOption("Mark paid", string(payment.StatusPaid)),
					huh.NewOption("Reject", string(payment.StatusFailed)),
					huh.NewOption("Dispute", string(payment.StatusDisputed)),
				).
				Value(&m.formAction),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Placeholder("bank ref, remarks...").
				Value(&m.formNotes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = paymentsStateReview
	m.table.Blur()
	return m, m.form.Init()
}

func (m PaymentsModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = paymentsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m PaymentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payments...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabels := []string{"All", "Submitted", "Verified", "Paid", "Disputed"}

	header := fmt.Sprintf("Filter: [s] Status: %s", activeStyle(statusLabels[m.statusFilterIdx]))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == paymentsStateReview && m.form != nil {
		idx := m.table.Cursor()
		detail := ""
		if idx >= 0 && idx < len(m.recs) {
			rec := m.recs[idx]
			detail = fmt.Sprintf("%s via %s", FormatAmount(rec.Amount, rec.Currency), rec.Method)
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Review Payment\n\n%s\n\n%s", detail, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *PaymentsModel) applyFilter() {
	switch m.statusFilterIdx {
	case 1:
		m.filter.Status = new(payment.StatusSubmitted)
	case 2:
		m.filter.Status = new(payment.StatusVerified)
	case 3:
		m.filter.Status = new(payment.StatusPaid)
	case 4:
		m.filter.Status = new(payment.StatusDisputed)
	default:
		m.filter.Status = nil
	}
}

func (m *PaymentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.recs))
	for _, rec := range m.recs {
		rows = append(rows, table.Row{
			FormatDate(rec.CreatedAt),
			string(rec.Status),
			FormatAmount(rec.Amount, rec.Currency),
			string(rec.Method),
			rec.TransactionID,
			rec.Notes,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadPaymentsMsg struct {
	recs []*payment.Record
	err  error
}

func (m PaymentsModel) loadRecsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		recs, err := m.paySvc.List(ctx, m.filter)
		return loadPaymentsMsg{recs: recs, err: err}
	}
}

type reviewSaveMsg struct {
	err error
}

func (m PaymentsModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.recs) {
		return nil
	}

	rec := m.recs[idx]
	action := payment.Status(m.form.GetString("action"))
	notes := m.form.GetString("notes")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.paySvc.UpdateStatus(ctx, rec.ID, action, m.adminName, notes, time.Now())
		return reviewSaveMsg{err: err}
	}
}
