package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/brightfold/portal/cmd/admin/internal/view"
	"github.com/brightfold/portal/internal/config"
	"github.com/brightfold/portal/internal/database"
	"github.com/brightfold/portal/internal/payment"
	paymentStore "github.com/brightfold/portal/internal/payment/store"
	"github.com/brightfold/portal/internal/project"
	projectStore "github.com/brightfold/portal/internal/project/store"
)

type model struct {
	paymentService *payment.Service
	projectService *project.Service
	adminName      string

	currentView View

	paymentsView view.PaymentsModel
	releaseView  view.ReleaseModel
}

type View int

const (
	ViewMenu     View = 0
	ViewPayments View = 1
	ViewRelease  View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	paySvc := payment.NewService(paymentStore.New(db))
	projSvc := project.NewService(projectStore.New(db))

	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = "admin"
	}

	return model{
		paymentService: paySvc,
		projectService: projSvc,
		adminName:      adminName,
		currentView:    ViewMenu,
		paymentsView:   view.NewPaymentsModel(paySvc, adminName),
		releaseView:    view.NewReleaseModel(projSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewPayments
				m.paymentsView = view.NewPaymentsModel(m.paymentService, m.adminName)

				return m, m.paymentsView.Init()
			case "2":
				m.currentView = ViewRelease
				m.releaseView = view.NewReleaseModel(m.projectService)

				return m, m.releaseView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentsView.Update(msg)
		m.paymentsView = newModel.(view.PaymentsModel)
	case ViewRelease:
		var newModel tea.Model
		newModel, cmd = m.releaseView.Update(msg)
		m.releaseView = newModel.(view.ReleaseModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Portal Admin\n\n" +
				"1. Review Payments\n" +
				"2. Release Status\n\n" +
				"q. Quit",
		)
	case ViewPayments:
		return m.paymentsView.View()
	case ViewRelease:
		return m.releaseView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
