package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"onboarding/cmd/tui/internal/view"
	"onboarding/internal/application"
	"onboarding/internal/application/store"
	"onboarding/internal/config"
	"onboarding/internal/database"
)

type model struct {
	svc *application.Service

	currentView View

	applicationsView view.ApplicationsModel
}

type View int

const (
	ViewMenu         View = 0
	ViewApplications View = 1
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	svc := application.NewService(store.New(db))

	return model{
		svc:              svc,
		currentView:      ViewMenu,
		applicationsView: view.NewApplicationsModel(svc),
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
				m.currentView = ViewApplications
				m.applicationsView = view.NewApplicationsModel(m.svc)

				return m, m.applicationsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	if m.currentView == ViewApplications {
		var newModel tea.Model
		newModel, cmd = m.applicationsView.Update(msg)
		m.applicationsView = newModel.(view.ApplicationsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Account Onboarding\n\n" +
				"1. Manage Applications\n\n" +
				"q. Quit",
		)
	case ViewApplications:
		return m.applicationsView.View()
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
