package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"onboarding/internal/application"
)

type appState int

const (
	appStateList appState = iota
	appStateEditing
)

// appItem wraps an application to implement list.Item.
type appItem struct {
	app *application.Application
}

func (i appItem) Title() string {
	status := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.app.Status))

	name := "(unnamed)"
	if i.app.Name != nil {
		name = *i.app.Name
	}

	return fmt.Sprintf("%s  %s  %s", FormatDate(i.app.UpdatedAt), status, name)
}

func (i appItem) Description() string {
	var parts []string

	if i.app.AccountType != nil {
		parts = append(parts, string(*i.app.AccountType))
	}

	if i.app.Email != nil {
		parts = append(parts, *i.app.Email)
	}

	return strings.Join(parts, "  ")
}

func (i appItem) FilterValue() string {
	if i.app.Name != nil {
		return *i.app.Name
	}

	return ""
}

type ApplicationsModel struct {
	svc *application.Service

	state    appState
	list     list.Model
	form     *huh.Form
	apps     []*application.Application
	selected *application.Application
	loading  bool
	status   string

	// Form field bindings
	formName        string
	formDOB         string
	formIDDoc       string
	formEmail       string
	formAccountType string
	formBalance     string
	formSalary      string
	formInterested  bool
	formStreet      string
	formHouse       string
	formPostCode    string
	formCity        string
}

func NewApplicationsModel(svc *application.Service) ApplicationsModel {
	l := list.New([]list.Item{}, appItemDelegate{}, 0, 0)
	l.Title = "Account Applications"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return ApplicationsModel{
		svc:     svc,
		list:    l,
		loading: true,
	}
}

func (m ApplicationsModel) Title() string { return "Account Applications" }

func (m ApplicationsModel) ShortHelp() string {
	switch m.state {
	case appStateList:
		return "Esc: back | Enter: edit | n: new draft | s: submit | /: filter"
	case appStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m ApplicationsModel) Init() tea.Cmd {
	return m.loadAppsCmd()
}

func (m ApplicationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAppsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.apps = msg.apps
		m.refreshListItems()

		if len(msg.apps) == 0 {
			m.status = "No applications yet. Press n to start one."
		}

		return m, nil

	case createAppResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error creating draft: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Draft %s created.", msg.app.ID)

		return m, m.loadAppsCmd()

	case saveAppResultMsg:
		m.state = appStateList
		m.form = nil

		if msg.err != nil {
			m.status = resultStatus("Error saving", msg.err)
			return m, nil
		}

		m.status = "Saved."

		return m, m.loadAppsCmd()

	case submitAppResultMsg:
		if msg.err != nil {
			m.status = resultStatus("Submit rejected", msg.err)
			return m, nil
		}

		m.status = "Application completed."

		return m, m.loadAppsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case appStateList:
		return m.updateList(msg)
	case appStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m ApplicationsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.list.FilterState() != list.Filtering {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "enter":
				return m.startEditing()
			case "n":
				return m, m.createAppCmd()
			case "s":
				if selected, ok := m.list.SelectedItem().(appItem); ok {
					return m, m.submitAppCmd(selected.app)
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ApplicationsModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(appItem)
	if !ok {
		return m, nil
	}

	if selected.app.Completed() {
		m.status = "Completed applications cannot be edited."
		return m, nil
	}

	m.selected = selected.app
	m.bindForm(selected.app)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Full name").
				Value(&m.formName),

			huh.NewInput().
				Key("dateOfBirth").
				Title("Date of birth (YYYY-MM-DD)").
				Value(&m.formDOB).
				Validate(validOptionalDate),

			huh.NewInput().
				Key("idDocument").
				Title("ID document").
				Value(&m.formIDDoc),

			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.formEmail),

			huh.NewSelect[string]().
				Key("accountType").
				Title("Account type").
				Options(
					huh.NewOption("Not chosen", ""),
					huh.NewOption("Savings", string(application.AccountTypeSavings)),
					huh.NewOption("Current", string(application.AccountTypeCurrent)),
				).
				Value(&m.formAccountType),
		),

		huh.NewGroup(
			huh.NewInput().
				Key("startingBalance").
				Title("Starting balance").
				Value(&m.formBalance).
				Validate(validOptionalAmount),

			huh.NewInput().
				Key("monthlySalary").
				Title("Monthly salary").
				Value(&m.formSalary).
				Validate(validOptionalAmount),

			huh.NewConfirm().
				Key("interested").
				Title("Interested in other products?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formInterested),
		),

		huh.NewGroup(
			huh.NewInput().
				Key("streetName").
				Title("Street name").
				Value(&m.formStreet),

			huh.NewInput().
				Key("houseNumber").
				Title("House number").
				Value(&m.formHouse),

			huh.NewInput().
				Key("postCode").
				Title("Postcode (e.g. 1234 AB)").
				Value(&m.formPostCode),

			huh.NewInput().
				Key("city").
				Title("City").
				Value(&m.formCity),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = appStateEditing

	return m, m.form.Init()
}

func (m *ApplicationsModel) bindForm(app *application.Application) {
	m.formName = strValue(app.Name)
	m.formIDDoc = strValue(app.IDDocument)
	m.formEmail = strValue(app.Email)

	m.formDOB = ""
	if app.DateOfBirth != nil {
		m.formDOB = FormatDate(*app.DateOfBirth)
	}

	m.formAccountType = ""
	if app.AccountType != nil {
		m.formAccountType = string(*app.AccountType)
	}

	m.formBalance = ""
	if app.StartingBalance != nil {
		m.formBalance = FormatAmount(*app.StartingBalance)
	}

	m.formSalary = ""
	if app.MonthlySalary != nil {
		m.formSalary = FormatAmount(*app.MonthlySalary)
	}

	m.formInterested = app.InterestedInOtherProducts != nil && *app.InterestedInOtherProducts

	m.formStreet, m.formHouse, m.formPostCode, m.formCity = "", "", "", ""
	if app.Address != nil {
		m.formStreet = strValue(app.Address.StreetName)
		m.formHouse = strValue(app.Address.HouseNumber)
		m.formPostCode = strValue(app.Address.PostCode)
		m.formCity = strValue(app.Address.City)
	}
}

func (m ApplicationsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = appStateList
			m.form = nil

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

	return m, m.saveAppCmd()
}

func (m ApplicationsModel) View() string {
	switch m.state {
	case appStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading applications...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case appStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(
			m.appInfoView() + "\n" + m.form.View(),
		)
	}

	return ""
}

func (m ApplicationsModel) appInfoView() string {
	if m.selected == nil {
		return ""
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Application: %s\nStatus: %s  |  Created: %s",
			m.selected.ID,
			m.selected.Status,
			FormatDate(m.selected.CreatedAt),
		))
}

func (m *ApplicationsModel) refreshListItems() {
	items := make([]list.Item, len(m.apps))
	for i, app := range m.apps {
		items[i] = appItem{app: app}
	}

	m.list.SetItems(items)
}

// Messages

type loadAppsMsg struct {
	apps []*application.Application
	err  error
}

func (m ApplicationsModel) loadAppsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		apps, err := m.svc.List(ctx)

		return loadAppsMsg{apps: apps, err: err}
	}
}

type createAppResultMsg struct {
	app *application.Application
	err error
}

func (m ApplicationsModel) createAppCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		app, err := m.svc.Create(ctx, application.Patch{})

		return createAppResultMsg{app: app, err: err}
	}
}

type saveAppResultMsg struct {
	err error
}

func (m ApplicationsModel) saveAppCmd() tea.Cmd {
	app := m.selected
	patch := m.buildPatch()
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := svc.Update(ctx, app.ID, patch)

		return saveAppResultMsg{err: err}
	}
}

type submitAppResultMsg struct {
	err error
}

func (m ApplicationsModel) submitAppCmd(app *application.Application) tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := svc.Submit(ctx, app.ID)

		return submitAppResultMsg{err: err}
	}
}

// buildPatch turns the form bindings into a partial update. Fields the user
// left blank are omitted so the draft keeps whatever it already holds.
func (m ApplicationsModel) buildPatch() application.Patch {
	var patch application.Patch

	patch.Name = optionalStr(m.formName)
	patch.IDDocument = optionalStr(m.formIDDoc)
	patch.Email = optionalStr(m.formEmail)

	if m.formDOB != "" {
		if dob, err := time.ParseInLocation(time.DateOnly, m.formDOB, time.UTC); err == nil {
			patch.DateOfBirth = &dob
		}
	}

	if m.formAccountType != "" {
		if at, err := application.ParseAccountType(m.formAccountType); err == nil {
			patch.AccountType = &at
		}
	}

	if m.formBalance != "" {
		if d, err := decimal.NewFromString(m.formBalance); err == nil {
			patch.StartingBalance = &d
		}
	}

	if m.formSalary != "" {
		if d, err := decimal.NewFromString(m.formSalary); err == nil {
			patch.MonthlySalary = &d
		}
	}

	interested := m.formInterested
	patch.InterestedInOtherProducts = &interested

	addressPatch := application.AddressPatch{
		StreetName:  optionalStr(m.formStreet),
		HouseNumber: optionalStr(m.formHouse),
		PostCode:    optionalStr(m.formPostCode),
		City:        optionalStr(m.formCity),
	}
	if addressPatch != (application.AddressPatch{}) {
		patch.Address = &addressPatch
	}

	return patch
}

// resultStatus renders service errors for the status line, expanding
// validation failures into their per-field messages.
func resultStatus(prefix string, err error) string {
	var validationErr *application.ValidationError
	if errors.As(err, &validationErr) {
		msgs := make([]string, len(validationErr.Violations))
		for i, v := range validationErr.Violations {
			msgs[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
		}

		return fmt.Sprintf("%s: %s", prefix, strings.Join(msgs, "; "))
	}

	return fmt.Sprintf("%s: %v", prefix, err)
}

func validOptionalDate(s string) error {
	if s == "" {
		return nil
	}

	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("expected YYYY-MM-DD")
	}

	return nil
}

func validOptionalAmount(s string) error {
	if s == "" {
		return nil
	}

	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("expected a number")
	}

	return nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// appItemDelegate renders items in the list.
type appItemDelegate struct{}

func (d appItemDelegate) Height() int                             { return 2 }
func (d appItemDelegate) Spacing() int                            { return 0 }
func (d appItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d appItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(appItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	desc := i.Description()
	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(desc))
}
