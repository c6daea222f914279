package authorizer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/stravamcp/internal/config"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Underline(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is a single screen of the authorization wizard. Update returns nil
// once the step is finished.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *AuthState, width, height int) (Step, tea.Cmd)
	View(state *AuthState) string
}

type Options struct {
	Config    *config.StravaConfig
	Client    *http.Client
	EnvPath   string
	NoBrowser bool

	// Strava and OpenURL default to the live API and the system browser.
	Strava  Strava
	OpenURL BrowserOpener

	Input  io.Reader
	Output io.Writer
}

func getSteps(ctx context.Context, opts Options) []Step {
	openURL := opts.OpenURL
	if opts.NoBrowser {
		openURL = nil
	}

	return []Step{
		NewClientIDStep(),
		NewClientSecretStep(),
		NewAuthorizeStep(opts.Strava, openURL),
		NewExchangeStep(ctx, opts.Strava),
		NewVerifyStep(ctx, opts.Strava),
		NewSaveEnvStep(),
	}
}

type nextMsg struct{}

func next() tea.Msg { return nextMsg{} }

// model drives the steps in order
type model struct {
	steps       []Step
	currentStep int
	state       *AuthState
	quitting    bool
	width       int
	height      int
}

func newModel(steps []Step, state *AuthState) model {
	return model{
		steps: steps,
		state: state,
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)

	if nextStep == nil {
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.currentStep].Init()
	}

	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Authorization cancelled.\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Authorization complete!\n"
	}

	return titleStyle.Render("Connecting Strava") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

func (m model) done() bool {
	return !m.quitting && m.currentStep >= len(m.steps)
}

// RunWizard walks the operator through the consent flow and saves the
// resulting credentials to the env file.
func RunWizard(ctx context.Context, opts Options) (*AuthState, error) {
	if opts.Strava == nil {
		opts.Strava = NewStrava(opts.Client)
	}
	if opts.OpenURL == nil {
		opts.OpenURL = OpenBrowser
	}

	state := NewAuthState(opts.Config, opts.EnvPath)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(newModel(getSteps(ctx, opts), state), programOpts...)
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if !finalModel.done() {
		return nil, fmt.Errorf("strava authorization interrupted")
	}

	return finalModel.state, nil
}
