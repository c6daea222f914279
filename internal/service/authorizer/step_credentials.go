package authorizer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// credentialStep asks for one client credential. It is skipped when the
// value is already configured.
type credentialStep struct {
	input   textinput.Model
	title   string
	envKey  string
	started bool
	err     error

	current func(state *AuthState) string
	apply   func(state *AuthState, value string)
}

func NewClientIDStep() Step {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 40
	ti.Placeholder = "12345"
	ti.EchoMode = textinput.EchoNormal

	return &credentialStep{
		input:   ti,
		title:   "Strava Client ID",
		envKey:  EnvClientID,
		current: func(state *AuthState) string { return state.Config.ClientID },
		apply:   func(state *AuthState, value string) { state.Config.ClientID = value },
	}
}

func NewClientSecretStep() Step {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	ti.Placeholder = "from https://www.strava.com/settings/api"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &credentialStep{
		input:   ti,
		title:   "Strava Client Secret",
		envKey:  EnvClientSecret,
		current: func(state *AuthState) string { return state.Config.ClientSecret },
		apply:   func(state *AuthState, value string) { state.Config.ClientSecret = value },
	}
}

func (s *credentialStep) Init() tea.Cmd {
	return next
}

func (s *credentialStep) Update(msg tea.Msg, state *AuthState, width, height int) (Step, tea.Cmd) {
	if !s.started {
		if v := s.current(state); v != "" {
			state.EnvVars[s.envKey] = v
			return nil, nil
		}
		s.started = true
		return s, tea.Batch(s.input.Focus(), textinput.Blink)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		value := strings.TrimSpace(s.input.Value())
		if value == "" {
			s.err = fmt.Errorf("%s is required", s.title)
			return s, nil
		}
		s.apply(state, value)
		state.EnvVars[s.envKey] = value
		return nil, nil
	}
	return s, cmd
}

func (s *credentialStep) View(state *AuthState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enter your %s:\n\n%s\n\n", s.title, s.input.View())
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString(hintStyle.Render("(press enter to confirm)") + "\n")
	return b.String()
}
