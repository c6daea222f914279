package authorizer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
)

// AuthorizeStep shows the consent URL, opens it in the browser when it can,
// and reads back the URL Strava redirected to.
type AuthorizeStep struct {
	strava  Strava
	openURL BrowserOpener

	input      textinput.Model
	started    bool
	browserErr error
	err        error
}

// NewAuthorizeStep builds the consent step. A nil openURL leaves opening the
// URL to the operator.
func NewAuthorizeStep(s Strava, openURL BrowserOpener) Step {
	ti := textinput.New()
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Placeholder = "http://localhost/?state=...&code=...&scope=..."

	return &AuthorizeStep{
		strava:  s,
		openURL: openURL,
		input:   ti,
	}
}

func (s *AuthorizeStep) Init() tea.Cmd {
	return next
}

func (s *AuthorizeStep) start(state *AuthState) error {
	token, err := strava.NewState()
	if err != nil {
		return err
	}
	state.StateToken = token
	state.AuthURL = s.strava.AuthCodeURL(state.Config, token)

	if s.openURL != nil {
		s.browserErr = s.openURL(state.AuthURL)
	}
	return nil
}

func (s *AuthorizeStep) Update(msg tea.Msg, state *AuthState, width, height int) (Step, tea.Cmd) {
	if !s.started {
		s.started = true
		if err := s.start(state); err != nil {
			s.err = err
			return s, nil
		}
		return s, tea.Batch(s.input.Focus(), textinput.Blink)
	}

	if width > 10 {
		s.input.Width = width - 10
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		auth, err := strava.ParseRedirect(s.input.Value(), state.StateToken)
		if err != nil {
			s.err = err
			s.input.Reset()
			return s, nil
		}

		state.Code = auth.Code
		state.Scope = auth.Scope
		if !strava.HasScope(auth.Scope, strava.ActivityReadAllScope) {
			state.warn(fmt.Sprintf("granted scope %q lacks %s: private activities will not be listed",
				auth.Scope, strava.ActivityReadAllScope))
		}
		return nil, nil
	}
	return s, cmd
}

func (s *AuthorizeStep) View(state *AuthState) string {
	var b strings.Builder

	if state.AuthURL == "" {
		if s.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
		}
		return "Preparing authorization URL...\n"
	}

	switch {
	case s.openURL == nil:
		b.WriteString("Open this URL in your browser and authorize the app:\n\n")
	case s.browserErr != nil:
		b.WriteString(warnStyle.Render("Could not open a browser ("+s.browserErr.Error()+").") + "\n")
		b.WriteString("Open this URL manually and authorize the app:\n\n")
	default:
		b.WriteString("Your browser should now show the Strava consent page. If not, open:\n\n")
	}
	b.WriteString(urlStyle.Render(state.AuthURL) + "\n\n")

	b.WriteString("After authorizing, the browser lands on a page that fails to load.\n")
	b.WriteString("Copy the full URL from the address bar and paste it here:\n\n")
	b.WriteString(s.input.View() + "\n\n")

	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString(hintStyle.Render("(press enter to confirm, ctrl+c to quit)") + "\n")
	return b.String()
}
