package authorizer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
)

type exchangeDoneMsg struct {
	grant *strava.Grant
	err   error
}

type verifyDoneMsg struct {
	count int
	err   error
}

// ExchangeStep trades the authorization code for the token set.
type ExchangeStep struct {
	ctx     context.Context
	strava  Strava
	spinner spinner.Model
	started bool
	err     error
}

func NewExchangeStep(ctx context.Context, s Strava) Step {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &ExchangeStep{ctx: ctx, strava: s, spinner: sp}
}

func (s *ExchangeStep) Init() tea.Cmd {
	return tea.Batch(next, s.spinner.Tick)
}

func (s *ExchangeStep) Update(msg tea.Msg, state *AuthState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case exchangeDoneMsg:
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		state.Grant = msg.grant
		state.EnvVars[EnvRefreshToken] = msg.grant.RefreshToken
		return nil, nil
	}

	if !s.started {
		s.started = true
		cfg, code := *state.Config, state.Code
		return s, func() tea.Msg {
			grant, err := s.strava.Exchange(s.ctx, &cfg, code)
			return exchangeDoneMsg{grant: grant, err: err}
		}
	}
	return s, nil
}

func (s *ExchangeStep) View(state *AuthState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Token exchange failed: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	return s.spinner.View() + " Exchanging authorization code for tokens...\n"
}

// VerifyStep lists one activity with the new access token. A failure is
// reported as a warning; the tokens are still saved.
type VerifyStep struct {
	ctx     context.Context
	strava  Strava
	spinner spinner.Model
	started bool
}

func NewVerifyStep(ctx context.Context, s Strava) Step {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &VerifyStep{ctx: ctx, strava: s, spinner: sp}
}

func (s *VerifyStep) Init() tea.Cmd {
	return tea.Batch(next, s.spinner.Tick)
}

func (s *VerifyStep) Update(msg tea.Msg, state *AuthState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case verifyDoneMsg:
		if msg.err != nil {
			state.warn(fmt.Sprintf("test request failed: %v", msg.err))
			return nil, nil
		}
		state.Verified = true
		if msg.count == 0 {
			state.warn("test request succeeded but returned no activities")
		}
		return nil, nil
	}

	if !s.started {
		if state.Grant == nil {
			return nil, nil
		}
		s.started = true
		cfg, token := *state.Config, state.Grant.AccessToken
		return s, func() tea.Msg {
			n, err := s.strava.Verify(s.ctx, &cfg, token)
			return verifyDoneMsg{count: n, err: err}
		}
	}
	return s, nil
}

func (s *VerifyStep) View(state *AuthState) string {
	return s.spinner.View() + " Testing the access token...\n"
}
