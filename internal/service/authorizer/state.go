package authorizer

import (
	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
)

const (
	EnvClientID     = "STRAVA_CLIENT_ID"
	EnvClientSecret = "STRAVA_CLIENT_SECRET"
	EnvRefreshToken = "STRAVA_REFRESH_TOKEN"
)

type AuthState struct {
	// Config starts from the environment; the wizard fills in the client
	// credentials when they are missing.
	Config  *config.StravaConfig
	EnvPath string

	// StateToken is the CSRF token sent with the consent URL.
	StateToken string
	AuthURL    string
	Code       string
	Scope      string

	Grant    *strava.Grant
	Verified bool
	Warnings []string

	EnvVars map[string]string
}

func NewAuthState(cfg *config.StravaConfig, envPath string) *AuthState {
	c := *cfg
	return &AuthState{
		Config:  &c,
		EnvPath: envPath,
		EnvVars: make(map[string]string),
	}
}

func (s *AuthState) warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}
