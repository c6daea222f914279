package config

import (
	"context"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/stravamcp/pkg/log"
)

// StravaConfig holds the API application credentials. Missing credentials are
// not a parse error: the token refresher reports them when it is used.
type StravaConfig struct {
	ClientID     string `env:"STRAVA_CLIENT_ID"`
	ClientSecret string `env:"STRAVA_CLIENT_SECRET"`
	RefreshToken string `env:"STRAVA_REFRESH_TOKEN"`
	RedirectURI  string `env:"STRAVA_REDIRECT_URI" envDefault:"http://localhost"`
	Scopes       string `env:"STRAVA_SCOPES" envDefault:"read_all,activity:read_all,profile:read_all"`

	AuthURL        string        `env:"STRAVA_AUTH_URL" envDefault:"https://www.strava.com/oauth/authorize"`
	TokenURL       string        `env:"STRAVA_TOKEN_URL" envDefault:"https://www.strava.com/oauth/token"`
	APIURL         string        `env:"STRAVA_API_URL" envDefault:"https://www.strava.com/api/v3"`
	RequestTimeout time.Duration `env:"STRAVA_REQUEST_TIMEOUT" envDefault:"30s"`
}

func NewStravaConfig(ctx context.Context) *StravaConfig {
	c := &StravaConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Strava config")
	}
	return c
}

func (c StravaConfig) GetActivitiesURL() string {
	return strings.TrimRight(c.APIURL, "/") + "/athlete/activities"
}

// GetScopes splits the comma separated scope list.
func (c StravaConfig) GetScopes() []string {
	var scopes []string
	for _, s := range strings.Split(c.Scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
