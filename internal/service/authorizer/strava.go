package authorizer

import (
	"context"
	"net/http"

	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
)

// Strava is what the wizard needs from the Strava API. The client
// credentials may change while the wizard runs, so every call takes the
// current config.
type Strava interface {
	AuthCodeURL(cfg *config.StravaConfig, state string) string
	Exchange(ctx context.Context, cfg *config.StravaConfig, code string) (*strava.Grant, error)
	// Verify lists one activity with the freshly minted access token.
	Verify(ctx context.Context, cfg *config.StravaConfig, accessToken string) (int, error)
}

type liveStrava struct {
	client *http.Client
}

func NewStrava(client *http.Client) Strava {
	return &liveStrava{client: client}
}

func (l *liveStrava) AuthCodeURL(cfg *config.StravaConfig, state string) string {
	return strava.NewAuthorizer(cfg, l.client).AuthCodeURL(state)
}

func (l *liveStrava) Exchange(ctx context.Context, cfg *config.StravaConfig, code string) (*strava.Grant, error) {
	return strava.NewAuthorizer(cfg, l.client).Exchange(ctx, code)
}

func (l *liveStrava) Verify(ctx context.Context, cfg *config.StravaConfig, accessToken string) (int, error) {
	result, err := strava.NewFetcher(cfg, l.client).Fetch(ctx, accessToken, core.FetchRequest{Count: 1})
	if err != nil {
		return 0, err
	}
	return len(result.Activities), nil
}
