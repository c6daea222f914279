package strava

import (
	"context"
	"errors"
	"net/http"

	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/pkg/log"
	"golang.org/x/oauth2"
)

var _ core.CredentialRefresher = (*Refresher)(nil)

// Refresher exchanges the configured refresh token for a fresh access token on
// every call. Nothing is cached.
type Refresher struct {
	cfg    *config.StravaConfig
	client *http.Client
}

func NewRefresher(cfg *config.StravaConfig, client *http.Client) *Refresher {
	return &Refresher{cfg: cfg, client: client}
}

func (r *Refresher) AccessToken(ctx context.Context) (_ string, err error) {
	if err := checkCredentials(r.cfg); err != nil {
		return "", err
	}

	ctx, span := startSpan(ctx, "strava.refresh_token")
	defer func() { endSpan(span, err) }()

	ctx, cancel := withRequestTimeout(ctx, r.cfg)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)

	// The refresh token is never rotated here, even if Strava returns a new one.
	src := oauthConfig(r.cfg).TokenSource(ctx, &oauth2.Token{RefreshToken: r.cfg.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return "", tokenError(err)
	}

	log.FromCtx(ctx).Debug().
		Str("access_token", log.Mask(tok.AccessToken)).
		Time("expires_at", tok.Expiry).
		Msg("access token refreshed")

	return tok.AccessToken, nil
}

func checkCredentials(cfg *config.StravaConfig) error {
	switch {
	case cfg.RefreshToken == "":
		return &core.ConfigurationError{Field: "STRAVA_REFRESH_TOKEN", Reason: "is not set, run `stravamcp auth` first"}
	case cfg.ClientID == "":
		return &core.ConfigurationError{Field: "STRAVA_CLIENT_ID", Reason: "is not set"}
	case cfg.ClientSecret == "":
		return &core.ConfigurationError{Field: "STRAVA_CLIENT_SECRET", Reason: "is not set"}
	}
	return nil
}

func oauthConfig(cfg *config.StravaConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.GetScopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func withRequestTimeout(ctx context.Context, cfg *config.StravaConfig) (context.Context, context.CancelFunc) {
	if cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.RequestTimeout)
}

// tokenError maps an oauth2 failure to an UpstreamError.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		upstream := &core.UpstreamError{Endpoint: tokenEndpoint, Body: excerpt(re.Body)}
		if re.Response != nil {
			upstream.StatusCode = re.Response.StatusCode
		}
		return upstream
	}
	return &core.UpstreamError{Endpoint: tokenEndpoint, Err: err}
}
