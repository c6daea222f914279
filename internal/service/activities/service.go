package activities

import (
	"context"

	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/pkg/log"
)

var _ core.ActivityService = (*Service)(nil)

// Service is the entry point behind the activity tools: it refreshes the
// access token and runs the paged fetch for one request.
type Service struct {
	refresher core.CredentialRefresher
	fetcher   core.ActivityFetcher
}

func NewService(refresher core.CredentialRefresher, fetcher core.ActivityFetcher) *Service {
	return &Service{
		refresher: refresher,
		fetcher:   fetcher,
	}
}

func (s *Service) GetActivities(ctx context.Context, req core.FetchRequest) (*core.FetchResult, error) {
	if !req.All && req.Count < 0 {
		return nil, &core.ConfigurationError{Field: "num_activities", Reason: "must not be negative"}
	}

	logger := log.FromCtx(ctx)

	token, err := s.refresher.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.fetcher.Fetch(ctx, token, req)
	if err != nil {
		return nil, err
	}

	if result.Warning != nil {
		logger.Warn().
			Int("fetched", result.Warning.Fetched).
			Int("requested", result.Warning.Requested).
			Msg(result.Warning.String())
	}

	logger.Info().
		Int("count", len(result.Activities)).
		Bool("all", req.All).
		Msg("activities fetched")

	return result, nil
}
