package core

import "context"

type CredentialRefresher interface {
	AccessToken(ctx context.Context) (string, error)
}

type ActivityFetcher interface {
	Fetch(ctx context.Context, accessToken string, req FetchRequest) (*FetchResult, error)
}

type ActivityService interface {
	GetActivities(ctx context.Context, req FetchRequest) (*FetchResult, error)
}
