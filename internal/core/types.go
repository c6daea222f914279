package core

import "encoding/json"

const (
	AppName          = "strava-mcp-server"
	AppVersion       = "0.1.0"
	AppUserAgent     = "StravaMCP/0.1"
	AppRepositoryURL = "https://github.com/sandevgo/stravamcp"
)

// MaxPageSize is the largest per_page value the activities endpoint accepts.
const MaxPageSize = 200

// DefaultActivityCount is used when the caller does not ask for a count.
const DefaultActivityCount = 10

// Activity is one activity record exactly as Strava returned it.
type Activity = json.RawMessage

// FetchRequest selects how many activities to fetch. All takes precedence
// over Count.
type FetchRequest struct {
	Count int
	All   bool
}

type FetchResult struct {
	Activities []Activity
	// Requested is the count asked for; zero for an All request.
	Requested int
	// Warning is set when fewer activities exist than were requested.
	Warning *PartialResultWarning
}
