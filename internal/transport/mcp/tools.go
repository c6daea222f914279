package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/xid"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/pkg/log"
)

const (
	ToolGetRecentActivities = "get_recent_activities"
	ToolGetActivities       = "get_activities"

	argNumActivities = "num_activities"
	argAllActivities = "all_activities"
)

// Notifier forwards a diagnostic message to the client that made the call.
type Notifier func(ctx context.Context, level mcpproto.LoggingLevel, message string)

type Definition struct {
	Tool    mcpproto.Tool
	Handler mcpserver.ToolHandlerFunc
}

// ActivityTools exposes the activity service as MCP tools.
type ActivityTools struct {
	svc    core.ActivityService
	notify Notifier
}

func NewActivityTools(svc core.ActivityService) *ActivityTools {
	return &ActivityTools{
		svc:    svc,
		notify: notifyClient,
	}
}

// WithNotifier replaces the client notification channel.
func (t *ActivityTools) WithNotifier(n Notifier) *ActivityTools {
	t.notify = n
	return t
}

func (t *ActivityTools) GetDefinitions() []Definition {
	return []Definition{
		{
			Tool: mcpproto.NewTool(ToolGetRecentActivities,
				mcpproto.WithDescription("Get the authenticated athlete's Strava activities, most recent first. "+
					"Returns up to num_activities records, or the complete history when all_activities is true."),
				mcpproto.WithNumber(argNumActivities,
					mcpproto.Description("Number of activities to return"),
					mcpproto.DefaultNumber(core.DefaultActivityCount),
					mcpproto.Min(0),
				),
				mcpproto.WithBoolean(argAllActivities,
					mcpproto.Description("Return every activity, ignoring num_activities"),
					mcpproto.DefaultBool(false),
				),
				mcpproto.WithReadOnlyHintAnnotation(true),
				mcpproto.WithOpenWorldHintAnnotation(true),
			),
			Handler: t.GetRecentActivities,
		},
		{
			Tool: mcpproto.NewTool(ToolGetActivities,
				mcpproto.WithDescription("Get the authenticated athlete's most recent Strava activities."),
				mcpproto.WithNumber(argNumActivities,
					mcpproto.Description("Number of activities to return"),
					mcpproto.DefaultNumber(core.DefaultActivityCount),
					mcpproto.Min(0),
				),
				mcpproto.WithReadOnlyHintAnnotation(true),
				mcpproto.WithOpenWorldHintAnnotation(true),
			),
			Handler: t.GetActivities,
		},
	}
}

func (t *ActivityTools) GetRecentActivities(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	fetchReq, err := parseFetchRequest(req.GetArguments(), true)
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return t.run(ctx, ToolGetRecentActivities, fetchReq), nil
}

func (t *ActivityTools) GetActivities(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	fetchReq, err := parseFetchRequest(req.GetArguments(), false)
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return t.run(ctx, ToolGetActivities, fetchReq), nil
}

func (t *ActivityTools) run(ctx context.Context, tool string, req core.FetchRequest) *mcpproto.CallToolResult {
	// every log line of this call carries the same call_id
	logger := log.FromCtx(ctx).With().
		Str("tool", tool).
		Str("call_id", xid.New().String()).
		Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Int("num_activities", req.Count).Bool("all_activities", req.All).Msg("executing tool")

	result, err := t.svc.GetActivities(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("tool execution failed")
		return mcpproto.NewToolResultError(err.Error())
	}

	if result.Warning != nil && t.notify != nil {
		t.notify(ctx, mcpproto.LoggingLevelWarning, result.Warning.String())
	}

	out, err := activitiesResult(result)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode activities")
		return mcpproto.NewToolResultError(err.Error())
	}
	return out
}

func activitiesResult(result *core.FetchResult) (*mcpproto.CallToolResult, error) {
	activities := result.Activities
	if activities == nil {
		activities = []core.Activity{}
	}

	text, err := json.Marshal(activities)
	if err != nil {
		return nil, fmt.Errorf("encode activities: %w", err)
	}

	structured := map[string]any{
		"activities": activities,
		"count":      len(activities),
	}
	if result.Warning != nil {
		structured["warning"] = result.Warning.String()
	}

	return mcpproto.NewToolResultStructured(structured, string(text)), nil
}

func parseFetchRequest(args map[string]any, allowAll bool) (core.FetchRequest, error) {
	req := core.FetchRequest{Count: core.DefaultActivityCount}

	if v, ok := args[argNumActivities]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return req, &core.ConfigurationError{Field: argNumActivities, Reason: err.Error()}
		}
		req.Count = n
	}

	if !allowAll {
		return req, nil
	}

	if v, ok := args[argAllActivities]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return req, &core.ConfigurationError{Field: argAllActivities, Reason: "must be a boolean"}
		}
		req.All = b
	}

	return req, nil
}

// maxArgInt bounds integer arguments; anything larger cannot be a count.
const maxArgInt = math.MaxInt32

func toInt(v any) (int, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.Abs(x) > maxArgInt {
			return 0, fmt.Errorf("must be an integer, got %v", x)
		}
		n = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %s", x)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %q", x)
		}
		n = i
	default:
		return 0, fmt.Errorf("must be an integer, got %T", v)
	}

	if n > maxArgInt || n < -maxArgInt {
		return 0, fmt.Errorf("must be an integer between %d and %d, got %d", -maxArgInt, maxArgInt, n)
	}
	return int(n), nil
}

// notifyClient sends an MCP log message to the session that issued the
// request. Calls outside a session are dropped.
func notifyClient(ctx context.Context, level mcpproto.LoggingLevel, message string) {
	s := mcpserver.ServerFromContext(ctx)
	if s == nil {
		return
	}

	err := s.SendNotificationToClient(ctx, "notifications/message", map[string]any{
		"level":  level,
		"logger": core.AppName,
		"data":   message,
	})
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("failed to notify client")
	}
}
