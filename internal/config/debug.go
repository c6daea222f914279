package config

import "os"

func IsDebug() bool {
	return os.Getenv("STRAVA_MCP_DEBUG") == "1"
}
