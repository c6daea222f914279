package config

import "os"

const defaultEnvFile = ".env"

// GetEnvFilePath returns the dotenv file loaded at startup and written by the
// auth helper.
func GetEnvFilePath() string {
	if path := os.Getenv("STRAVA_MCP_ENV_FILE"); path != "" {
		return path
	}
	return defaultEnvFile
}
