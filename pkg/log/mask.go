package log

import "strings"

const maskVisible = 4

// Mask hides a secret for logging, keeping only its first few characters.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= maskVisible*2 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:maskVisible] + strings.Repeat("*", 8)
}
