package types

import (
	"os"
	"strings"
)

// ContextUserKey is where the auth middleware stores the authenticated user.
const ContextUserKey = "user"

// AllowedOrigins is the CORS allow-list: local dev frontends plus whatever
// ALLOWED_ORIGINS (comma separated) adds at deploy time.
var AllowedOrigins = buildOrigins(os.Getenv("ALLOWED_ORIGINS"))

func buildOrigins(extra string) []string {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:4173",
	}

	for _, origin := range strings.Split(extra, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
