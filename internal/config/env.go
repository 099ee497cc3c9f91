package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv loads .env/.env.local into the process environment. Existing
// variables are never overridden, so CI and shell exports always win. A
// missing file is the normal case, not an error.
func loadDotEnv() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
		return
	}
}
