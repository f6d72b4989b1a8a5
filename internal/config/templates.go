package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[journal]
# SQLite database used by the sqlite backend.
# Relative paths are resolved against this directory.
db_path = "journal.db"

[storage]
# Where trades, playbooks, the profile and achievement state live:
# "sqlite" (db_path above), "file" (one JSON file), "redis", or
# "memory" (nothing survives the process)
backend = "sqlite"
file_path = "storage.json"
redis_url = "redis://localhost:6379/0"
prefix = "journal:"

[profile]
name = "Trader"
email = ""

[notifications]
enabled = true
# Notification level: all, achievements_only, errors_only
level = "all"

[notifications.terminal]
enabled = true
# Ring the terminal bell on unlocks and level ups
bell = false

[notifications.webhook]
enabled = false
url = ""

[logging]
# debug, info, warn, error
level = "info"
console = false
file = true
path = "logs/journal.log"
max_size_mb = 20
max_backups = 5
max_age_days = 30

[server]
addr = ":8080"
# gin mode: debug, release, test
mode = "release"

[ui]
color_enabled = true
date_format = "02-Jan-2006 15:04"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

// ConfigPath returns the config file location inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}
