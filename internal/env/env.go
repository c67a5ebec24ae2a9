// Package env provides environment variable loading from .env files.
// The indexer that feeds the blocks table keeps its PostgreSQL credentials
// in a .env file; the dashboard reads the same file so both tools share one
// set of connection settings.
package env

import (
	"os"
	"strings"
)

// Load reads environment variables from the .env file at path and sets them
// using os.Setenv. An empty path defaults to ".env" in the current working
// directory.
//
// File format:
//   - Each line contains KEY=VALUE
//   - Empty lines are ignored
//   - Lines starting with # are treated as comments
//   - Values can be quoted with single or double quotes (quotes are stripped)
//
// Examples:
//
//	POSTGRES_HOST=localhost
//	POSTGRES_PASSWORD="s3cret"
//	# This is a comment
//
// Behavior:
//   - If the file doesn't exist, Load silently returns (no error)
//   - This allows the tool to work without .env files (using system env vars)
func Load(path string) {
	if path == "" {
		path = ".env"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// File not found - this is OK, system environment variables
		// can still be used.
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first "=" to handle values that might contain "="
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove surrounding quotes (single or double) if present
		value = strings.Trim(value, `"'`)

		os.Setenv(key, value)
	}
}
