// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the publishing credentials from a directory of
// plain-text files. Each file holds one secret: the filename is the key and
// the trimmed contents are the value. Keys: platform-username,
// platform-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets/"

// Key files understood by Apply.
const (
	KeyUsername = "platform-username"
	KeyPassword = "platform-password"
)

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty map. Unreadable files are logged and
// skipped.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Apply fills the credentials of cfg from s. Values already set, from the
// config file or the environment, win.
func Apply(cfg *types.PublishConfig, s map[string]string) {
	if cfg.Username == "" {
		cfg.Username = s[KeyUsername]
	}
	if cfg.Password == "" {
		cfg.Password = s[KeyPassword]
	}
}
