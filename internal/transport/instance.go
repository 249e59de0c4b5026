package transport

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// loadInstanceID returns a per-host identity that survives restarts, stored
// under the user config directory. Any filesystem failure falls back to an
// ephemeral ID.
func loadInstanceID() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return uuid.NewString()
	}
	omlDir := filepath.Join(dir, "oneminutelogs")
	if err := os.MkdirAll(omlDir, 0o755); err != nil {
		return uuid.NewString()
	}
	path := filepath.Join(omlDir, "instance-id")
	if b, err := os.ReadFile(path); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s
		}
	}
	fresh := uuid.NewString()
	_ = os.WriteFile(path, []byte(fresh+"\n"), 0o644)
	return fresh
}
