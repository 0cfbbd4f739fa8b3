package script

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultScript is the configuration written by "cream-browser init".
//
//go:embed default.js
var DefaultScript string

// ErrExists is returned by WriteDefault when the file is already there.
var ErrExists = errors.New("configuration already exists")

// WriteDefault writes DefaultScript to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultScript), 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}
