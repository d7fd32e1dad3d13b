package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/careersync/internal/config"
)

// CheckExisting returns an error if dir already holds careersync.yml
func CheckExisting(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, config.DefaultPath)); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'careersync init --force' to reinitialize (this will overwrite existing configuration)", config.DefaultPath)
	}
	return nil
}
