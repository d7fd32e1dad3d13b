package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/careersync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(string)
		wantErr   string
	}{
		{
			name:      "fresh initialization",
			setupFunc: func(dir string) {},
		},
		{
			name:  "force initialization overwrites existing files",
			force: true,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, "careersync.yml"), []byte("old content"), 0644)
				os.WriteFile(filepath.Join(dir, ".env.example"), []byte("old"), 0644)
			},
		},
		{
			name: "existing config without force fails",
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, "careersync.yml"), []byte("old content"), 0644)
			},
			wantErr: "project already initialized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(dir)

			err := Initialize(dir, tt.force)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			cfg, err := config.Load(filepath.Join(dir, "careersync.yml"))
			require.NoError(t, err)
			assert.Equal(t, config.BackendFile, cfg.Backend.Type)
			assert.Equal(t, ".careersync", cfg.Backend.Path)
			assert.Equal(t, 3, cfg.Sync.MaxFailures)

			env, err := os.ReadFile(filepath.Join(dir, ".env.example"))
			require.NoError(t, err)
			assert.Contains(t, string(env), "CAREERSYNC_BACKEND")
		})
	}
}

func TestInitialize_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "project")
	require.NoError(t, Initialize(dir, false))
	assert.FileExists(t, filepath.Join(dir, "careersync.yml"))
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckExisting(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "careersync.yml"), []byte("x"), 0644))
	err := CheckExisting(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "careersync init --force")
}
