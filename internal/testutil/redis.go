//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartRedis starts a throwaway Redis container and returns its redis:// URL.
// The container is terminated when the test finishes.
func StartRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start Redis container")

	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err, "Failed to get container host")

	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err, "Failed to get container port")

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

// Workspace is an isolated directory holding a careersync.yml for CLI tests.
type Workspace struct {
	Dir        string
	ConfigPath string
}

// NewWorkspace writes the given careersync.yml into a fresh temp directory.
func NewWorkspace(t *testing.T, configYML string) *Workspace {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "careersync.yml")
	require.NoError(t, os.WriteFile(path, []byte(configYML), 0644))

	return &Workspace{Dir: dir, ConfigPath: path}
}
