package pgstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectValidatesArguments(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost/db", "")
	assert.ErrorContains(t, err, "workspace cannot be empty")

	_, err = Connect(context.Background(), "://not-a-url", "ws")
	assert.ErrorContains(t, err, "failed to create connection pool")
}
