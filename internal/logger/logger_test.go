package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndL(t *testing.T) {
	Init("development")
	require.NotNil(t, L())

	Init("production")
	require.NotNil(t, L())

	Sync()
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestIDFrom(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestIDFrom(ctx))

	assert.NotNil(t, FromCtx(ctx))
	assert.NotNil(t, FromCtx(context.Background()))
}
