package tracing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	require.Equal(t, "req-1", RequestIDFromContext(ctx))
}

func TestRequestID_EmptyLeavesContext(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, ctx, ContextWithRequestID(ctx, ""))
	require.Empty(t, RequestIDFromContext(ctx))
	require.Empty(t, RequestIDFromContext(nil)) //nolint:staticcheck // nil context is handled
}

func TestNewRequestID_IsUUID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	require.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}
