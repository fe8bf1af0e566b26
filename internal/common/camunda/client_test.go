package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"shopsense-voice/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func testClient(maxRetries int) *Client {
	return &Client{config: withDefaults(&ClientConfig{
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	})}
}

// ==========================
// ExecuteWithRetry
// ==========================

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := testClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	c := testClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("invalid argument")
	}, "complete-job")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeExternalService, stdErr.Code)
	assert.Contains(t, stdErr.Details, "complete-job")
}

func TestExecuteWithRetry_ExhaustedTimeoutMapsToTimeoutError(t *testing.T) {
	c := testClient(2)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("context deadline exceeded")
	}, "topology")

	assert.Equal(t, 3, calls)
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeTimeout, stdErr.Code)
	assert.Contains(t, stdErr.Details, "after 3 attempts")
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := &Client{config: withDefaults(&ClientConfig{
		RetryConfig: &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour},
	})}
	ctx, cancel := context.WithCancel(context.Background())

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		cancel()
		return nil, stderrors.New("unavailable")
	}, "topology")

	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Helpers
// ==========================

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, backoff(rc, 0))
	assert.Equal(t, 200*time.Millisecond, backoff(rc, 1))
	assert.Equal(t, 300*time.Millisecond, backoff(rc, 2))
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"connection refused", true},
		{"rpc error: code = Unavailable", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"NOT_FOUND: job 12 not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestIsRetryableZeebeError_GRPCStatus(t *testing.T) {
	tests := []struct {
		code codes.Code
		want bool
	}{
		{codes.Unavailable, true},
		{codes.DeadlineExceeded, true},
		{codes.ResourceExhausted, true},
		{codes.NotFound, false},
		{codes.InvalidArgument, false},
		{codes.Unauthenticated, false},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := status.Error(tt.code, "broker said no")
			assert.Equal(t, tt.want, isRetryableZeebeError(err))
		})
	}
}

func TestMapZeebeError_StatusDeadlineIsTimeout(t *testing.T) {
	c := testClient(0)

	err := c.mapZeebeError(status.Error(codes.DeadlineExceeded, "slow broker"), "activate-jobs", 0)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeTimeout, stdErr.Code)
	assert.NotContains(t, stdErr.Details, "attempts")
}

func TestWithDefaults(t *testing.T) {
	original := &ClientConfig{GatewayAddress: "zeebe:26500"}
	c := withDefaults(original)

	assert.Same(t, DefaultRetryConfig, c.RetryConfig)
	assert.Equal(t, 10*time.Second, c.ConnectionTimeout)
	assert.Nil(t, original.RetryConfig, "caller config must not be mutated")
}
