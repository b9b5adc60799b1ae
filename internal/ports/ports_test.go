package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChecker implements HealthChecker for testing.
type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string {
	return s.name
}

func (s *stubChecker) Check(_ context.Context) error {
	return s.err
}

// blockingChecker waits for its context to end.
type blockingChecker struct {
	name string
}

func (b *blockingChecker) Name() string {
	return b.name
}

func (b *blockingChecker) Check(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNewHealthRegistry(t *testing.T) {
	registry := NewHealthRegistry()

	require.NotNil(t, registry)
	assert.Empty(t, registry.checkers)
	assert.Equal(t, DefaultCheckTimeout, registry.timeout)
}

func TestRegister(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(&stubChecker{name: "memory-store"}))

	err := registry.Register(&stubChecker{name: "memory-store"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "memory-store")
	assert.Len(t, registry.checkers, 1)
}

func TestCheckAll(t *testing.T) {
	tests := []struct {
		name           string
		checkers       []HealthChecker
		expectedStatus HealthStatus
		expectedChecks map[string]HealthStatus
	}{
		{
			name:           "no checkers is healthy",
			expectedStatus: HealthStatusHealthy,
			expectedChecks: map[string]HealthStatus{},
		},
		{
			name: "all healthy",
			checkers: []HealthChecker{
				&stubChecker{name: "postgres"},
				&stubChecker{name: "redis"},
			},
			expectedStatus: HealthStatusHealthy,
			expectedChecks: map[string]HealthStatus{
				"postgres": HealthStatusHealthy,
				"redis":    HealthStatusHealthy,
			},
		},
		{
			name: "one failure makes the whole result unhealthy",
			checkers: []HealthChecker{
				&stubChecker{name: "postgres", err: errors.New("connection refused")},
				&stubChecker{name: "redis"},
			},
			expectedStatus: HealthStatusUnhealthy,
			expectedChecks: map[string]HealthStatus{
				"postgres": HealthStatusUnhealthy,
				"redis":    HealthStatusHealthy,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(context.Background())

			require.NotNil(t, result)
			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.False(t, result.Timestamp.IsZero())
			require.Len(t, result.Checks, len(tt.expectedChecks))

			for name, status := range tt.expectedChecks {
				assert.Equal(t, status, result.Checks[name].Status, name)
			}
		})
	}
}

func TestCheckAll_RecordsFailureMessage(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(&stubChecker{name: "postgres", err: errors.New("connection refused")}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, "connection refused", result.Checks["postgres"].Message)
}

func TestCheckAll_PerCheckTimeout(t *testing.T) {
	registry := NewHealthRegistryWithTimeout(20 * time.Millisecond)
	require.NoError(t, registry.Register(&blockingChecker{name: "slow-store"}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow-store"].Message, "deadline exceeded")
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistryWithTimeout(0)
	require.NoError(t, registry.Register(&blockingChecker{name: "slow-store"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow-store"].Message, "context canceled")
}

func TestClocks(t *testing.T) {
	fixed := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, fixed, FixedClock(fixed).Now())
	assert.WithinDuration(t, time.Now(), SystemClock.Now(), time.Second)
}

func TestNoopBookMetrics(t *testing.T) {
	var m BookMetrics = NoopBookMetrics{}

	assert.NotPanics(t, func() {
		m.PublishDateNormalized(OutcomeRejected)
		m.BookCreated()
		m.BooksQueried(false)
	})
}
