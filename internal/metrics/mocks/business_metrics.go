// Package mocks provides mock implementations of the metrics recorders for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/connvault/internal/metrics"
)

// MockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type MockBusinessMetrics struct {
	mock.Mock
}

// RecordOperation mocks the RecordOperation method of metrics.BusinessMetrics.
func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

// RecordDuration mocks the RecordDuration method of metrics.BusinessMetrics.
func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// RecordUnlock mocks the RecordUnlock method of metrics.BusinessMetrics.
func (m *MockBusinessMetrics) RecordUnlock(ctx context.Context, outcome string) {
	m.Called(ctx, outcome)
}

// RecordProfiles mocks the RecordProfiles method of metrics.BusinessMetrics.
func (m *MockBusinessMetrics) RecordProfiles(ctx context.Context, count int) {
	m.Called(ctx, count)
}

var _ metrics.BusinessMetrics = (*MockBusinessMetrics)(nil)
