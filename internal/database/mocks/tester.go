// Package mocks provides mock implementations of the connection tester for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/connvault/internal/database"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// MockTester is a mock implementation of database.Tester for testing.
type MockTester struct {
	mock.Mock
}

// Test mocks the Test method of database.Tester.
func (m *MockTester) Test(ctx context.Context, profile vaultDomain.ConnectionProfile) (database.Result, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(database.Result), args.Error(1)
}

var _ database.Tester = (*MockTester)(nil)
