// Package mocks provides mock implementations of the key store use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// MockKeyStoreUseCase is a mock implementation of KeyStoreUseCase for testing.
type MockKeyStoreUseCase struct {
	mock.Mock
}

// Exists mocks the Exists method of KeyStoreUseCase.
func (m *MockKeyStoreUseCase) Exists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// Unlock mocks the Unlock method of KeyStoreUseCase.
func (m *MockKeyStoreUseCase) Unlock(ctx context.Context, password string) (*cryptoDomain.Keyring, error) {
	args := m.Called(ctx, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Keyring), args.Error(1)
}

// ChangePassword mocks the ChangePassword method of KeyStoreUseCase.
func (m *MockKeyStoreUseCase) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	args := m.Called(ctx, oldPassword, newPassword)
	return args.Error(0)
}
