// Package mocks provides mock implementations of the vault use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// MockVaultUseCase is a mock implementation of VaultUseCase for testing.
type MockVaultUseCase struct {
	mock.Mock
}

// VaultID mocks the VaultID method of VaultUseCase.
func (m *MockVaultUseCase) VaultID() uuid.UUID {
	args := m.Called()
	return args.Get(0).(uuid.UUID)
}

// List mocks the List method of VaultUseCase.
func (m *MockVaultUseCase) List(ctx context.Context) ([]vaultDomain.ConnectionProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vaultDomain.ConnectionProfile), args.Error(1)
}

// Snapshot mocks the Snapshot method of VaultUseCase.
func (m *MockVaultUseCase) Snapshot(ctx context.Context) (vaultDomain.Listing, error) {
	args := m.Called(ctx)
	return args.Get(0).(vaultDomain.Listing), args.Error(1)
}

// Get mocks the Get method of VaultUseCase.
func (m *MockVaultUseCase) Get(ctx context.Context, index int) (*vaultDomain.ConnectionProfile, bool) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*vaultDomain.ConnectionProfile), args.Bool(1)
}

// Add mocks the Add method of VaultUseCase.
func (m *MockVaultUseCase) Add(ctx context.Context, profile vaultDomain.ConnectionProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// Update mocks the Update method of VaultUseCase.
func (m *MockVaultUseCase) Update(ctx context.Context, index int, profile vaultDomain.ConnectionProfile) error {
	args := m.Called(ctx, index, profile)
	return args.Error(0)
}

// UpdateAt mocks the UpdateAt method of VaultUseCase.
func (m *MockVaultUseCase) UpdateAt(
	ctx context.Context,
	generation uint64,
	index int,
	profile vaultDomain.ConnectionProfile,
) error {
	args := m.Called(ctx, generation, index, profile)
	return args.Error(0)
}

// Remove mocks the Remove method of VaultUseCase.
func (m *MockVaultUseCase) Remove(ctx context.Context, index int) error {
	args := m.Called(ctx, index)
	return args.Error(0)
}

// RemoveAt mocks the RemoveAt method of VaultUseCase.
func (m *MockVaultUseCase) RemoveAt(ctx context.Context, generation uint64, index int) error {
	args := m.Called(ctx, generation, index)
	return args.Error(0)
}

// ReplaceAll mocks the ReplaceAll method of VaultUseCase.
func (m *MockVaultUseCase) ReplaceAll(ctx context.Context, profiles []vaultDomain.ConnectionProfile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

// ExportSnapshot mocks the ExportSnapshot method of VaultUseCase.
func (m *MockVaultUseCase) ExportSnapshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ImportSnapshot mocks the ImportSnapshot method of VaultUseCase.
func (m *MockVaultUseCase) ImportSnapshot(ctx context.Context, blob []byte) error {
	args := m.Called(ctx, blob)
	return args.Error(0)
}

// ExportPlain mocks the ExportPlain method of VaultUseCase.
func (m *MockVaultUseCase) ExportPlain(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ImportPlain mocks the ImportPlain method of VaultUseCase.
func (m *MockVaultUseCase) ImportPlain(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// Close mocks the Close method of VaultUseCase.
func (m *MockVaultUseCase) Close() error {
	args := m.Called()
	return args.Error(0)
}
