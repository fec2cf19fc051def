// Package mocks provides mock implementations of the backup use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/connvault/internal/backup"
)

// MockBackupUseCase is a mock implementation of backup.UseCase for testing.
type MockBackupUseCase struct {
	mock.Mock
}

// Create mocks the Create method of backup.UseCase.
func (m *MockBackupUseCase) Create(ctx context.Context, vault backup.SnapshotSource) (string, error) {
	args := m.Called(ctx, vault)
	return args.String(0), args.Error(1)
}

// List mocks the List method of backup.UseCase.
func (m *MockBackupUseCase) List(ctx context.Context) ([]backup.Backup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backup.Backup), args.Error(1)
}

// Restore mocks the Restore method of backup.UseCase.
func (m *MockBackupUseCase) Restore(ctx context.Context, vault backup.SnapshotSource, name string) error {
	args := m.Called(ctx, vault, name)
	return args.Error(0)
}

// Close mocks the Close method of backup.UseCase.
func (m *MockBackupUseCase) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ backup.UseCase = (*MockBackupUseCase)(nil)
