package app

import (
	"context"
	"fmt"

	"github.com/allisson/connvault/internal/backup"
	"github.com/allisson/connvault/internal/database"
	vaultRepository "github.com/allisson/connvault/internal/vault/repository"
	vaultService "github.com/allisson/connvault/internal/vault/service"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

// FileRepository returns the vault directory repository.
// It creates the directory with mode 0700 on first access.
func (c *Container) FileRepository() (*vaultRepository.FileRepository, error) {
	var err error
	c.fileRepositoryInit.Do(func() {
		c.fileRepository, err = vaultRepository.NewFileRepository(c.config.VaultDir)
		if err != nil {
			c.setInitError("fileRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("fileRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.fileRepository, nil
}

// BlobCodec returns the profile blob codec.
func (c *Container) BlobCodec() vaultService.BlobCodec {
	c.blobCodecInit.Do(func() {
		c.blobCodec = vaultService.NewBlobCodec(c.AEADManager())
	})
	return c.blobCodec
}

// Opener returns the vault opener.
func (c *Container) Opener() (vaultUsecase.Opener, error) {
	var err error
	c.openerInit.Do(func() {
		c.opener, err = c.initOpener()
		if err != nil {
			c.setInitError("opener", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("opener"); storedErr != nil {
		return nil, storedErr
	}
	return c.opener, nil
}

// BackupUseCase returns the backup use case.
func (c *Container) BackupUseCase(ctx context.Context) (backup.UseCase, error) {
	var err error
	c.backupUseCaseInit.Do(func() {
		c.backupUseCase, err = c.initBackupUseCase(ctx)
		if err != nil {
			c.setInitError("backupUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("backupUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.backupUseCase, nil
}

// ConnectionTester returns the profile connection tester.
func (c *Container) ConnectionTester() database.Tester {
	c.testerInit.Do(func() {
		c.tester = database.NewTester(database.Config{
			Timeout:         c.config.ConnectionTimeout,
			ConnMaxLifetime: c.config.ConnectionTimeout,
		}, c.Logger())
	})
	return c.tester
}

// initOpener creates the vault opener with all its dependencies.
func (c *Container) initOpener() (vaultUsecase.Opener, error) {
	keyStore, err := c.KeyStoreUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store use case for opener: %w", err)
	}

	repo, err := c.FileRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get file repository for opener: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for opener: %w", err)
	}

	return vaultUsecase.NewOpener(keyStore, repo, c.BlobCodec(), businessMetrics, c.Logger()), nil
}

// initBackupUseCase opens the backup bucket and creates the backup use case.
func (c *Container) initBackupUseCase(ctx context.Context) (backup.UseCase, error) {
	bucket, err := backup.OpenBucket(ctx, c.config.BackupLocation())
	if err != nil {
		return nil, err
	}

	var useCase backup.UseCase = backup.NewStore(bucket, c.Logger())

	// Wrap with metrics if enabled
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		_ = useCase.Close()
		return nil, fmt.Errorf("failed to get business metrics for backup use case: %w", err)
	}
	if businessMetrics != nil {
		useCase = backup.NewUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}
