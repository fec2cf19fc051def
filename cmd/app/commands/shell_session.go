package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/connvault/internal/app"
	"github.com/allisson/connvault/internal/backup"
)

const (
	shellPasswordAttempts = 3
	shutdownTimeout       = 5 * time.Second
)

// RunShellSession unlocks the vault and runs the interactive shell. When metrics
// are enabled the metrics server runs alongside; its /ready endpoint reports
// whether the vault is unlocked.
func RunShellSession(ctx context.Context, container *app.Container, streams IOTuple, version string) error {
	cfg := container.Config()
	logger := container.Logger()
	logger.Info("starting shell", slog.String("version", version))

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var unlocked atomic.Bool

	var server Server
	if cfg.MetricsEnabled {
		gin.SetMode(cfg.GetGinMode())
		metricsServer, err := container.MetricsServer(unlocked.Load)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
		server = metricsServer
	}

	return RunWithServer(ctx, server, logger, shutdownTimeout, func(ctx context.Context) error {
		opener, err := container.Opener()
		if err != nil {
			return err
		}
		keyStore, err := container.KeyStoreUseCase()
		if err != nil {
			return err
		}

		vault, err := UnlockVault(ctx, opener, keyStore, logger, streams, UnlockOptions{
			PasswordPolicy: cfg.PasswordPolicy(),
			Attempts:          shellPasswordAttempts,
		})
		if err != nil {
			return err
		}
		unlocked.Store(true)
		defer func() {
			unlocked.Store(false)
			_ = vault.Close()
		}()

		// Backups are optional in the shell; a bad BACKUP_URL only disables them.
		var backups backup.UseCase
		if b, err := container.BackupUseCase(ctx); err != nil {
			logger.Warn("backups unavailable", slog.Any("error", err))
		} else {
			backups = b
		}

		return RunShell(ctx, vault, container.ConnectionTester(), backups, logger, streams)
	})
}
