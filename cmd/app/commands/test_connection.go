package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/connvault/internal/database"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

// RunTestConnection connects to the database of the profile at index.
func RunTestConnection(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	tester database.Tester,
	logger *slog.Logger,
	writer io.Writer,
	index int,
	format string,
) error {
	profile, ok := vault.Get(ctx, index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoProfile, index)
	}

	result, err := tester.Test(ctx, *profile)
	if err != nil {
		logger.Info("connection test failed", slog.Int("index", index))
		return err
	}

	if format == "json" {
		return outputJSON(writer, map[string]any{
			"index":          index,
			"type":           result.Kind,
			"target":         result.Target,
			"server_version": result.ServerVersion,
			"latency_ms":     result.Latency.Milliseconds(),
		})
	}

	_, _ = fmt.Fprintf(writer, "Connection OK: %s (version %s, %s)\n",
		result.Target, result.ServerVersion, result.Latency.Round(time.Millisecond))
	return nil
}
