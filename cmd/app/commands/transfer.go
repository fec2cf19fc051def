package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

// RunExport writes the profiles to outPath with mode 0600. By default the file
// is an encrypted snapshot that only this vault can import; plain writes
// unencrypted JSON.
func RunExport(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	outPath string,
	plain bool,
) error {
	var (
		data []byte
		err  error
	)
	if plain {
		data, err = vault.ExportPlain(ctx)
	} else {
		data, err = vault.ExportSnapshot(ctx)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	if plain {
		_, _ = fmt.Fprintf(writer, "Exported profiles as plain JSON to %s\n", outPath)
		_, _ = fmt.Fprintln(writer, "Warning: the file contains unencrypted passwords.")
	} else {
		_, _ = fmt.Fprintf(writer, "Exported encrypted snapshot to %s\n", outPath)
	}

	logger.Info("profiles exported", slog.Bool("plain", plain), slog.Int("bytes", len(data)))
	return nil
}

// RunImport replaces the profiles with the contents of inPath.
func RunImport(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	inPath string,
	plain bool,
) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	if plain {
		err = vault.ImportPlain(ctx, data)
	} else {
		err = vault.ImportSnapshot(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}

	profiles, err := vault.List(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(writer, "Imported %d profiles from %s\n", len(profiles), inPath)
	logger.Info("profiles imported", slog.Bool("plain", plain), slog.Int("count", len(profiles)))
	return nil
}
