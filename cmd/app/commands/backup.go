package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/allisson/connvault/internal/backup"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

// RunBackup stores a timestamped copy of the current profiles.
func RunBackup(
	ctx context.Context,
	backups backup.UseCase,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	name, err := backups.Create(ctx, vault)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Backup created: %s\n", name)
	logger.Info("backup created from cli", slog.String("name", name))
	return nil
}

// RunBackups lists stored backups, newest first.
func RunBackups(
	ctx context.Context,
	backups backup.UseCase,
	writer io.Writer,
	format string,
) error {
	list, err := backups.List(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		type backupOutput struct {
			Name    string    `json:"name"`
			Size    int64     `json:"size"`
			ModTime time.Time `json:"mod_time"`
		}
		out := make([]backupOutput, 0, len(list))
		for _, b := range list {
			out = append(out, backupOutput{Name: b.Name, Size: b.Size, ModTime: b.ModTime})
		}
		return outputJSON(writer, out)
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintln(writer, "No backups found.")
		return nil
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
	for _, b := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Name, b.Size, b.ModTime.Format(time.DateTime))
	}
	_ = tw.Flush()
	return nil
}

// RunRestore replaces the current profiles with a backup.
func RunRestore(
	ctx context.Context,
	backups backup.UseCase,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
) error {
	if err := backups.Restore(ctx, vault, name); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Restored backup %s\n", name)
	logger.Info("backup restored from cli", slog.String("name", name))
	return nil
}
