package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/connvault/internal/backup"
	"github.com/allisson/connvault/internal/database"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

const shellHelp = `Commands:
  list                 list saved connections
  show <index> [-r]    show a connection, -r reveals the password
  remove <index>       remove a connection from the last list
  test <index>         test a connection
  backup               create a backup
  backups              list backups
  restore <name>       restore a backup
  help                 show this help
  quit                 leave the shell`

// Server is a background server that runs for the length of a shell session.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunShell runs an interactive session on an unlocked vault until quit, end of
// input or ctx is cancelled. Command errors are printed and the session goes on.
//
// remove addresses indices of the last list output; if the list has changed
// shape since then the removal is refused.
func RunShell(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	tester database.Tester,
	backups backup.UseCase,
	logger *slog.Logger,
	streams IOTuple,
) error {
	listing, err := vault.Snapshot(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(streams.Writer, "Vault %s unlocked, %d connections. Type help for commands.\n",
		vault.VaultID(), len(listing.Profiles))

	for ctx.Err() == nil {
		line, err := prompt(streams, "connvault> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintln(streams.Writer)
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		quit, err := runShellCommand(ctx, vault, tester, backups, logger, streams.Writer, fields, &listing)
		if err != nil {
			logger.Debug("shell command failed", slog.String("command", fields[0]), slog.Any("error", err))
			_, _ = fmt.Fprintf(streams.Writer, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return nil
}

func runShellCommand(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	tester database.Tester,
	backups backup.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	fields []string,
	listing *vaultDomain.Listing,
) (bool, error) {
	switch fields[0] {
	case "quit", "exit":
		return true, nil

	case "help":
		_, _ = fmt.Fprintln(writer, shellHelp)

	case "list", "ls":
		current, err := vault.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		*listing = current
		if len(current.Profiles) == 0 {
			_, _ = fmt.Fprintln(writer, "No connections saved.")
			return false, nil
		}
		outputProfilesText(writer, current.Profiles)

	case "show":
		index, err := indexArg(fields)
		if err != nil {
			return false, err
		}
		reveal := len(fields) > 2 && (fields[2] == "-r" || fields[2] == "--reveal")
		return false, RunShow(ctx, vault, logger, writer, index, reveal, "text")

	case "remove", "rm":
		index, err := indexArg(fields)
		if err != nil {
			return false, err
		}
		removed, ok := listing.Get(index)
		if !ok {
			return false, fmt.Errorf("%w: %d", ErrNoProfile, index)
		}
		if err := vault.RemoveAt(ctx, listing.Generation, index); err != nil {
			if errors.Is(err, vaultDomain.ErrStaleListing) {
				return false, errors.New("connections changed since the last list, run list again")
			}
			return false, err
		}
		_, _ = fmt.Fprintf(writer, "Removed profile %d: %s\n", index, removed.Label())
		current, err := vault.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		*listing = current

	case "test":
		index, err := indexArg(fields)
		if err != nil {
			return false, err
		}
		return false, RunTestConnection(ctx, vault, tester, logger, writer, index, "text")

	case "backup":
		if backups == nil {
			return false, errors.New("backups are not available")
		}
		return false, RunBackup(ctx, backups, vault, logger, writer)

	case "backups":
		if backups == nil {
			return false, errors.New("backups are not available")
		}
		return false, RunBackups(ctx, backups, writer, "text")

	case "restore":
		if backups == nil {
			return false, errors.New("backups are not available")
		}
		if len(fields) < 2 {
			return false, errors.New("usage: restore <name>")
		}
		if err := RunRestore(ctx, backups, vault, logger, writer, fields[1]); err != nil {
			return false, err
		}
		current, err := vault.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		*listing = current

	default:
		return false, fmt.Errorf("unknown command %q, type help", fields[0])
	}

	return false, nil
}

func indexArg(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("usage: %s <index>", fields[0])
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", fields[1])
	}
	return index, nil
}

// RunWithServer runs session while server serves in the background, then shuts
// the server down. A nil server just runs session.
func RunWithServer(
	ctx context.Context,
	server Server,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
	session func(ctx context.Context) error,
) error {
	if server == nil {
		return session(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			logger.Error("metrics server error", slog.Any("error", err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		sessionErr := session(gctx)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Join(sessionErr, fmt.Errorf("metrics server shutdown: %w", err))
		}
		return sessionErr
	})

	return g.Wait()
}
