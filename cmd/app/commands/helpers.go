// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/allisson/connvault/internal/app"
	apperrors "github.com/allisson/connvault/internal/errors"
)

// PasswordEnv names the environment variable that supplies the master password
// without prompting.
const PasswordEnv = "VAULT_PASSWORD"

// ErrNoProfile indicates an index that does not address a stored profile.
var ErrNoProfile = apperrors.Wrap(apperrors.ErrNotFound, "no profile at index")

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// PromptIO reads from os.Stdin and writes prompts to os.Stderr, keeping stdout
// free for command output.
func PromptIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stderr,
	}
}

// CloseContainer closes all resources in the container and logs any errors.
func CloseContainer(container *app.Container) {
	if err := container.Shutdown(context.Background()); err != nil {
		container.Logger().Error("failed to shutdown container", slog.Any("error", err))
	}
}

// readLine reads one line without buffering past it, so prompts and secrets can
// share a reader.
func readLine(r io.Reader) (string, error) {
	var (
		sb  strings.Builder
		buf [1]byte
	)
	for {
		n, err := r.Read(buf[:])
		if n == 1 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			return "", err
		}
	}
}

// prompt writes label and reads one trimmed line.
func prompt(io IOTuple, label string) (string, error) {
	_, _ = fmt.Fprint(io.Writer, label)
	line, err := readLine(io.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret writes label and reads a secret. Echo is disabled when the
// reader is a terminal.
func promptSecret(io IOTuple, label string) (string, error) {
	_, _ = fmt.Fprint(io.Writer, label)

	if f, ok := io.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(io.Writer)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := readLine(io.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

// outputJSON writes v as indented JSON.
func outputJSON(writer io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
