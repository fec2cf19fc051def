package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	cryptoUsecase "github.com/allisson/connvault/internal/crypto/usecase"
	apperrors "github.com/allisson/connvault/internal/errors"
	"github.com/allisson/connvault/internal/validation"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

// ErrVaultExists indicates init was run against an existing vault.
var ErrVaultExists = apperrors.Wrap(apperrors.ErrConflict, "vault already initialized")

// UnlockOptions controls how the master password is obtained.
type UnlockOptions struct {
	// PasswordPolicy applies to a password chosen for a new vault.
	PasswordPolicy validation.PasswordStrength
	// Attempts is the number of password prompts before giving up. Values
	// below one mean one.
	Attempts int
}

// UnlockVault opens the vault, creating it on first use.
//
// The password comes from VAULT_PASSWORD when set, otherwise from a prompt. A new
// vault's password is entered twice and checked against the length policy. A
// rejected password is prompted for again up to opts.Attempts times; throttling
// and corrupted files end the loop immediately.
func UnlockVault(
	ctx context.Context,
	opener vaultUsecase.Opener,
	keyStore cryptoUsecase.KeyStoreUseCase,
	logger *slog.Logger,
	io IOTuple,
	opts UnlockOptions,
) (vaultUsecase.VaultUseCase, error) {
	exists, err := keyStore.Exists(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		password, err := newMasterPassword(io, opts.PasswordPolicy, true, "Choose a master password: ")
		if err != nil {
			return nil, err
		}
		vault, err := opener.Open(ctx, password)
		if err != nil {
			return nil, err
		}
		_, _ = fmt.Fprintf(io.Writer, "Created a new vault (%s)\n", vault.VaultID())
		return vault, nil
	}

	if password, ok := os.LookupEnv(PasswordEnv); ok {
		vault, _, err := opener.Probe(ctx, password)
		return vault, err
	}

	attempts := max(opts.Attempts, 1)
	for attempt := 1; ; attempt++ {
		password, err := promptSecret(io, "Master password: ")
		if err != nil {
			return nil, err
		}

		vault, outcome, err := opener.Probe(ctx, password)
		if outcome == vaultDomain.LoadOK {
			return vault, nil
		}

		retry := outcome == vaultDomain.LoadAuthFailed &&
			!apperrors.Is(err, apperrors.ErrLocked) &&
			attempt < attempts
		if !retry {
			return nil, err
		}

		logger.Warn("master password rejected", slog.Int("attempt", attempt))
		_, _ = fmt.Fprintln(io.Writer, "Incorrect master password, try again.")
	}
}

// RunInit creates a vault. It fails when one already exists.
func RunInit(
	ctx context.Context,
	opener vaultUsecase.Opener,
	keyStore cryptoUsecase.KeyStoreUseCase,
	logger *slog.Logger,
	io IOTuple,
	policy validation.PasswordStrength,
) error {
	exists, err := keyStore.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrVaultExists
	}

	vault, err := UnlockVault(ctx, opener, keyStore, logger, io, UnlockOptions{PasswordPolicy: policy})
	if err != nil {
		return err
	}
	defer func() {
		_ = vault.Close()
	}()

	logger.Info("vault initialized", slog.String("vault_id", vault.VaultID().String()))
	return nil
}

// RunChangePassword re-wraps the vault key under a new master password. The
// current password may come from VAULT_PASSWORD; the new one is always prompted.
func RunChangePassword(
	ctx context.Context,
	keyStore cryptoUsecase.KeyStoreUseCase,
	logger *slog.Logger,
	io IOTuple,
	policy validation.PasswordStrength,
) error {
	exists, err := keyStore.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return cryptoDomain.ErrVaultNotInitialized
	}

	current, ok := os.LookupEnv(PasswordEnv)
	if !ok {
		current, err = promptSecret(io, "Current master password: ")
		if err != nil {
			return err
		}
	}

	next, err := newMasterPassword(io, policy, false, "New master password: ")
	if err != nil {
		return err
	}

	if err := keyStore.ChangePassword(ctx, current, next); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(io.Writer, "Master password changed.")
	logger.Info("master password changed")
	return nil
}

// newMasterPassword obtains a password for a new key and checks the policy.
// With useEnv, VAULT_PASSWORD is accepted without confirmation.
func newMasterPassword(io IOTuple, policy validation.PasswordStrength, useEnv bool, label string) (string, error) {
	if useEnv {
		if password, ok := os.LookupEnv(PasswordEnv); ok {
			if err := validation.MasterPassword(password, nil, policy); err != nil {
				return "", err
			}
			return password, nil
		}
	}

	password, err := promptSecret(io, label)
	if err != nil {
		return "", err
	}
	confirm, err := promptSecret(io, "Confirm master password: ")
	if err != nil {
		return "", err
	}

	if err := validation.MasterPassword(password, &confirm, policy); err != nil {
		return "", err
	}
	return password, nil
}
