// Package domain defines the connection profile model and the vault's error kinds.
package domain

import (
	"github.com/allisson/connvault/internal/errors"
)

// Vault-specific error definitions.
var (
	// ErrInvalidProfile indicates a profile failed validation. The wrapped message
	// names the offending fields.
	ErrInvalidProfile = errors.Wrap(errors.ErrInvalidInput, "invalid connection profile")

	// ErrTamperOrWrongKey indicates the profile blob could not be parsed, authenticated
	// or decoded. The cause is not disclosed.
	ErrTamperOrWrongKey = errors.Wrap(errors.ErrInvalidInput, "encrypted profile data is corrupted or was sealed with another key")

	// ErrIncompatibleVault indicates an imported snapshot belongs to another vault.
	ErrIncompatibleVault = errors.Wrap(errors.ErrConflict, "snapshot was not produced by this vault")

	// ErrStaleListing indicates positional indices from an older listing were used
	// after the list changed shape.
	ErrStaleListing = errors.Wrap(errors.ErrConflict, "listing is stale")

	// ErrVaultClosed indicates the vault was used after Close.
	ErrVaultClosed = errors.Wrap(errors.ErrConflict, "vault closed")

	// ErrInvalidPlainJSON indicates a plain JSON export could not be read as a profile list.
	ErrInvalidPlainJSON = errors.Wrap(errors.ErrInvalidInput, "plain JSON is not a list of connection profiles")
)
