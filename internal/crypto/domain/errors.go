package domain

import (
	"github.com/allisson/connvault/internal/errors"
)

// Cryptographic and key-store error definitions.
//
// These wrap the base kinds from internal/errors so callers can tell a rejected
// password (ErrUnauthorized) from unusable persisted state (ErrConfiguration)
// without inspecting messages.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedKDF indicates the requested key derivation function is not supported.
	ErrUnsupportedKDF = errors.Wrap(errors.ErrInvalidInput, "unsupported key derivation function")

	// ErrInvalidKDFParams indicates KDF parameters are outside the accepted bounds.
	//
	// Lower bounds keep derivation deliberately slow; upper bounds stop a tampered
	// key file from forcing an unbounded derivation.
	ErrInvalidKDFParams = errors.Wrap(errors.ErrInvalidInput, "invalid key derivation parameters")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidSaltSize indicates a salt is not exactly 16 bytes.
	ErrInvalidSaltSize = errors.Wrap(errors.ErrInvalidInput, "invalid salt size")

	// ErrDecryptionFailed indicates an AEAD open failed (wrong key or modified data).
	//
	// The specific cause is deliberately not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrUnsupportedKeyFormat indicates the wrapped-key header carries an unknown
	// version or algorithm code.
	ErrUnsupportedKeyFormat = errors.Wrap(errors.ErrInvalidInput, "unsupported wrapped key format")

	// ErrIncorrectPassword indicates the wrapped DEK could not be authenticated
	// under the key derived from the supplied password.
	ErrIncorrectPassword = errors.Wrap(errors.ErrUnauthorized, "incorrect master password")

	// ErrPasswordRequired indicates the key store was used without a password.
	ErrPasswordRequired = errors.Wrap(errors.ErrConfiguration, "master password required")

	// ErrInvalidSaltFile indicates the persisted salt has the wrong length.
	ErrInvalidSaltFile = errors.Wrap(errors.ErrConfiguration, "malformed salt file")

	// ErrInvalidKeyFile indicates the persisted wrapped key has the wrong length.
	ErrInvalidKeyFile = errors.Wrap(errors.ErrConfiguration, "malformed wrapped key file")

	// ErrMissingSalt indicates a wrapped key exists without its salt.
	ErrMissingSalt = errors.Wrap(errors.ErrConfiguration, "wrapped key present but salt file missing")

	// ErrOrphanedBlob indicates profile data exists but no wrapped key does.
	ErrOrphanedBlob = errors.Wrap(
		errors.ErrConfiguration,
		"encrypted profile data present but wrapped key missing",
	)

	// ErrVaultNotInitialized indicates no wrapped key has been created yet.
	ErrVaultNotInitialized = errors.Wrap(errors.ErrNotFound, "vault not initialized")

	// ErrKeyringClosed indicates the keyring was used after Close.
	ErrKeyringClosed = errors.Wrap(errors.ErrConflict, "keyring closed")

	// ErrTooManyAttempts indicates unlock attempts are being throttled.
	ErrTooManyAttempts = errors.Wrap(errors.ErrLocked, "too many unlock attempts")
)
