package domain

import (
	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	"github.com/allisson/connvault/internal/errors"
)

// LoadOutcome classifies the result of opening a vault so callers can branch
// without matching error values.
type LoadOutcome int

const (
	// LoadOK means the vault opened and its profiles were decrypted.
	LoadOK LoadOutcome = iota
	// LoadNotFound means no vault exists yet; opening will create one.
	LoadNotFound
	// LoadAuthFailed means the password was rejected. Retrying is reasonable.
	LoadAuthFailed
	// LoadCorrupted means persisted state is unusable. Retrying will not help.
	LoadCorrupted
	// LoadFailed covers everything else, such as I/O errors.
	LoadFailed
)

// String returns the outcome name.
func (o LoadOutcome) String() string {
	switch o {
	case LoadOK:
		return "ok"
	case LoadNotFound:
		return "not_found"
	case LoadAuthFailed:
		return "auth_failed"
	case LoadCorrupted:
		return "corrupted"
	default:
		return "failed"
	}
}

// OutcomeOf maps an error returned while opening a vault to its outcome.
func OutcomeOf(err error) LoadOutcome {
	switch {
	case err == nil:
		return LoadOK
	case errors.Is(err, errors.ErrUnauthorized), errors.Is(err, errors.ErrLocked):
		return LoadAuthFailed
	case errors.Is(err, ErrTamperOrWrongKey), errors.Is(err, errors.ErrConfiguration):
		return LoadCorrupted
	case errors.Is(err, cryptoDomain.ErrVaultNotInitialized):
		return LoadNotFound
	default:
		return LoadFailed
	}
}
