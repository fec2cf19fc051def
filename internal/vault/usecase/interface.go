// Package usecase implements the connection vault: an unlocked, in-memory view of
// the profile list whose every mutation is re-encrypted and persisted before it
// becomes visible.
package usecase

import (
	"context"

	"github.com/google/uuid"

	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// BlobRepository persists the encrypted profile blob.
//
// ReadBlob returns an error wrapping apperrors.ErrNotFound when nothing has been
// written yet. WriteBlob must replace the blob atomically.
type BlobRepository interface {
	ReadBlob(ctx context.Context) ([]byte, error)
	WriteBlob(ctx context.Context, data []byte) error
}

// VaultUseCase is an unlocked vault.
//
// Indices are positions in the current list. A failed mutation leaves both the
// in-memory list and the persisted blob unchanged. All methods are safe for
// concurrent use; after Close every method fails with ErrVaultClosed.
type VaultUseCase interface {
	// VaultID identifies the vault; snapshots only import into the vault that made them.
	VaultID() uuid.UUID

	// List returns a copy of all profiles in order.
	List(ctx context.Context) ([]vaultDomain.ConnectionProfile, error)

	// Snapshot returns a copy of all profiles tagged with the current generation.
	Snapshot(ctx context.Context) (vaultDomain.Listing, error)

	// Get returns a copy of the profile at index, or false when out of range.
	Get(ctx context.Context, index int) (*vaultDomain.ConnectionProfile, bool)

	// Add validates profile and appends it.
	Add(ctx context.Context, profile vaultDomain.ConnectionProfile) error

	// Update replaces the profile at index. Out of range is a no-op.
	Update(ctx context.Context, index int, profile vaultDomain.ConnectionProfile) error

	// UpdateAt is Update guarded by a listing generation; it fails with
	// ErrStaleListing when the list changed shape since that listing.
	UpdateAt(ctx context.Context, generation uint64, index int, profile vaultDomain.ConnectionProfile) error

	// Remove deletes the profile at index. Out of range is a no-op.
	Remove(ctx context.Context, index int) error

	// RemoveAt is Remove guarded by a listing generation.
	RemoveAt(ctx context.Context, generation uint64, index int) error

	// ReplaceAll validates every profile and then replaces the whole list.
	ReplaceAll(ctx context.Context, profiles []vaultDomain.ConnectionProfile) error

	// ExportSnapshot returns the current list as an encrypted blob.
	ExportSnapshot(ctx context.Context) ([]byte, error)

	// ImportSnapshot replaces the list with the contents of a blob made by this
	// vault. Blobs from other vaults fail with ErrIncompatibleVault.
	ImportSnapshot(ctx context.Context, blob []byte) error

	// ExportPlain returns the current list as indented, unencrypted JSON.
	ExportPlain(ctx context.Context) ([]byte, error)

	// ImportPlain replaces the list with profiles read from plain JSON.
	ImportPlain(ctx context.Context, data []byte) error

	// Close destroys the in-memory key and profiles. It is idempotent.
	Close() error
}

// Opener unlocks vaults.
type Opener interface {
	// Open unlocks the vault with password, creating it on first use.
	//
	// Errors: ErrIncorrectPassword for a rejected password, configuration errors
	// for unusable key files, ErrTamperOrWrongKey when the profile blob cannot be
	// opened. A blob that fails to open is never replaced by an empty list.
	Open(ctx context.Context, password string) (VaultUseCase, error)

	// Probe is Open for callers that branch on the outcome. It does not create a
	// vault: when none exists it returns LoadNotFound.
	Probe(ctx context.Context, password string) (VaultUseCase, vaultDomain.LoadOutcome, error)
}
