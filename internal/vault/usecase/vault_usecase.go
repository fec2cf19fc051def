package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	apperrors "github.com/allisson/connvault/internal/errors"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
	vaultService "github.com/allisson/connvault/internal/vault/service"
)

// vaultUseCase implements VaultUseCase.
//
// mu serialises the whole validate, encrypt, write, swap sequence, so two
// concurrent mutations can never both start from the same list.
type vaultUseCase struct {
	mu         sync.Mutex
	keyring    *cryptoDomain.Keyring
	codec      vaultService.BlobCodec
	repo       BlobRepository
	profiles   []vaultDomain.ConnectionProfile
	generation uint64
	closed     bool
	logger     *slog.Logger
}

func newVaultUseCase(
	keyring *cryptoDomain.Keyring,
	codec vaultService.BlobCodec,
	repo BlobRepository,
	profiles []vaultDomain.ConnectionProfile,
	logger *slog.Logger,
) *vaultUseCase {
	return &vaultUseCase{
		keyring:  keyring,
		codec:    codec,
		repo:     repo,
		profiles: vaultDomain.CloneProfiles(profiles),
		logger:   logger.With(slog.String("vault_id", keyring.VaultID.String())),
	}
}

func (v *vaultUseCase) VaultID() uuid.UUID {
	return v.keyring.VaultID
}

func (v *vaultUseCase) List(ctx context.Context) ([]vaultDomain.ConnectionProfile, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, vaultDomain.ErrVaultClosed
	}
	return vaultDomain.CloneProfiles(v.profiles), nil
}

func (v *vaultUseCase) Snapshot(ctx context.Context) (vaultDomain.Listing, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return vaultDomain.Listing{}, vaultDomain.ErrVaultClosed
	}
	return vaultDomain.Listing{
		Generation: v.generation,
		Profiles:   vaultDomain.CloneProfiles(v.profiles),
	}, nil
}

func (v *vaultUseCase) Get(ctx context.Context, index int) (*vaultDomain.ConnectionProfile, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || !v.inRange(index) {
		return nil, false
	}
	profile := v.profiles[index]
	return &profile, true
}

func (v *vaultUseCase) Add(ctx context.Context, profile vaultDomain.ConnectionProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return vaultDomain.ErrVaultClosed
	}

	next := append(vaultDomain.CloneProfiles(v.profiles), profile)
	if err := v.commit(ctx, next, true); err != nil {
		return err
	}

	v.logger.Info("profile added",
		slog.Int("index", len(next)-1),
		slog.String("kind", string(profile.Kind)),
		slog.Int("count", len(next)),
	)
	return nil
}

func (v *vaultUseCase) Update(ctx context.Context, index int, profile vaultDomain.ConnectionProfile) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.update(ctx, index, profile)
}

func (v *vaultUseCase) UpdateAt(
	ctx context.Context,
	generation uint64,
	index int,
	profile vaultDomain.ConnectionProfile,
) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkGeneration(generation); err != nil {
		return err
	}
	return v.update(ctx, index, profile)
}

func (v *vaultUseCase) Remove(ctx context.Context, index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.remove(ctx, index)
}

func (v *vaultUseCase) RemoveAt(ctx context.Context, generation uint64, index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkGeneration(generation); err != nil {
		return err
	}
	return v.remove(ctx, index)
}

func (v *vaultUseCase) ReplaceAll(ctx context.Context, profiles []vaultDomain.ConnectionProfile) error {
	if err := validateAll(profiles); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return vaultDomain.ErrVaultClosed
	}
	if err := v.commit(ctx, vaultDomain.CloneProfiles(profiles), true); err != nil {
		return err
	}

	v.logger.Info("profiles replaced", slog.Int("count", len(profiles)))
	return nil
}

func (v *vaultUseCase) ExportSnapshot(ctx context.Context) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, vaultDomain.ErrVaultClosed
	}
	return v.codec.Encrypt(v.keyring, v.profiles)
}

func (v *vaultUseCase) ImportSnapshot(ctx context.Context, blob []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return vaultDomain.ErrVaultClosed
	}

	// A blob that does not even parse is damaged; one that parses but fails to
	// authenticate was sealed by another vault, or modified.
	if _, err := vaultDomain.ParseEncryptedBlob(blob); err != nil {
		return err
	}
	profiles, err := v.codec.Decrypt(v.keyring, blob)
	if err != nil {
		if apperrors.Is(err, vaultDomain.ErrTamperOrWrongKey) {
			return vaultDomain.ErrIncompatibleVault
		}
		return err
	}
	if err := validateAll(profiles); err != nil {
		return err
	}
	if err := v.commit(ctx, profiles, true); err != nil {
		return err
	}

	v.logger.Info("snapshot imported", slog.Int("count", len(profiles)))
	return nil
}

func (v *vaultUseCase) ExportPlain(ctx context.Context) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, vaultDomain.ErrVaultClosed
	}

	v.logger.Warn("exporting profiles without encryption", slog.Int("count", len(v.profiles)))
	return vaultService.EncodePlainJSON(v.profiles)
}

func (v *vaultUseCase) ImportPlain(ctx context.Context, data []byte) error {
	profiles, err := vaultService.DecodePlainJSON(data)
	if err != nil {
		return err
	}
	return v.ReplaceAll(ctx, profiles)
}

func (v *vaultUseCase) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	v.keyring.Close()
	clear(v.profiles)
	v.profiles = nil

	v.logger.Debug("vault closed")
	return nil
}

// update assumes mu is held. The range check comes first so an out-of-range
// index is a no-op even for an invalid profile.
func (v *vaultUseCase) update(ctx context.Context, index int, profile vaultDomain.ConnectionProfile) error {
	if v.closed {
		return vaultDomain.ErrVaultClosed
	}
	if !v.inRange(index) {
		return nil
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	next := vaultDomain.CloneProfiles(v.profiles)
	next[index] = profile
	if err := v.commit(ctx, next, false); err != nil {
		return err
	}

	v.logger.Info("profile updated", slog.Int("index", index), slog.String("kind", string(profile.Kind)))
	return nil
}

// remove assumes mu is held.
func (v *vaultUseCase) remove(ctx context.Context, index int) error {
	if v.closed {
		return vaultDomain.ErrVaultClosed
	}
	if !v.inRange(index) {
		return nil
	}

	next := slices.Delete(vaultDomain.CloneProfiles(v.profiles), index, index+1)
	if err := v.commit(ctx, next, true); err != nil {
		return err
	}

	v.logger.Info("profile removed", slog.Int("index", index), slog.Int("count", len(next)))
	return nil
}

// commit encrypts and persists next, then makes it the current list. Nothing
// in memory changes unless the write succeeded. Structural changes bump the
// generation.
func (v *vaultUseCase) commit(ctx context.Context, next []vaultDomain.ConnectionProfile, structural bool) error {
	blob, err := v.codec.Encrypt(v.keyring, next)
	if err != nil {
		return err
	}
	if err := v.repo.WriteBlob(ctx, blob); err != nil {
		return err
	}

	v.profiles = next
	if structural {
		v.generation++
	}
	return nil
}

func (v *vaultUseCase) checkGeneration(generation uint64) error {
	if v.closed {
		return vaultDomain.ErrVaultClosed
	}
	if generation != v.generation {
		return fmt.Errorf("%w: generation %d, current %d", vaultDomain.ErrStaleListing, generation, v.generation)
	}
	return nil
}

func (v *vaultUseCase) inRange(index int) bool {
	return index >= 0 && index < len(v.profiles)
}

func validateAll(profiles []vaultDomain.ConnectionProfile) error {
	for i, profile := range profiles {
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
	}
	return nil
}
