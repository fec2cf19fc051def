package usecase

import (
	"context"
	"log/slog"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	cryptoUsecase "github.com/allisson/connvault/internal/crypto/usecase"
	apperrors "github.com/allisson/connvault/internal/errors"
	"github.com/allisson/connvault/internal/metrics"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
	vaultService "github.com/allisson/connvault/internal/vault/service"
)

// vaultOpener implements Opener.
type vaultOpener struct {
	keyStore cryptoUsecase.KeyStoreUseCase
	repo     BlobRepository
	codec    vaultService.BlobCodec
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
}

// NewOpener creates an Opener. When businessMetrics is non-nil every opened
// vault is instrumented.
func NewOpener(
	keyStore cryptoUsecase.KeyStoreUseCase,
	repo BlobRepository,
	codec vaultService.BlobCodec,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) Opener {
	return &vaultOpener{
		keyStore: keyStore,
		repo:     repo,
		codec:    codec,
		metrics:  businessMetrics,
		logger:   logger,
	}
}

// Open unlocks the key store and decrypts the profile blob. A missing blob
// means an empty vault.
func (o *vaultOpener) Open(ctx context.Context, password string) (VaultUseCase, error) {
	vault, err := o.open(ctx, password)
	o.recordUnlock(ctx, vaultDomain.OutcomeOf(err))
	return vault, err
}

func (o *vaultOpener) open(ctx context.Context, password string) (VaultUseCase, error) {
	keyring, err := o.keyStore.Unlock(ctx, password)
	if err != nil {
		return nil, err
	}

	profiles := []vaultDomain.ConnectionProfile{}
	data, err := o.repo.ReadBlob(ctx)
	switch {
	case err == nil:
		profiles, err = o.codec.Decrypt(keyring, data)
		if err != nil {
			keyring.Close()
			o.logger.Error("profile data could not be opened", slog.String("vault_id", keyring.VaultID.String()))
			return nil, err
		}
	case apperrors.Is(err, apperrors.ErrNotFound):
	default:
		keyring.Close()
		return nil, err
	}

	o.logger.Info("vault opened",
		slog.String("vault_id", keyring.VaultID.String()),
		slog.Int("count", len(profiles)),
	)

	var vault VaultUseCase = newVaultUseCase(keyring, o.codec, o.repo, profiles, o.logger)
	if o.metrics != nil {
		o.metrics.RecordProfiles(ctx, len(profiles))
		vault = NewVaultUseCaseWithMetrics(vault, o.metrics)
	}
	return vault, nil
}

// Probe reports LoadNotFound without side effects when no vault exists.
func (o *vaultOpener) Probe(
	ctx context.Context,
	password string,
) (VaultUseCase, vaultDomain.LoadOutcome, error) {
	exists, err := o.keyStore.Exists(ctx)
	if err != nil {
		outcome := vaultDomain.OutcomeOf(err)
		o.recordUnlock(ctx, outcome)
		return nil, outcome, err
	}
	if !exists {
		o.recordUnlock(ctx, vaultDomain.LoadNotFound)
		return nil, vaultDomain.LoadNotFound, cryptoDomain.ErrVaultNotInitialized
	}

	vault, err := o.Open(ctx, password)
	return vault, vaultDomain.OutcomeOf(err), err
}

func (o *vaultOpener) recordUnlock(ctx context.Context, outcome vaultDomain.LoadOutcome) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordUnlock(ctx, outcome.String())
}
