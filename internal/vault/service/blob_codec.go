// Package service implements serialization of the profile list: the authenticated
// encrypted blob and the plain JSON export format.
package service

import (
	"encoding/json"
	"errors"
	"fmt"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	cryptoService "github.com/allisson/connvault/internal/crypto/service"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// BlobCodec seals and opens the profile list under a keyring's DEK.
type BlobCodec interface {
	// Encrypt serializes profiles as a JSON array and seals it. Order is preserved.
	Encrypt(keyring *cryptoDomain.Keyring, profiles []vaultDomain.ConnectionProfile) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. Any failure is ErrTamperOrWrongKey.
	Decrypt(keyring *cryptoDomain.Keyring, blob []byte) ([]vaultDomain.ConnectionProfile, error)
}

// BlobCodecService implements BlobCodec.
type BlobCodecService struct {
	aeadManager cryptoService.AEADManager
}

// NewBlobCodec creates a BlobCodecService.
func NewBlobCodec(aeadManager cryptoService.AEADManager) *BlobCodecService {
	return &BlobCodecService{aeadManager: aeadManager}
}

// Encrypt seals profiles with the keyring's algorithm and vault ID.
func (c *BlobCodecService) Encrypt(
	keyring *cryptoDomain.Keyring,
	profiles []vaultDomain.ConnectionProfile,
) ([]byte, error) {
	if profiles == nil {
		profiles = []vaultDomain.ConnectionProfile{}
	}

	plaintext, err := json.Marshal(profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profiles: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	blob := vaultDomain.EncryptedBlob{
		Version:   vaultDomain.BlobVersion,
		Algorithm: keyring.Algorithm,
	}
	aad, err := blob.AssociatedData(keyring.VaultID)
	if err != nil {
		return nil, err
	}

	err = keyring.WithKey(func(dek []byte) error {
		cipher, err := c.aeadManager.CreateCipher(dek, blob.Algorithm)
		if err != nil {
			return err
		}
		blob.Ciphertext, blob.Nonce, err = cipher.Encrypt(plaintext, aad)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt profiles: %w", err)
	}

	return blob.MarshalBinary()
}

// Decrypt opens data and decodes the profile list.
//
// The algorithm byte in the blob header is honoured, so a blob written before
// the vault's preferred algorithm changed still opens.
func (c *BlobCodecService) Decrypt(
	keyring *cryptoDomain.Keyring,
	data []byte,
) ([]vaultDomain.ConnectionProfile, error) {
	blob, err := vaultDomain.ParseEncryptedBlob(data)
	if err != nil {
		return nil, err
	}

	aad, err := blob.AssociatedData(keyring.VaultID)
	if err != nil {
		return nil, vaultDomain.ErrTamperOrWrongKey
	}

	var plaintext []byte
	err = keyring.WithKey(func(dek []byte) error {
		cipher, err := c.aeadManager.CreateCipher(dek, blob.Algorithm)
		if err != nil {
			return err
		}
		plaintext, err = cipher.Decrypt(blob.Ciphertext, blob.Nonce, aad)
		return err
	})
	if err != nil {
		if errors.Is(err, cryptoDomain.ErrKeyringClosed) {
			return nil, vaultDomain.ErrVaultClosed
		}
		return nil, vaultDomain.ErrTamperOrWrongKey
	}
	defer cryptoDomain.Zero(plaintext)

	return decodeProfiles(plaintext, vaultDomain.ErrTamperOrWrongKey)
}

// decodeProfiles requires a top-level JSON array and reports any problem as failure.
func decodeProfiles(data []byte, failure error) ([]vaultDomain.ConnectionProfile, error) {
	var profiles []vaultDomain.ConnectionProfile
	if err := json.Unmarshal(data, &profiles); err != nil || profiles == nil {
		return nil, failure
	}
	return profiles, nil
}
