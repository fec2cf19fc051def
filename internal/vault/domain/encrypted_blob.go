package domain

import (
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// BlobVersion is the current encrypted profile blob format.
const BlobVersion = 1

const blobHeaderSize = 2

// EncryptedBlob is the on-disk form of the sealed profile list.
//
// Binary layout:
//
//	version(1) aead(1) nonce(12) ciphertext(n+16)
//
// The associated data is the two header bytes followed by the 16-byte vault ID,
// so a blob only opens under the vault that wrote it.
type EncryptedBlob struct {
	Version    uint8
	Algorithm  cryptoDomain.Algorithm
	Nonce      []byte
	Ciphertext []byte
}

// AssociatedData returns the bytes authenticated alongside the ciphertext.
func (b EncryptedBlob) AssociatedData(vaultID uuid.UUID) ([]byte, error) {
	code, err := cryptoDomain.AlgorithmCode(b.Algorithm)
	if err != nil {
		return nil, err
	}
	aad := make([]byte, 0, blobHeaderSize+len(vaultID))
	aad = append(aad, b.Version, code)
	aad = append(aad, vaultID[:]...)
	return aad, nil
}

// MarshalBinary serializes the blob.
func (b EncryptedBlob) MarshalBinary() ([]byte, error) {
	code, err := cryptoDomain.AlgorithmCode(b.Algorithm)
	if err != nil {
		return nil, err
	}
	if len(b.Nonce) != cryptoDomain.NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes", cryptoDomain.NonceSize)
	}

	out := make([]byte, 0, blobHeaderSize+len(b.Nonce)+len(b.Ciphertext))
	out = append(out, b.Version, code)
	out = append(out, b.Nonce...)
	out = append(out, b.Ciphertext...)
	return out, nil
}

// ParseEncryptedBlob decodes a serialized blob. Every structural problem is
// reported as ErrTamperOrWrongKey.
func ParseEncryptedBlob(data []byte) (EncryptedBlob, error) {
	if len(data) < blobHeaderSize+cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return EncryptedBlob{}, ErrTamperOrWrongKey
	}
	if data[0] != BlobVersion {
		return EncryptedBlob{}, ErrTamperOrWrongKey
	}
	alg, err := cryptoDomain.AlgorithmFromCode(data[1])
	if err != nil {
		return EncryptedBlob{}, ErrTamperOrWrongKey
	}

	rest := data[blobHeaderSize:]
	return EncryptedBlob{
		Version:    data[0],
		Algorithm:  alg,
		Nonce:      append([]byte(nil), rest[:cryptoDomain.NonceSize]...),
		Ciphertext: append([]byte(nil), rest[cryptoDomain.NonceSize:]...),
	}, nil
}
