package domain

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// WrappedDekVersion is the current wrapped-key record format.
const WrappedDekVersion = 1

const (
	wrappedHeaderSize = 1 + 1 + 1 + 4 + 4 + 1 + 16
	// WrappedDekSize is the exact size of a serialized wrapped-key record.
	WrappedDekSize = wrappedHeaderSize + NonceSize + KeySize + TagSize
)

// WrappedDek is the Data Encryption Key sealed under the password-derived wrapping key.
//
// Binary layout (big endian):
//
//	version(1) aead(1) kdf(1) iterations(4) memory(4) threads(1) vault_id(16) nonce(12) ciphertext(48)
//
// Everything before the nonce is the header and is bound to the ciphertext as
// associated data, so editing the KDF parameters or vault ID breaks authentication.
type WrappedDek struct {
	Version      uint8
	VaultID      uuid.UUID
	Algorithm    Algorithm
	KDF          KDFParams
	Nonce        []byte
	EncryptedKey []byte
}

// Header returns the serialized header used as AEAD associated data.
func (w WrappedDek) Header() ([]byte, error) {
	algCode, err := AlgorithmCode(w.Algorithm)
	if err != nil {
		return nil, err
	}
	kdfCode, ok := kdfCodes[w.KDF.Algorithm]
	if !ok {
		return nil, ErrUnsupportedKDF
	}

	header := make([]byte, wrappedHeaderSize)
	header[0] = w.Version
	header[1] = algCode
	header[2] = kdfCode
	binary.BigEndian.PutUint32(header[3:7], w.KDF.Iterations)
	binary.BigEndian.PutUint32(header[7:11], w.KDF.MemoryKiB)
	header[11] = w.KDF.Threads
	copy(header[12:28], w.VaultID[:])
	return header, nil
}

// MarshalBinary serializes the record into its fixed-size on-disk form.
func (w WrappedDek) MarshalBinary() ([]byte, error) {
	if len(w.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", ErrInvalidKeyFile, NonceSize)
	}
	if len(w.EncryptedKey) != KeySize+TagSize {
		return nil, fmt.Errorf("%w: ciphertext must be %d bytes", ErrInvalidKeyFile, KeySize+TagSize)
	}

	header, err := w.Header()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, WrappedDekSize)
	out = append(out, header...)
	out = append(out, w.Nonce...)
	out = append(out, w.EncryptedKey...)
	return out, nil
}

// ParseWrappedDek decodes a serialized record.
//
// A wrong length is reported as ErrInvalidKeyFile. Unknown version or algorithm
// codes are reported as ErrUnsupportedKeyFormat.
func ParseWrappedDek(data []byte) (WrappedDek, error) {
	if len(data) != WrappedDekSize {
		return WrappedDek{}, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidKeyFile,
			WrappedDekSize,
			len(data),
		)
	}

	if data[0] != WrappedDekVersion {
		return WrappedDek{}, fmt.Errorf("%w: version %d", ErrUnsupportedKeyFormat, data[0])
	}

	alg, err := AlgorithmFromCode(data[1])
	if err != nil {
		return WrappedDek{}, fmt.Errorf("%w: aead code %d", ErrUnsupportedKeyFormat, data[1])
	}

	var kdfAlg KDFAlgorithm
	for a, c := range kdfCodes {
		if c == data[2] {
			kdfAlg = a
		}
	}
	if kdfAlg == "" {
		return WrappedDek{}, fmt.Errorf("%w: kdf code %d", ErrUnsupportedKeyFormat, data[2])
	}

	vaultID, err := uuid.FromBytes(data[12:28])
	if err != nil {
		return WrappedDek{}, fmt.Errorf("%w: %v", ErrUnsupportedKeyFormat, err)
	}

	nonce := make([]byte, NonceSize)
	copy(nonce, data[wrappedHeaderSize:wrappedHeaderSize+NonceSize])
	encryptedKey := make([]byte, KeySize+TagSize)
	copy(encryptedKey, data[wrappedHeaderSize+NonceSize:])

	return WrappedDek{
		Version:   data[0],
		VaultID:   vaultID,
		Algorithm: alg,
		KDF: KDFParams{
			Algorithm:  kdfAlg,
			Iterations: binary.BigEndian.Uint32(data[3:7]),
			MemoryKiB:  binary.BigEndian.Uint32(data[7:11]),
			Threads:    data[11],
		},
		Nonce:        nonce,
		EncryptedKey: encryptedKey,
	}, nil
}
