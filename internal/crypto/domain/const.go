// Package domain defines the cryptographic domain models for the vault's envelope encryption.
//
// It implements a two-tier key hierarchy: master password → wrapping key → DEK → profile data.
// The wrapping key only ever seals the DEK, so the slow password derivation runs once per unlock.
package domain

// Algorithm represents the AEAD cipher used to wrap the DEK and seal the profile blob.
//
// Both algorithms use 256-bit keys, a 12-byte nonce and a 16-byte tag, so the
// on-disk record sizes do not depend on the choice.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305. Preferred without AES hardware support.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KDFAlgorithm identifies the password-based key derivation function.
type KDFAlgorithm string

const (
	// PBKDF2SHA256 is PBKDF2 with HMAC-SHA256.
	PBKDF2SHA256 KDFAlgorithm = "pbkdf2-sha256"

	// Argon2ID is the memory-hard Argon2id function.
	Argon2ID KDFAlgorithm = "argon2id"
)

const (
	// KeySize is the size of the DEK and of every wrapping key.
	KeySize = 32

	// SaltSize is the size of the persisted KDF salt.
	SaltSize = 16

	// NonceSize is the AEAD nonce size shared by both supported ciphers.
	NonceSize = 12

	// TagSize is the AEAD authentication tag size shared by both supported ciphers.
	TagSize = 16
)

// algorithmCodes maps algorithms to their one-byte on-disk identifiers.
var algorithmCodes = map[Algorithm]byte{
	AESGCM:   1,
	ChaCha20: 2,
}

// kdfCodes maps KDF algorithms to their one-byte on-disk identifiers.
var kdfCodes = map[KDFAlgorithm]byte{
	PBKDF2SHA256: 1,
	Argon2ID:     2,
}

// AlgorithmCode returns the on-disk identifier of alg.
func AlgorithmCode(alg Algorithm) (byte, error) {
	code, ok := algorithmCodes[alg]
	if !ok {
		return 0, ErrUnsupportedAlgorithm
	}
	return code, nil
}

// AlgorithmFromCode is the inverse of AlgorithmCode.
func AlgorithmFromCode(code byte) (Algorithm, error) {
	for alg, c := range algorithmCodes {
		if c == code {
			return alg, nil
		}
	}
	return "", ErrUnsupportedAlgorithm
}

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(s)
	if _, ok := algorithmCodes[alg]; !ok {
		return "", ErrUnsupportedAlgorithm
	}
	return alg, nil
}

// ParseKDFAlgorithm converts a configuration string into a KDFAlgorithm.
func ParseKDFAlgorithm(s string) (KDFAlgorithm, error) {
	alg := KDFAlgorithm(s)
	if _, ok := kdfCodes[alg]; !ok {
		return "", ErrUnsupportedKDF
	}
	return alg, nil
}
