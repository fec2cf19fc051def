package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// KeyDeriverService implements KeyDeriver with PBKDF2-SHA256 and Argon2id.
//
// Derivation is intentionally expensive: tens to hundreds of milliseconds with
// the default parameters.
type KeyDeriverService struct{}

// NewKeyDeriver creates a new KeyDeriverService.
func NewKeyDeriver() *KeyDeriverService {
	return &KeyDeriverService{}
}

// Derive returns a 32-byte wrapping key for password and salt.
// Returns ErrInvalidSaltSize, ErrInvalidKDFParams or ErrUnsupportedKDF on bad input.
func (kd *KeyDeriverService) Derive(
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	if len(salt) != cryptoDomain.SaltSize {
		return nil, cryptoDomain.ErrInvalidSaltSize
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	switch params.Algorithm {
	case cryptoDomain.PBKDF2SHA256:
		return pbkdf2.Key(password, salt, int(params.Iterations), cryptoDomain.KeySize, sha256.New), nil
	case cryptoDomain.Argon2ID:
		return argon2.IDKey(
			password,
			salt,
			params.Iterations,
			params.MemoryKiB,
			params.Threads,
			cryptoDomain.KeySize,
		), nil
	default:
		return nil, cryptoDomain.ErrUnsupportedKDF
	}
}
