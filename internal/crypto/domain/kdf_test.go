package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKDFParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  KDFParams
		wantErr error
	}{
		{
			name:   "default argon2id",
			params: DefaultKDFParams(),
		},
		{
			name:   "default pbkdf2",
			params: DefaultPBKDF2Params(),
		},
		{
			name:   "pbkdf2 minimum iterations",
			params: KDFParams{Algorithm: PBKDF2SHA256, Iterations: MinPBKDF2Iterations},
		},
		{
			name:    "pbkdf2 too few iterations",
			params:  KDFParams{Algorithm: PBKDF2SHA256, Iterations: 99_999},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "pbkdf2 too many iterations",
			params:  KDFParams{Algorithm: PBKDF2SHA256, Iterations: MaxPBKDF2Iterations + 1},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "pbkdf2 with memory cost",
			params:  KDFParams{Algorithm: PBKDF2SHA256, Iterations: MinPBKDF2Iterations, MemoryKiB: 1},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "argon2 zero time",
			params:  KDFParams{Algorithm: Argon2ID, Iterations: 0, MemoryKiB: MinArgon2MemoryKiB, Threads: 1},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "argon2 memory too small",
			params:  KDFParams{Algorithm: Argon2ID, Iterations: 1, MemoryKiB: 1024, Threads: 1},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "argon2 memory too large",
			params:  KDFParams{Algorithm: Argon2ID, Iterations: 1, MemoryKiB: MaxArgon2MemoryKiB + 1, Threads: 1},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "argon2 zero threads",
			params:  KDFParams{Algorithm: Argon2ID, Iterations: 1, MemoryKiB: MinArgon2MemoryKiB},
			wantErr: ErrInvalidKDFParams,
		},
		{
			name:    "unknown algorithm",
			params:  KDFParams{Algorithm: "scrypt", Iterations: 1},
			wantErr: ErrUnsupportedKDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("aes-gcm")
	assert.NoError(t, err)
	assert.Equal(t, AESGCM, alg)

	alg, err = ParseAlgorithm("chacha20-poly1305")
	assert.NoError(t, err)
	assert.Equal(t, ChaCha20, alg)

	_, err = ParseAlgorithm("des")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestParseKDFAlgorithm(t *testing.T) {
	alg, err := ParseKDFAlgorithm("argon2id")
	assert.NoError(t, err)
	assert.Equal(t, Argon2ID, alg)

	alg, err = ParseKDFAlgorithm("pbkdf2-sha256")
	assert.NoError(t, err)
	assert.Equal(t, PBKDF2SHA256, alg)

	_, err = ParseKDFAlgorithm("bcrypt")
	assert.ErrorIs(t, err, ErrUnsupportedKDF)
}

func TestAlgorithmCodes(t *testing.T) {
	for _, alg := range []Algorithm{AESGCM, ChaCha20} {
		code, err := AlgorithmCode(alg)
		assert.NoError(t, err)

		back, err := AlgorithmFromCode(code)
		assert.NoError(t, err)
		assert.Equal(t, alg, back)
	}

	_, err := AlgorithmFromCode(0)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
