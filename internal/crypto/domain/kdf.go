package domain

import "fmt"

// Bounds on KDF parameters accepted when creating or unlocking a vault.
const (
	MinPBKDF2Iterations = 100_000
	MaxPBKDF2Iterations = 10_000_000

	MinArgon2Time      = 1
	MaxArgon2Time      = 16
	MinArgon2MemoryKiB = 8 * 1024
	MaxArgon2MemoryKiB = 1024 * 1024
	MinArgon2Threads   = 1
	MaxArgon2Threads   = 64
)

// KDFParams describes how a wrapping key is derived from the master password.
//
// The parameters used at creation time are stored in the wrapped-key header,
// so unlocking never depends on the current configuration.
type KDFParams struct {
	Algorithm KDFAlgorithm
	// Iterations is the PBKDF2 iteration count or the Argon2 time cost.
	Iterations uint32
	// MemoryKiB is the Argon2 memory cost; zero for PBKDF2.
	MemoryKiB uint32
	// Threads is the Argon2 parallelism; zero for PBKDF2.
	Threads uint8
}

// DefaultKDFParams returns the parameters used for new vaults when nothing is configured.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Algorithm:  Argon2ID,
		Iterations: 3,
		MemoryKiB:  64 * 1024,
		Threads:    4,
	}
}

// DefaultPBKDF2Params returns PBKDF2-SHA256 parameters for new vaults.
func DefaultPBKDF2Params() KDFParams {
	return KDFParams{
		Algorithm:  PBKDF2SHA256,
		Iterations: 600_000,
	}
}

// Validate checks the parameters against the accepted bounds.
func (p KDFParams) Validate() error {
	switch p.Algorithm {
	case PBKDF2SHA256:
		if p.Iterations < MinPBKDF2Iterations || p.Iterations > MaxPBKDF2Iterations {
			return fmt.Errorf("%w: pbkdf2 iterations %d", ErrInvalidKDFParams, p.Iterations)
		}
		if p.MemoryKiB != 0 || p.Threads != 0 {
			return fmt.Errorf("%w: pbkdf2 takes no memory or thread cost", ErrInvalidKDFParams)
		}
	case Argon2ID:
		if p.Iterations < MinArgon2Time || p.Iterations > MaxArgon2Time {
			return fmt.Errorf("%w: argon2 time %d", ErrInvalidKDFParams, p.Iterations)
		}
		if p.MemoryKiB < MinArgon2MemoryKiB || p.MemoryKiB > MaxArgon2MemoryKiB {
			return fmt.Errorf("%w: argon2 memory %d KiB", ErrInvalidKDFParams, p.MemoryKiB)
		}
		if p.Threads < MinArgon2Threads || p.Threads > MaxArgon2Threads {
			return fmt.Errorf("%w: argon2 threads %d", ErrInvalidKDFParams, p.Threads)
		}
	default:
		return ErrUnsupportedKDF
	}
	return nil
}
