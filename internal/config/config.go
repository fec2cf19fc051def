// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	apperrors "github.com/allisson/connvault/internal/errors"
	"github.com/allisson/connvault/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	// VaultDir is the directory holding the salt, wrapped key and encrypted profiles.
	VaultDir string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// KDFAlgorithm is the key derivation function for new vaults ("argon2id" or "pbkdf2-sha256").
	KDFAlgorithm string
	// KDFPBKDF2Iterations is the PBKDF2 iteration count for new vaults.
	KDFPBKDF2Iterations int
	// KDFArgon2Time is the Argon2id time cost for new vaults.
	KDFArgon2Time int
	// KDFArgon2MemoryKiB is the Argon2id memory cost in KiB for new vaults.
	KDFArgon2MemoryKiB int
	// KDFArgon2Threads is the Argon2id parallelism for new vaults.
	KDFArgon2Threads int

	// AEADAlgorithm is the cipher for new vaults ("aes-gcm" or "chacha20-poly1305").
	AEADAlgorithm string

	// UnlockBurst is the number of unlock attempts allowed before throttling starts.
	UnlockBurst int
	// UnlockInterval is the time it takes to earn back one unlock attempt.
	UnlockInterval time.Duration

	// MinPasswordLength is the minimum length of a new master password, in characters.
	MinPasswordLength int
	// PasswordRequireUpper, PasswordRequireLower, PasswordRequireNumber and
	// PasswordRequireSpecial add character class requirements for new master passwords.
	PasswordRequireUpper   bool
	PasswordRequireLower   bool
	PasswordRequireNumber  bool
	PasswordRequireSpecial bool

	// BackupURL is a directory or gocloud.dev bucket URL for backups. Empty means VaultDir/backups.
	BackupURL string

	// ConnectionTimeout bounds each step of a connection test.
	ConnectionTimeout time.Duration

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsHost is the host address the metrics server binds to during a shell session.
	MetricsHost string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		VaultDir: env.GetString("VAULT_DIR", defaultVaultDir()),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Key derivation
		KDFAlgorithm:        env.GetString("KDF_ALGORITHM", string(cryptoDomain.Argon2ID)),
		KDFPBKDF2Iterations: env.GetInt("KDF_PBKDF2_ITERATIONS", 600_000),
		KDFArgon2Time:       env.GetInt("KDF_ARGON2_TIME", 3),
		KDFArgon2MemoryKiB:  env.GetInt("KDF_ARGON2_MEMORY_KIB", 64*1024),
		KDFArgon2Threads:    env.GetInt("KDF_ARGON2_THREADS", 4),

		AEADAlgorithm: env.GetString("AEAD_ALGORITHM", string(cryptoDomain.AESGCM)),

		// Unlock throttling
		UnlockBurst:    env.GetInt("UNLOCK_BURST", 5),
		UnlockInterval: env.GetDuration("UNLOCK_INTERVAL_SECONDS", 30, time.Second),

		// Master password policy
		MinPasswordLength:      env.GetInt("MIN_PASSWORD_LENGTH", 4),
		PasswordRequireUpper:   env.GetBool("PASSWORD_REQUIRE_UPPER", false),
		PasswordRequireLower:   env.GetBool("PASSWORD_REQUIRE_LOWER", false),
		PasswordRequireNumber:  env.GetBool("PASSWORD_REQUIRE_NUMBER", false),
		PasswordRequireSpecial: env.GetBool("PASSWORD_REQUIRE_SPECIAL", false),

		BackupURL: env.GetString("BACKUP_URL", ""),

		ConnectionTimeout: env.GetDuration("CONNECTION_TIMEOUT_SECONDS", 10, time.Second),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "connvault"),
		MetricsHost:      env.GetString("METRICS_HOST", "127.0.0.1"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// KDFParams returns the key derivation parameters for new vaults.
func (c *Config) KDFParams() (cryptoDomain.KDFParams, error) {
	alg, err := cryptoDomain.ParseKDFAlgorithm(c.KDFAlgorithm)
	if err != nil {
		return cryptoDomain.KDFParams{}, apperrors.Wrapf(apperrors.ErrConfiguration, "KDF_ALGORITHM %q", c.KDFAlgorithm)
	}

	var params cryptoDomain.KDFParams
	switch alg {
	case cryptoDomain.PBKDF2SHA256:
		params = cryptoDomain.KDFParams{
			Algorithm:  alg,
			Iterations: clampUint32(c.KDFPBKDF2Iterations),
		}
	default:
		params = cryptoDomain.KDFParams{
			Algorithm:  alg,
			Iterations: clampUint32(c.KDFArgon2Time),
			MemoryKiB:  clampUint32(c.KDFArgon2MemoryKiB),
			Threads:    clampUint8(c.KDFArgon2Threads),
		}
	}

	if err := params.Validate(); err != nil {
		return cryptoDomain.KDFParams{}, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	return params, nil
}

// Algorithm returns the AEAD cipher for new vaults.
func (c *Config) Algorithm() (cryptoDomain.Algorithm, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.AEADAlgorithm)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrConfiguration, "AEAD_ALGORITHM %q", c.AEADAlgorithm)
	}
	return alg, nil
}

// PasswordPolicy returns the rules a new master password must satisfy.
func (c *Config) PasswordPolicy() validation.PasswordStrength {
	return validation.PasswordStrength{
		MinLength:      c.MinPasswordLength,
		RequireUpper:   c.PasswordRequireUpper,
		RequireLower:   c.PasswordRequireLower,
		RequireNumber:  c.PasswordRequireNumber,
		RequireSpecial: c.PasswordRequireSpecial,
	}
}

// BackupLocation returns BackupURL, or the backups directory inside VaultDir.
func (c *Config) BackupLocation() string {
	if c.BackupURL != "" {
		return c.BackupURL
	}
	return filepath.Join(c.VaultDir, "backups")
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

func defaultVaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".connvault"
	}
	return filepath.Join(home, ".connvault")
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	if uint64(v) > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

func clampUint8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
