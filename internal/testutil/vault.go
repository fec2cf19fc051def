// Package testutil provides fixtures shared by vault tests.
//
// Key derivation in tests uses FastKDFParams, the cheapest parameters the key
// store accepts, so that unlocking stays in the millisecond range:
//
//	dir := testutil.VaultDir(t)
//	keyStore, err := usecase.NewKeyStoreUseCase(repo, deriver, manager,
//	    testutil.FastKDFParams(), cryptoDomain.AESGCM, testutil.Logger())
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// FastKDFParams returns the minimum accepted Argon2id parameters.
func FastKDFParams() cryptoDomain.KDFParams {
	return cryptoDomain.KDFParams{
		Algorithm:  cryptoDomain.Argon2ID,
		Iterations: cryptoDomain.MinArgon2Time,
		MemoryKiB:  cryptoDomain.MinArgon2MemoryKiB,
		Threads:    cryptoDomain.MinArgon2Threads,
	}
}

// VaultDir returns a fresh vault directory removed when the test ends.
func VaultDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "vault")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	return dir
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SampleProfiles returns one profile of each kind.
func SampleProfiles() []vaultDomain.ConnectionProfile {
	return []vaultDomain.ConnectionProfile{
		{
			Kind:     vaultDomain.KindMySQL,
			Host:     "db1.internal",
			Port:     3306,
			User:     "root",
			Password: "s3cr3t",
			Database: "inventory",
		},
		{
			Kind: vaultDomain.KindSQLite,
			Path: "/var/lib/app/local.db",
		},
	}
}

// FlipBit inverts one bit of the file at path.
func FlipBit(t *testing.T, path string, offset int, mask byte) {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	require.Less(t, offset, len(data))
	data[offset] ^= mask
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
