package service

import (
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	cryptoService "github.com/allisson/connvault/internal/crypto/service"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

func newTestKeyring(t *testing.T, alg cryptoDomain.Algorithm) *cryptoDomain.Keyring {
	t.Helper()
	dek := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(dek)
	require.NoError(t, err)

	keyring, err := cryptoDomain.NewKeyring(uuid.Must(uuid.NewV7()), alg, dek)
	require.NoError(t, err)
	t.Cleanup(keyring.Close)
	return keyring
}

func sampleProfiles() []vaultDomain.ConnectionProfile {
	return []vaultDomain.ConnectionProfile{
		{Kind: vaultDomain.KindMySQL, Host: "db1", Port: 3306, User: "root", Password: "x"},
		{Kind: vaultDomain.KindSQLite, Path: "/data/本地.db"},
		{Kind: vaultDomain.KindMySQL, Host: "db2", User: "ünïcødé", Password: "пароль\"\\", Database: "shop"},
	}
}

func TestBlobCodecService_RoundTrip(t *testing.T) {
	codec := NewBlobCodec(cryptoService.NewAEADManager())

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			keyring := newTestKeyring(t, alg)
			profiles := sampleProfiles()

			blob, err := codec.Encrypt(keyring, profiles)
			require.NoError(t, err)
			assert.NotContains(t, string(blob), "db1")
			assert.NotContains(t, string(blob), "root")

			decoded, err := codec.Decrypt(keyring, blob)
			require.NoError(t, err)
			assert.Equal(t, profiles, decoded)
		})
	}

	t.Run("empty list", func(t *testing.T) {
		keyring := newTestKeyring(t, cryptoDomain.AESGCM)

		for _, empty := range [][]vaultDomain.ConnectionProfile{nil, {}} {
			blob, err := codec.Encrypt(keyring, empty)
			require.NoError(t, err)
			assert.Len(t, blob, 2+cryptoDomain.NonceSize+len("[]")+cryptoDomain.TagSize)

			decoded, err := codec.Decrypt(keyring, blob)
			require.NoError(t, err)
			assert.NotNil(t, decoded)
			assert.Empty(t, decoded)
		}
	})

	t.Run("fresh nonce per encryption", func(t *testing.T) {
		keyring := newTestKeyring(t, cryptoDomain.AESGCM)
		first, err := codec.Encrypt(keyring, sampleProfiles())
		require.NoError(t, err)
		second, err := codec.Encrypt(keyring, sampleProfiles())
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestBlobCodecService_Decrypt_Failures(t *testing.T) {
	codec := NewBlobCodec(cryptoService.NewAEADManager())
	keyring := newTestKeyring(t, cryptoDomain.ChaCha20)

	blob, err := codec.Encrypt(keyring, sampleProfiles())
	require.NoError(t, err)

	t.Run("every single bit flip is detected", func(t *testing.T) {
		for i := range blob {
			for _, mask := range []byte{0x01, 0x80} {
				tampered := append([]byte(nil), blob...)
				tampered[i] ^= mask

				decoded, err := codec.Decrypt(keyring, tampered)
				assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey, "byte %d mask %#x", i, mask)
				assert.Nil(t, decoded)
			}
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := codec.Decrypt(keyring, blob[:len(blob)-1])
		assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey)
		_, err = codec.Decrypt(keyring, blob[:5])
		assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey)
		_, err = codec.Decrypt(keyring, nil)
		assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey)
	})

	t.Run("other key", func(t *testing.T) {
		other := newTestKeyring(t, cryptoDomain.ChaCha20)
		_, err := codec.Decrypt(other, blob)
		assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey)
	})

	t.Run("same key under another vault id", func(t *testing.T) {
		var dek []byte
		require.NoError(t, keyring.WithKey(func(k []byte) error {
			dek = append([]byte(nil), k...)
			return nil
		}))
		twin, err := cryptoDomain.NewKeyring(uuid.Must(uuid.NewV7()), keyring.Algorithm, dek)
		require.NoError(t, err)
		defer twin.Close()

		_, err = codec.Decrypt(twin, blob)
		assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey)
	})

	t.Run("closed keyring", func(t *testing.T) {
		closed := newTestKeyring(t, cryptoDomain.AESGCM)
		sealed, err := codec.Encrypt(closed, nil)
		require.NoError(t, err)
		closed.Close()

		_, err = codec.Decrypt(closed, sealed)
		assert.ErrorIs(t, err, vaultDomain.ErrVaultClosed)
	})
}

func TestBlobCodecService_Decrypt_NonArrayPayload(t *testing.T) {
	keyring := newTestKeyring(t, cryptoDomain.AESGCM)
	aead := cryptoService.NewAEADManager()
	codec := NewBlobCodec(aead)

	for _, payload := range []string{`null`, `{"type":"MySQL"}`, `"text"`, `[1,2]`} {
		t.Run(payload, func(t *testing.T) {
			blob := vaultDomain.EncryptedBlob{Version: vaultDomain.BlobVersion, Algorithm: keyring.Algorithm}
			aad, err := blob.AssociatedData(keyring.VaultID)
			require.NoError(t, err)

			require.NoError(t, keyring.WithKey(func(dek []byte) error {
				cipher, err := aead.CreateCipher(dek, blob.Algorithm)
				if err != nil {
					return err
				}
				blob.Ciphertext, blob.Nonce, err = cipher.Encrypt([]byte(payload), aad)
				return err
			}))
			data, err := blob.MarshalBinary()
			require.NoError(t, err)

			_, err = codec.Decrypt(keyring, data)
			assert.ErrorIs(t, err, vaultDomain.ErrTamperOrWrongKey)
		})
	}
}
