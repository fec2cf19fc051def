package domain

import (
	"sync"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
)

// Keyring holds an unwrapped DEK for the lifetime of an unlocked vault.
//
// The key lives in a memguard enclave (encrypted at rest in process memory) and
// is only decrypted into a locked buffer for the duration of WithKey.
type Keyring struct {
	VaultID   uuid.UUID
	Algorithm Algorithm

	mu      sync.RWMutex
	enclave *memguard.Enclave
}

// NewKeyring seals dek into an enclave. The dek slice is wiped.
func NewKeyring(vaultID uuid.UUID, alg Algorithm, dek []byte) (*Keyring, error) {
	if len(dek) != KeySize {
		Zero(dek)
		return nil, ErrInvalidKeySize
	}
	return &Keyring{
		VaultID:   vaultID,
		Algorithm: alg,
		enclave:   memguard.NewEnclave(dek),
	}, nil
}

// WithKey calls fn with the plaintext DEK. The slice must not be retained.
func (k *Keyring) WithKey(fn func(dek []byte) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.enclave == nil {
		return ErrKeyringClosed
	}

	buf, err := k.enclave.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Close drops the enclave. Further WithKey calls fail with ErrKeyringClosed.
func (k *Keyring) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.enclave = nil
}

// Closed reports whether Close has been called.
func (k *Keyring) Closed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.enclave == nil
}
