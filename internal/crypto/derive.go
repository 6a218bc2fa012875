package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a purpose-bound subkey from the master secret via
// HKDF-SHA256. The purpose string separates key domains: a leaked movement
// key never exposes the master or sibling keys, and every server process
// derives identical subkeys from the same master.
func DeriveKey(master []byte, purpose string, size int) ([]byte, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("derive %q key: empty master secret", purpose)
	}
	if size <= 0 {
		return nil, fmt.Errorf("derive %q key: invalid size %d", purpose, size)
	}

	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("derive %q key: %w", purpose, err)
	}
	return key, nil
}
