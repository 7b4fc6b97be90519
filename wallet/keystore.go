package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for seed encryption.
const (
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // KiB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32
)

// Keystore layout: salt(16) || nonce(12) || AES-GCM(seed || sha256(seed)[:4]).
const (
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// KeystorePath returns the keystore location inside dataDir.
func KeystorePath(dataDir string) string {
	return filepath.Join(dataDir, "wallet.enc")
}

func seedCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seedChecksum(seed []byte) []byte {
	sum := sha256.Sum256(seed)
	return sum[:ChecksumLen]
}

// EncryptSeed seals seed under password with Argon2id and AES-256-GCM.
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	out := make([]byte, SaltLen+NonceLen, SaltLen+NonceLen+len(seed)+ChecksumLen+16)
	if _, err := rand.Read(out[:SaltLen+NonceLen]); err != nil {
		return nil, fmt.Errorf("wallet: generate salt and nonce: %w", err)
	}
	aead, err := seedCipher(password, out[:SaltLen])
	if err != nil {
		return nil, fmt.Errorf("wallet: cipher setup: %w", err)
	}

	plaintext := append(append([]byte{}, seed...), seedChecksum(seed)...)
	return aead.Seal(out, out[SaltLen:SaltLen+NonceLen], plaintext, nil), nil
}

// DecryptSeed opens a blob produced by EncryptSeed.
func DecryptSeed(encrypted []byte, password string) ([]byte, error) {
	if len(encrypted) < SaltLen+NonceLen+ChecksumLen {
		return nil, ErrDecryptionFailed
	}
	salt := encrypted[:SaltLen]
	nonce := encrypted[SaltLen : SaltLen+NonceLen]

	aead, err := seedCipher(password, salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := aead.Open(nil, nonce, encrypted[SaltLen+NonceLen:], nil)
	if err != nil || len(plaintext) <= ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	seed := plaintext[:len(plaintext)-ChecksumLen]
	if subtle.ConstantTimeCompare(plaintext[len(seed):], seedChecksum(seed)) != 1 {
		return nil, ErrChecksumMismatch
	}
	return seed, nil
}

// SaveKeystore encrypts seed to path. An existing keystore is never
// overwritten.
func SaveKeystore(path string, seed []byte, password string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrKeystoreExists, path)
	}
	blob, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeystoreExists, path)
		}
		return fmt.Errorf("wallet: create keystore: %w", err)
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		return fmt.Errorf("wallet: write keystore: %w", err)
	}
	return f.Close()
}

// LoadKeystore reads and decrypts the seed stored at path.
func LoadKeystore(path, password string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeystoreNotFound, path)
		}
		return nil, fmt.Errorf("wallet: read keystore: %w", err)
	}
	return DecryptSeed(blob, password)
}
