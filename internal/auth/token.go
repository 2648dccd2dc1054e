// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/januscore/janus-cli/internal/config"
	"github.com/januscore/janus-cli/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a stored value as encrypted
// (format: ENC:base64(salt|nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// NonceSize is the nonce/IV size for AES-GCM (12 bytes / 96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size (32 bytes / 256 bits).
const KeySize = 32

// SaltSize is the key derivation salt size (32 bytes).
const SaltSize = 32

// SecretSize is the machine-local secret size (32 bytes).
const SecretSize = 32

// PBKDF2Iterations is the iteration count for PBKDF2-SHA-256 key derivation.
// OWASP 2023 recommends 600,000+ for PBKDF2-SHA-256.
const PBKDF2Iterations = 600000

const (
	tokenFile  = "token"
	secretFile = "token.key"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoToken indicates no stored session token exists.
	ErrNoToken = errors.New("no stored session token: run 'janus login'")
	// ErrInvalidToken indicates the token file format is invalid.
	ErrInvalidToken = errors.New("invalid token file format")
	// ErrDecryptionFailed indicates decryption failed (wrong secret or
	// tampered data).
	ErrDecryptionFailed = errors.New("token decryption failed: authentication tag mismatch")
)

// =============================================================================
// SECURITY HELPER FUNCTIONS
// =============================================================================

// ZeroBytes securely zeros sensitive byte slices to prevent memory
// disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// TOKEN STORE
// =============================================================================

// Store persists the backend session token encrypted at rest.
type Store struct {
	dir string
}

// NewStore creates a token store rooted at the config directory.
func NewStore() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// NewStoreAt creates a token store rooted at an explicit directory.
// Used by tests.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) tokenPath() string  { return filepath.Join(s.dir, tokenFile) }
func (s *Store) secretPath() string { return filepath.Join(s.dir, secretFile) }

// HasToken reports whether a stored token exists.
func (s *Store) HasToken() bool {
	_, err := os.Stat(s.tokenPath())
	return err == nil
}

// SaveToken encrypts the token and writes it to disk. A fresh salt and
// nonce are used on every save.
// SECURITY: Both the token and secret files are written with 0600 permissions.
func (s *Store) SaveToken(token string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	secret, err := s.loadOrCreateSecret()
	if err != nil {
		return err
	}
	defer ZeroBytes(secret)

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(secret, salt)
	defer ZeroBytes(key)

	aead, err := newAEAD(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Envelope layout: salt || nonce || ciphertext || tag
	sealed := aead.Seal(nil, nonce, []byte(token), nil)
	envelope := make([]byte, 0, SaltSize+NonceSize+len(sealed))
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = append(envelope, sealed...)

	data := []byte(EncryptedPrefix + base64.StdEncoding.EncodeToString(envelope))

	// RELIABILITY: Atomic write with fsync prevents a half-written token file
	if err := util.AtomicWriteFile(s.tokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadToken reads and decrypts the stored token.
func (s *Store) LoadToken() (string, error) {
	data, err := os.ReadFile(s.tokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, EncryptedPrefix) {
		return "", ErrInvalidToken
	}

	envelope, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(content, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: bad base64: %v", ErrInvalidToken, err)
	}
	if len(envelope) < SaltSize+NonceSize {
		return "", ErrInvalidToken
	}

	secret, err := s.loadSecret()
	if err != nil {
		return "", err
	}
	defer ZeroBytes(secret)

	salt := envelope[:SaltSize]
	nonce := envelope[SaltSize : SaltSize+NonceSize]
	sealed := envelope[SaltSize+NonceSize:]

	key := deriveKey(secret, salt)
	defer ZeroBytes(key)

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	token := string(plaintext)
	ZeroBytes(plaintext)
	return token, nil
}

// ClearToken removes the stored token. The machine-local secret is kept so
// a later login reuses it. Missing files are not an error.
func (s *Store) ClearToken() error {
	if err := os.Remove(s.tokenPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// =============================================================================
// KEY MATERIAL
// =============================================================================

// loadOrCreateSecret returns the machine-local secret, generating one on
// first use. Callers must zero the returned slice.
func (s *Store) loadOrCreateSecret() ([]byte, error) {
	secret, err := s.loadSecret()
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	secret = make([]byte, SecretSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	if err := util.AtomicWriteFile(s.secretPath(), secret, 0600); err != nil {
		ZeroBytes(secret)
		return nil, fmt.Errorf("failed to write secret file: %w", err)
	}
	return secret, nil
}

func (s *Store) loadSecret() ([]byte, error) {
	secret, err := os.ReadFile(s.secretPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
	if len(secret) != SecretSize {
		return nil, fmt.Errorf("secret file has wrong size: got %d, want %d", len(secret), SecretSize)
	}
	return secret, nil
}

// deriveKey derives an AES-256 key from the machine secret and a per-save
// salt using PBKDF2-SHA-256 (NIST SP 800-132).
func deriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, PBKDF2Iterations, KeySize, sha256.New)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}
