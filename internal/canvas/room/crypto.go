package room

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

// KeySize is the room key length in bytes (AES-256).
const KeySize = 32

var (
	// ErrRoomSecretMissing indicates the server secret is not configured.
	ErrRoomSecretMissing = apperrors.New(apperrors.CodeRoomSecretMissing, "room secret is required")
	// ErrRoomKeyInvalidLength indicates a room key of the wrong size.
	ErrRoomKeyInvalidLength = apperrors.New(apperrors.CodeRoomKeyInvalidLength, "room key must be 32 bytes")
	// ErrRoomCiphertextMalformed indicates a sealed blob too short to parse.
	ErrRoomCiphertextMalformed = apperrors.New(apperrors.CodeRoomCiphertextMalformed, "sealed room key blob is malformed")
)

// NewKey generates a fresh random room key.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate room key: %w", err)
	}
	return key, nil
}

// deriveKey hashes the server secret so it can be any length or format.
func deriveKey(secret string) [sha256.Size]byte {
	return sha256.Sum256([]byte(secret))
}

func newGCM(secret string) (cipher.AEAD, error) {
	derived := deriveKey(secret)
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}

// SealKey encrypts a room key under the server secret. The blob layout is
// nonce, then auth tag, then ciphertext.
func SealKey(secret string, key []byte) ([]byte, error) {
	if secret == "" {
		return nil, ErrRoomSecretMissing
	}
	if len(key) != KeySize {
		return nil, ErrRoomKeyInvalidLength
	}

	gcm, err := newGCM(secret)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, key, nil)
	tagStart := len(sealed) - gcm.Overhead()

	blob := make([]byte, 0, len(nonce)+len(sealed))
	blob = append(blob, nonce...)
	blob = append(blob, sealed[tagStart:]...)
	blob = append(blob, sealed[:tagStart]...)
	return blob, nil
}

// OpenKey decrypts a sealed room key blob. Any failure to authenticate,
// including a rotated secret or a truncated blob, reports the room as
// unavailable rather than crashing or denying access.
func OpenKey(secret string, blob []byte) ([]byte, error) {
	if secret == "" {
		return nil, ErrRoomSecretMissing
	}

	gcm, err := newGCM(secret)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	tagSize := gcm.Overhead()
	if len(blob) < nonceSize+tagSize {
		return nil, ErrRoomCiphertextMalformed
	}

	nonce := blob[:nonceSize]
	tag := blob[nonceSize : nonceSize+tagSize]
	ciphertext := blob[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	key, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRoomCredentialUnavailable, "room key decryption failed", err)
	}
	return key, nil
}
