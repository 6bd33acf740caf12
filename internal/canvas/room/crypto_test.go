package room

import (
	"bytes"
	"errors"
	"testing"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey() error = %v", err)
	}
	if len(key) != KeySize {
		t.Fatalf("NewKey() length = %d, want %d", len(key), KeySize)
	}

	blob, err := SealKey("server-secret", key)
	if err != nil {
		t.Fatalf("SealKey() error = %v", err)
	}
	if bytes.Contains(blob, key) {
		t.Fatal("sealed blob contains the plaintext key")
	}

	got, err := OpenKey("server-secret", blob)
	if err != nil {
		t.Fatalf("OpenKey() error = %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatal("OpenKey() did not recover the original key")
	}
}

func TestOpenKeyRotatedSecret(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey() error = %v", err)
	}
	blob, err := SealKey("old-secret", key)
	if err != nil {
		t.Fatalf("SealKey() error = %v", err)
	}

	_, err = OpenKey("new-secret", blob)
	if !apperrors.IsCode(err, apperrors.CodeRoomCredentialUnavailable) {
		t.Fatalf("OpenKey() with rotated secret error = %v, want %s", err, apperrors.CodeRoomCredentialUnavailable)
	}
}

func TestOpenKeyCorruptBlob(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey() error = %v", err)
	}
	blob, err := SealKey("secret", key)
	if err != nil {
		t.Fatalf("SealKey() error = %v", err)
	}
	blob[len(blob)-1] ^= 0xff

	_, err = OpenKey("secret", blob)
	if !apperrors.IsCode(err, apperrors.CodeRoomCredentialUnavailable) {
		t.Fatalf("OpenKey() with corrupt blob error = %v, want %s", err, apperrors.CodeRoomCredentialUnavailable)
	}
}

func TestOpenKeyShortBlob(t *testing.T) {
	_, err := OpenKey("secret", []byte{1, 2, 3})
	if !errors.Is(err, ErrRoomCiphertextMalformed) {
		t.Fatalf("OpenKey() with short blob error = %v, want %v", err, ErrRoomCiphertextMalformed)
	}
}

func TestSealKeyValidation(t *testing.T) {
	if _, err := SealKey("", make([]byte, KeySize)); !errors.Is(err, ErrRoomSecretMissing) {
		t.Errorf("SealKey() without secret error = %v, want %v", err, ErrRoomSecretMissing)
	}
	if _, err := SealKey("secret", make([]byte, 16)); !errors.Is(err, ErrRoomKeyInvalidLength) {
		t.Errorf("SealKey() with short key error = %v, want %v", err, ErrRoomKeyInvalidLength)
	}
}
