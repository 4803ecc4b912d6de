package services

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func validHexKey() string {
	// 32 bytes = 64 hex chars
	return "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
}

func TestNewEncryptor_EmptyKey(t *testing.T) {
	_, err := NewEncryptor("")
	if err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestNewEncryptor_ValidKey(t *testing.T) {
	enc, err := NewEncryptor(validHexKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc == nil {
		t.Fatal("expected non-nil encryptor")
	}
}

func TestNewEncryptor_InvalidHex(t *testing.T) {
	_, err := NewEncryptor("not-hex")
	if err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestNewEncryptor_WrongLength(t *testing.T) {
	// 16 bytes = 32 hex chars (AES-128, not AES-256)
	_, err := NewEncryptor("0123456789abcdef0123456789abcdef")
	if err == nil {
		t.Fatal("expected error for wrong key length")
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor(validHexKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plaintext := []byte("mk_0123456789abcdef0123456789abcdef_secret")

	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}

	// Ciphertext should differ from plaintext
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	// Ciphertext should be longer (nonce + tag overhead)
	if len(ciphertext) <= len(plaintext) {
		t.Fatalf("ciphertext too short: %d <= %d", len(ciphertext), len(plaintext))
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}

	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("decrypted != plaintext: got %q, want %q", decrypted, plaintext)
	}
}

func TestDecrypt_TooShortData(t *testing.T) {
	enc, err := NewEncryptor(validHexKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := enc.Decrypt([]byte("hi")); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	enc, err := NewEncryptor(validHexKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ciphertext, err := enc.Encrypt([]byte("secret data"))
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}

	// Flip one bit in the ciphertext body
	ciphertext[len(ciphertext)-1] ^= 0x01
	if _, err := enc.Decrypt(ciphertext); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc1, _ := NewEncryptor(validHexKey())

	// Different key
	key2 := make([]byte, 32)
	key2[0] = 0xff
	enc2, _ := NewEncryptor(hex.EncodeToString(key2))

	ciphertext, _ := enc1.Encrypt([]byte("secret data"))

	if _, err := enc2.Decrypt(ciphertext); err == nil {
		t.Fatal("expected error when decrypting with the wrong key")
	}
}

func TestEncrypt_UniqueNonces(t *testing.T) {
	enc, _ := NewEncryptor(validHexKey())
	plaintext := []byte("same data")

	ct1, _ := enc.Encrypt(plaintext)
	ct2, _ := enc.Encrypt(plaintext)

	if bytes.Equal(ct1, ct2) {
		t.Fatal("two encryptions of same data should produce different ciphertexts (different nonces)")
	}
}
