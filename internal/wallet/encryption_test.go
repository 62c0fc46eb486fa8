package wallet

import (
	"bytes"
	"testing"
)

// testParams keeps Argon2id cheap in tests.
func testParams() EncryptionParams {
	return EncryptionParams{Memory: 1024, Iterations: 1, Parallelism: 1}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	plaintext := []byte(validPhrase)
	password := []byte("hunter2")

	encrypted, err := Encrypt(plaintext, password, testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Contains(encrypted, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := Decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	encrypted, err := Encrypt([]byte(validPhrase), []byte("correct"), testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := Decrypt(encrypted, []byte("wrong")); err == nil {
		t.Error("Decrypt() with wrong password should fail")
	}
}

func TestDecrypt_Truncated(t *testing.T) {
	if _, err := Decrypt([]byte("too short"), []byte("pw")); err == nil {
		t.Error("Decrypt() of truncated data should fail")
	}
}

func TestDecrypt_Corrupted(t *testing.T) {
	encrypted, err := Encrypt([]byte(validPhrase), []byte("pw"), testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	encrypted[len(encrypted)-1] ^= 0xff

	if _, err := Decrypt(encrypted, []byte("pw")); err == nil {
		t.Error("Decrypt() of corrupted data should fail")
	}
}
