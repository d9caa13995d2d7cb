// FilePath: internal/secrets/secrets.go
package secrets

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize = 32
	version = byte(0x01)
)

var hkdfInfo = []byte("rahub.device.passphrase.v1")

// Cipher encrypts device passphrases at rest. Every device gets its own key,
// derived from the master key and the full device name, and the name is
// bound to the ciphertext so a value copied to another device fails to open.
type Cipher struct {
	master []byte
}

func NewCipher(masterKey string) (*Cipher, error) {
	if len(masterKey) < 16 {
		return nil, fmt.Errorf("master key must be at least 16 bytes, got %d", len(masterKey))
	}
	return &Cipher{master: []byte(masterKey)}, nil
}

// Encrypt returns base64(version | nonce | ciphertext+tag).
func (c *Cipher) Encrypt(plaintext, deviceName string) (string, error) {
	aead, err := c.aead(deviceName)
	if err != nil {
		return "", err
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating random nonce: %w", err)
	}

	out := make([]byte, 1+len(nonce), 1+len(nonce)+len(plaintext)+aead.Overhead())
	out[0] = version
	copy(out[1:], nonce[:])
	out = aead.Seal(out, nonce[:], []byte(plaintext), additionalData(deviceName))

	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(encoded, deviceName string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	if len(raw) < 1+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return "", fmt.Errorf("ciphertext is %d bytes, too short", len(raw))
	}
	if raw[0] != version {
		return "", fmt.Errorf("ciphertext version %d is not supported", raw[0])
	}

	aead, err := c.aead(deviceName)
	if err != nil {
		return "", err
	}

	nonce := raw[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, raw[1+chacha20poly1305.NonceSizeX:], additionalData(deviceName))
	if err != nil {
		return "", fmt.Errorf("decryption failed (wrong key or device name): %w", err)
	}
	return string(plaintext), nil
}

func (c *Cipher) aead(deviceName string) (cipher.AEAD, error) {
	key := make([]byte, keySize)
	reader := hkdf.New(sha256.New, c.master, []byte(deviceName), hkdfInfo)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("deriving device key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	return aead, nil
}

func additionalData(deviceName string) []byte {
	return append([]byte{version}, deviceName...)
}
