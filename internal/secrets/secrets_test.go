package secrets

import (
	"testing"

	"github.com/matryer/is"
)

func TestEncryptDecrypt(t *testing.T) {
	is := is.New(t)
	c, err := NewCipher("0123456789abcdef-master")
	is.NoErr(err)

	encrypted, err := c.Encrypt("hunter2", "joe:meteo")
	is.NoErr(err)
	is.True(encrypted != "hunter2")

	again, err := c.Encrypt("hunter2", "joe:meteo")
	is.NoErr(err)
	is.True(again != encrypted) // random nonce

	plain, err := c.Decrypt(encrypted, "joe:meteo")
	is.NoErr(err)
	is.Equal(plain, "hunter2")
}

func TestDecryptIsBoundToDeviceName(t *testing.T) {
	is := is.New(t)
	c, err := NewCipher("0123456789abcdef-master")
	is.NoErr(err)

	encrypted, err := c.Encrypt("hunter2", "joe:meteo")
	is.NoErr(err)

	_, err = c.Decrypt(encrypted, "joe:other")
	is.True(err != nil)

	other, err := NewCipher("another-master-key-0000")
	is.NoErr(err)
	_, err = other.Decrypt(encrypted, "joe:meteo")
	is.True(err != nil)
}

func TestRejectsShortKeyAndGarbage(t *testing.T) {
	is := is.New(t)

	_, err := NewCipher("short")
	is.True(err != nil)

	c, err := NewCipher("0123456789abcdef-master")
	is.NoErr(err)
	_, err = c.Decrypt("not base64!", "joe:meteo")
	is.True(err != nil)
	_, err = c.Decrypt("AAAA", "joe:meteo")
	is.True(err != nil)
}
