package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
)

type aesGCMEncryptor struct {
	aead cipher.AEAD
}

func NewAESEncryptor(key []byte) (Encryptor, error) {
	if !ValidateAESKey(key) {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidKeySize
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrInvalidKeySize
	}

	return &aesGCMEncryptor{aead: gcm}, nil
}

// Encrypt returns nonce||ciphertext.
func (e *aesGCMEncryptor) Encrypt(plainText, associatedData []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plainText)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, ErrEncryptionFail
	}
	return e.aead.Seal(nonce, nonce, plainText, associatedData), nil
}

func (e *aesGCMEncryptor) Decrypt(cipherText, associatedData []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(cipherText) < nonceSize+e.aead.Overhead() {
		return nil, ErrDecryptionFail
	}

	plain, err := e.aead.Open(nil, cipherText[:nonceSize], cipherText[nonceSize:], associatedData)
	if err != nil {
		return nil, ErrDecryptionFail
	}

	return plain, nil
}

func ValidateAESKey(key []byte) bool {
	switch len(key) {
	case 16, 24, 32:
		return true
	default:
		return false
	}
}
