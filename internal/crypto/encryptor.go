package crypto

// Encryptor seals values with optional associated data. The associated data is
// authenticated but not stored, so the same value must be passed to Decrypt.
type Encryptor interface {
	Encrypt(plainText, associatedData []byte) ([]byte, error)
	Decrypt(cipherText, associatedData []byte) ([]byte, error)
}
