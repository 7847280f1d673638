package crypto

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// SecretPrefix marks option values sealed by a KeyStore: "enc:v{N}:{base64}".
const SecretPrefix = "enc:"

// KeyStore holds one encryptor per key version. New values are sealed with the
// current version; older versions stay readable so keys can be rotated.
type KeyStore struct {
	encryptors map[int]Encryptor
	current    int
}

func NewAESKeyStore(current int, keys map[int][]byte) (*KeyStore, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	ks := &KeyStore{
		encryptors: make(map[int]Encryptor, len(keys)),
		current:    current,
	}

	for ver, key := range keys {
		enc, err := NewAESEncryptor(key)
		if err != nil {
			return nil, fmt.Errorf("key v%d: %w", ver, err)
		}
		ks.encryptors[ver] = enc
	}

	if _, ok := ks.encryptors[current]; !ok {
		return nil, fmt.Errorf("%w: v%d", ErrUnknownKeyVersion, current)
	}

	return ks, nil
}

func (ks *KeyStore) Current() int {
	return ks.current
}

// EncryptString seals plain with the current key. scope is bound as associated
// data, so a value sealed for one option cannot be replayed into another.
func (ks *KeyStore) EncryptString(plain, scope string) (string, error) {
	enc := ks.encryptors[ks.current]
	ct, err := enc.Encrypt([]byte(plain), []byte(scope))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sv%d:%s", SecretPrefix, ks.current, base64.StdEncoding.EncodeToString(ct)), nil
}

// DecryptString opens a value produced by EncryptString. Values without the
// prefix are returned unchanged; they were saved before encryption was enabled.
func (ks *KeyStore) DecryptString(value, scope string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	rest := strings.TrimPrefix(value, SecretPrefix)
	verPart, payload, ok := strings.Cut(rest, ":")
	if !ok || !strings.HasPrefix(verPart, "v") {
		return "", ErrMalformedSecret
	}

	ver, err := strconv.Atoi(strings.TrimPrefix(verPart, "v"))
	if err != nil {
		return "", ErrMalformedSecret
	}

	enc, ok := ks.encryptors[ver]
	if !ok {
		return "", fmt.Errorf("%w: v%d", ErrUnknownKeyVersion, ver)
	}

	ct, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrMalformedSecret
	}

	plain, err := enc.Decrypt(ct, []byte(scope))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, SecretPrefix)
}
