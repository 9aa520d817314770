package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// HashSHA512 is the only hash type GetHMAC accepts
const HashSHA512 = iota

var (
	errUnsupportedHashType = errors.New("unsupported hash type")
	errEmptyHMACKey        = errors.New("HMAC key is empty")
)

// Base64Decode takes in a Base64 string and returns a byte array and an error
func Base64Decode(input string) ([]byte, error) {
	result, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Base64Encode takes in a byte array then returns an encoded base64 string
func Base64Encode(input []byte) string {
	return base64.StdEncoding.EncodeToString(input)
}

// Base32Decode decodes an RFC 4648 base32 string. Padding is optional and the
// input is treated case-insensitively, matching how TOTP seeds are shared.
func Base32Decode(input string) ([]byte, error) {
	input = strings.ToUpper(strings.TrimSpace(input))
	input = strings.TrimRight(input, "=")
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(input)
}

// GetSHA256 returns a SHA256 hash of a byte array
func GetSHA256(input []byte) ([]byte, error) {
	sha := sha256.New()
	if _, err := sha.Write(input); err != nil {
		return nil, err
	}
	return sha.Sum(nil), nil
}

// GetHMAC returns a keyed-hash message authentication code using the desired
// hashtype
func GetHMAC(hashType int, input, key []byte) ([]byte, error) {
	var hasher func() hash.Hash

	switch hashType {
	case HashSHA512:
		hasher = sha512.New
	default:
		return nil, fmt.Errorf("%w: %d", errUnsupportedHashType, hashType)
	}

	if len(key) == 0 {
		return nil, errEmptyHMACKey
	}

	h := hmac.New(hasher, key)
	if _, err := h.Write(input); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
