// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
//
// Transactions are authenticated with a keyed digest (HMAC-SHA256) using the
// private key material held by the source wallet. This is a symmetric scheme:
// anyone able to verify a tag is also able to produce one.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// ZeroHash represents a hash code of zeros. It is used as the previous hash
// for the first block in the chain.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// ErrEmptyKey is returned when signing is attempted without key material.
var ErrEmptyKey = errors.New("signing key is empty")

// =============================================================================

// Hash returns the hex encoded sha256 digest of the data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString returns the hex encoded sha256 digest of the string.
func HashString(s string) string {
	return Hash([]byte(s))
}

// Digest returns the content hash for the value. The value is marshaled to
// JSON first, so the field order of the value's type is part of the hash.
func Digest(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return Hash(data), nil
}

// Sign produces the keyed digest of the value using the specified private
// key material.
func Sign(value any, privateKey string) (string, error) {
	if privateKey == "" {
		return "", ErrEmptyKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return keyed(data, privateKey), nil
}

// Verify recomputes the keyed digest for the value and compares it with the
// provided tag. Any failure to reproduce the tag is reported as false.
func Verify(value any, privateKey string, tag string) bool {
	computed, err := Sign(value, privateKey)
	if err != nil {
		return false
	}

	return hmac.Equal([]byte(computed), []byte(tag))
}

// =============================================================================

// keyed returns the hex encoded HMAC-SHA256 of the data.
func keyed(data []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}
