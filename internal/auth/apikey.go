// internal/auth/apikey.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

const apiKeyPrefix = "mkd_" // nolint:gosec // API key prefix identifier, not a secret
const apiKeySecretLength = 32

// ErrAPIKeyGeneration is returned when the system entropy source fails.
var ErrAPIKeyGeneration = errors.New("failed to generate api key components")

// GenerateAPIKey produces a new endpoint API key: a fixed prefix followed by
// 32 random bytes in URL-safe base64. The value is stored and compared as-is.
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, apiKeySecretLength)
	if _, err := rand.Read(randomBytes); err != nil {
		customLog.Warnf("Failed to generate random bytes for API key: %v", err)
		return "", ErrAPIKeyGeneration
	}
	secret := base64.RawURLEncoding.EncodeToString(randomBytes)
	return apiKeyPrefix + secret, nil
}

// APIKeyEquals compares a presented key against the stored one in constant
// time.
func APIKeyEquals(stored, presented string) bool {
	if len(stored) == 0 || len(stored) != len(presented) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
