package utils

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

func GenerateUUIDString() string {
	return uuid.New().String()
}

// GenerateSessionToken returns an opaque access token for a new session.
func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// GenerateState returns a random url-safe value for the OAuth state parameter.
func GenerateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
