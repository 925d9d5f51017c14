package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MinKeyBytes is the smallest accepted HMAC-SHA256 key after base64 decoding.
const MinKeyBytes = 32

var ErrInvalidKey = errors.New("invalid signing key")

// AccessKey signs and verifies access tokens only. It cannot be built from
// a RefreshKey, so the two can never be swapped by mistake.
type AccessKey struct {
	secret []byte
}

// RefreshKey signs and verifies refresh tokens only.
type RefreshKey struct {
	secret []byte
}

// ParseAccessKey decodes a base64 access-token secret.
func ParseAccessKey(encoded string) (AccessKey, error) {
	secret, err := decodeKey("access", encoded)
	if err != nil {
		return AccessKey{}, err
	}
	return AccessKey{secret: secret}, nil
}

// ParseRefreshKey decodes a base64 refresh-token secret.
func ParseRefreshKey(encoded string) (RefreshKey, error) {
	secret, err := decodeKey("refresh", encoded)
	if err != nil {
		return RefreshKey{}, err
	}
	return RefreshKey{secret: secret}, nil
}

func decodeKey(kind, encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: %s key is empty", ErrInvalidKey, kind)
	}
	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s key is not valid base64: %v", ErrInvalidKey, kind, err)
	}
	if len(secret) < MinKeyBytes {
		return nil, fmt.Errorf("%w: %s key must decode to at least %d bytes, got %d", ErrInvalidKey, kind, MinKeyBytes, len(secret))
	}
	return secret, nil
}
