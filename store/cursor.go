package store

import (
	"encoding/base64"
	"fmt"
)

// EncodeToken wraps a sort-key value into an opaque pagination token.
func EncodeToken(sortKeyValue string) string {
	return base64.StdEncoding.EncodeToString([]byte(sortKeyValue))
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return string(raw), nil
}
