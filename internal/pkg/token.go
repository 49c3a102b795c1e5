package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// NewSessionToken returns 32 lowercase hex characters from a random v4 UUID.
func NewSessionToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
