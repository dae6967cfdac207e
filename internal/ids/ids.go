package ids

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	ErrInvalidAdminID = errors.New("invalid admin id")
	letterRunes       = []rune("abcdefghijklmnopqrstuvwxyz1234567890")
)

// EncodeAdminID derives the admin identifier from a username: the
// lower-cased, trimmed name, base64 encoded with padding stripped. This is
// an attribution label, not a credential; it is reversible and collisions
// are possible by design.
func EncodeAdminID(username string) string {
	normalized := strings.ToLower(strings.TrimSpace(username))
	return strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(normalized)), "=")
}

// DecodeAdminID reverses EncodeAdminID, restoring stripped padding.
func DecodeAdminID(adminID string) (string, error) {
	if adminID == "" {
		return "", ErrInvalidAdminID
	}
	if pad := len(adminID) % 4; pad != 0 {
		adminID += strings.Repeat("=", 4-pad)
	}
	username, err := base64.StdEncoding.DecodeString(adminID)
	if err != nil {
		return "", ErrInvalidAdminID
	}
	return string(username), nil
}

// NewMatchID generates a unique match document key.
func NewMatchID() string {
	return fmt.Sprintf("match_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

func randomSuffix(l int) string {
	b := make([]rune, l)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}
