package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewCode builds a 28-char opaque business code: 10 decimal digits
// (seconds, zero-padded) followed by 18 uppercase hex characters.
func NewCode(unixSeconds int64) (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code token: %w", err)
	}
	token := hex.EncodeToString(buf)
	upper := make([]byte, len(token))
	for i, c := range []byte(token) {
		if c >= 'a' && c <= 'f' {
			upper[i] = c - 'a' + 'A'
		} else {
			upper[i] = c
		}
	}
	return fmt.Sprintf("%010d%s", unixSeconds, upper), nil
}
