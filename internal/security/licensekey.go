package security

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// License keys are four dash-separated groups of four characters drawn
// from an unambiguous uppercase alphabet (no O/0 or I/1 confusion).
const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var keyPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func GenerateLicenseKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate license key: %w", err)
	}

	var b strings.Builder
	for i, c := range buf {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(keyAlphabet[int(c)%len(keyAlphabet)])
	}
	return b.String(), nil
}

func ValidLicenseKey(key string) bool {
	return keyPattern.MatchString(key)
}
