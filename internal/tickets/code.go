package tickets

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// Ticket code format: "ING-" followed by 8 uppercase alphanumerics. Short
// enough to type at the door, high enough entropy to be unguessable.
const (
	codePrefix  = "ING-"
	codeLength  = 8
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var codePattern = regexp.MustCompile(`^ING-[A-Z0-9]{8}$`)

// GenerateCode produces a new random ticket code.
func GenerateCode() (string, error) {
	bytes := make([]byte, codeLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate ticket code: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(codePrefix)
	for _, b := range bytes {
		sb.WriteByte(codeCharset[int(b)%len(codeCharset)])
	}
	return sb.String(), nil
}

// IsValidCode reports whether s matches the ticket code format.
func IsValidCode(s string) bool {
	return codePattern.MatchString(s)
}
