package services

import (
	"crypto/rand"
	"fmt"
)

// URL-safe alphabet for shareable session ids
const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

const sessionIDLength = 10

// NewSessionID generates a short, URL-safe session identifier suitable for
// embedding in a shareable link path.
func NewSessionID() (string, error) {
	buf := make([]byte, sessionIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf), nil
}
