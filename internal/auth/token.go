package auth

import (
	"crypto/rand"
	"fmt"
)

// TokenLength is the number of random characters in session, view and
// confirmation tokens.
const TokenLength = 32

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxUnbiased is the largest multiple of len(tokenAlphabet) below 256.
// Bytes at or above it are discarded so every character is equally likely.
const maxUnbiased = 256 - 256%len(tokenAlphabet)

// GenerateToken returns length characters drawn uniformly from [A-Za-z0-9]
// using crypto/rand. It is safe for concurrent use.
func GenerateToken(length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// SessionToken returns a session token namespaced by login.
func SessionToken(login string) (string, error) {
	tok, err := GenerateToken(TokenLength)
	if err != nil {
		return "", err
	}
	return login + tok, nil
}
