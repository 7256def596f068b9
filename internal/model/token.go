package model

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// TokenSize is the number of random bytes in a family token.
const TokenSize = 16

// ErrInvalidToken is returned when a string is not a hex-encoded token.
var ErrInvalidToken = errors.New("invalid family token")

// Token is the capability shared by every row of a family. Possession of it
// grants full control over the family.
type Token [TokenSize]byte

// NewToken returns a fresh random token.
func NewToken() (Token, error) {
	var t Token
	if _, err := rand.Read(t[:]); err != nil {
		return Token{}, fmt.Errorf("read random: %w", err)
	}
	return t, nil
}

// ParseToken decodes a hex-rendered token.
func ParseToken(s string) (Token, error) {
	var t Token
	if len(s) != hex.EncodedLen(TokenSize) {
		return Token{}, ErrInvalidToken
	}
	if _, err := hex.Decode(t[:], []byte(s)); err != nil {
		return Token{}, ErrInvalidToken
	}
	return t, nil
}

// String renders the token as lowercase hex.
func (t Token) String() string {
	return hex.EncodeToString(t[:])
}

// Prefix returns the first 8 hex characters, safe for logs.
func (t Token) Prefix() string {
	return t.String()[:8]
}

// IsZero reports whether t was never assigned.
func (t Token) IsZero() bool {
	return t == Token{}
}
