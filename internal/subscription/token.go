package subscription

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/svanholten/letterbox/internal/krypto"
)

const (
	tokenLen      = 25
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ErrInvalidToken indicates a string is not a subscription token.
var ErrInvalidToken = errors.New("invalid subscription token")

// Token is a random token that is sent via email. Whoever presents the token
// proves control over the subscribed email address.
//
// The only time a token should be provided in plaintext to the outside world
// is as part of the confirmation email. Tokens should never be exposed in logs.
type Token string

// GenerateToken creates a new random token of tokenLen alphanumeric
// characters. At 25 characters over a 62 character alphabet guessing a live
// token is not feasible.
func GenerateToken() (Token, error) {
	var b strings.Builder
	b.Grow(tokenLen)

	buf := make([]byte, tokenLen*2)
	for b.Len() < tokenLen {
		if _, err := rand.Read(buf); err != nil {
			return Token(""), fmt.Errorf("failed to read random bytes: %w", err)
		}

		for _, c := range buf {
			// Mask to 6 bits and reject values beyond the alphabet, so that
			// every character remains equally likely.
			c &= 0x3f
			if int(c) < len(tokenAlphabet) {
				b.WriteByte(tokenAlphabet[c])
				if b.Len() == tokenLen {
					break
				}
			}
		}
	}

	return Token(b.String()), nil
}

// ParseToken parses a token from a string. Strings that could never have been
// produced by GenerateToken are rejected.
func ParseToken(raw string) (Token, error) {
	if len(raw) != tokenLen {
		return Token(""), ErrInvalidToken
	}

	for i := 0; i < len(raw); i++ {
		if strings.IndexByte(tokenAlphabet, raw[i]) < 0 {
			return Token(""), ErrInvalidToken
		}
	}

	return Token(raw), nil
}

// String returns the string representation of the token. As opposed to other
// secrets this is allowed, we need to embed tokens in confirmation links.
func (t Token) String() string {
	return string(t)
}

// LogValue implements the slog.Valuer interface.
func (t Token) LogValue() slog.Value {
	return slog.StringValue(krypto.SecretMarker)
}

// SubscriptionToken links a confirmation token to a pending subscriber.
// It is stored alongside the subscriber and destroyed when consumed.
type SubscriptionToken struct {
	SubscriberID uuid.UUID
	Token        Token
}
