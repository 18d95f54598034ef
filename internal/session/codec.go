package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the client-side cookie holding the sealed token.
	CookieName = "UserSesh"

	// MinSecretLen is the shortest accepted HMAC key.
	MinSecretLen = 32
)

// ErrShortSecret is returned by NewCodec for keys below MinSecretLen.
var ErrShortSecret = fmt.Errorf("session: secret must be at least %d bytes", MinSecretLen)

// claims makes a Token usable as a JWT payload without adding registered
// claims, so the payload stays exactly the token's wire form. Expiry is
// enforced by Token.IsValid, not by the JWT validator.
type claims struct {
	tok Token
}

func (c claims) MarshalJSON() ([]byte, error) {
	return Serialize(c.tok), nil
}

func (c *claims) UnmarshalJSON(b []byte) error {
	tok, err := Deserialize(b)
	if err != nil {
		return err
	}
	c.tok = tok
	return nil
}

func (claims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (claims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (claims) GetIssuer() (string, error)                   { return "", nil }
func (claims) GetSubject() (string, error)                  { return "", nil }
func (claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Codec seals tokens into tamper-evident cookie values (HS256 JWTs) and
// opens them again. The payload is readable by the front end, which uses
// it to decide whether to show the member as logged in.
type Codec struct {
	key    []byte
	secure bool
	parser *jwt.Parser
}

// NewCodec creates a codec signing with secret. secure marks issued
// cookies as HTTPS-only.
func NewCodec(secret []byte, secure bool) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrShortSecret
	}
	return &Codec{
		key:    append([]byte(nil), secret...),
		secure: secure,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Seal signs the token.
func (c *Codec) Seal(t Token) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{tok: t}).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return s, nil
}

// Open verifies the signature and decodes the token. It does not check expiry.
func (c *Codec) Open(value string) (Token, error) {
	var cl claims
	tok, err := c.parser.ParseWithClaims(value, &cl, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return Token{}, fmt.Errorf("failed to open session: %w", err)
	}
	if !tok.Valid {
		return Token{}, errors.New("failed to open session: invalid token")
	}
	return cl.tok, nil
}

// Cookie builds the Set-Cookie value for t. Client scripts can read it; it
// expires together with the token.
func (c *Codec) Cookie(t Token) (*http.Cookie, error) {
	value, err := c.Seal(t)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  t.ExpiresAt(),
		HttpOnly: false,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie returns a cookie that deletes the session on the client.
func (c *Codec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
