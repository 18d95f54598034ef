// Package session implements the self-describing login session carried by
// the client: the token itself, its signed cookie form, and the request
// guard that recovers it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Lifetime is how long a token stays valid after issuance.
const Lifetime = 30 * 24 * time.Hour

// ErrDecode is returned when serialized token bytes cannot be decoded.
var ErrDecode = errors.New("session: malformed token")

// Token is a bearer capability identifying a member and whether they were
// an officer when it was issued. It is never mutated after creation and is
// not checked against the account again.
type Token struct {
	User      int64  `json:"user"`
	Length    uint64 `json:"length"`
	IsOfficer bool   `json:"is_officer"`
	Start     uint64 `json:"start"`
}

// New issues a token for user starting now.
func New(user int64, isOfficer bool) Token {
	return NewAt(user, isOfficer, time.Now())
}

// NewAt issues a token starting at the given instant.
func NewAt(user int64, isOfficer bool, now time.Time) Token {
	return Token{
		User:      user,
		Length:    uint64(Lifetime / time.Second),
		IsOfficer: isOfficer,
		Start:     unixSeconds(now),
	}
}

// IsValid reports whether now falls before Start+Length. The bound is exclusive.
func (t Token) IsValid(now time.Time) bool {
	return unixSeconds(now) < t.Start+t.Length
}

// ExpiresAt returns the first instant at which the token is no longer valid.
func (t Token) ExpiresAt() time.Time {
	return time.Unix(int64(t.Start+t.Length), 0)
}

// Serialize encodes the token in its wire form:
// {"user":..,"length":..,"is_officer":..,"start":..}.
func Serialize(t Token) []byte {
	b, err := json.Marshal(t)
	if err != nil {
		// Four scalar fields always marshal.
		panic(err)
	}
	return b
}

// wireToken mirrors Token with pointers so absent fields can be detected.
type wireToken struct {
	User      *int64  `json:"user"`
	Length    *uint64 `json:"length"`
	IsOfficer *bool   `json:"is_officer"`
	Start     *uint64 `json:"start"`
}

// Deserialize decodes the wire form. Every field is required; failures wrap ErrDecode.
func Deserialize(b []byte) (Token, error) {
	var w wireToken
	if err := json.Unmarshal(b, &w); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	switch {
	case w.User == nil:
		return Token{}, fmt.Errorf("%w: missing field user", ErrDecode)
	case w.Length == nil:
		return Token{}, fmt.Errorf("%w: missing field length", ErrDecode)
	case w.IsOfficer == nil:
		return Token{}, fmt.Errorf("%w: missing field is_officer", ErrDecode)
	case w.Start == nil:
		return Token{}, fmt.Errorf("%w: missing field start", ErrDecode)
	}
	return Token{
		User:      *w.User,
		Length:    *w.Length,
		IsOfficer: *w.IsOfficer,
		Start:     *w.Start,
	}, nil
}

func unixSeconds(t time.Time) uint64 {
	s := t.Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}
