package session

import (
	"errors"
	"net/http"
	"time"
)

// Tier is the access level an operation requires.
type Tier int

const (
	// Ordinary admits any logged-in member.
	Ordinary Tier = iota
	// Privileged admits only tokens issued to officers.
	Privileged
)

func (t Tier) String() string {
	if t == Privileged {
		return "privileged"
	}
	return "ordinary"
}

var (
	// ErrNotAuthenticated covers absent, undecodable, forged and expired
	// state alike. Callers cannot tell these apart.
	ErrNotAuthenticated = errors.New("session: not authenticated")

	// ErrPermissionDenied means a valid token lacks the required tier.
	ErrPermissionDenied = errors.New("session: permission denied")
)

// Extractor recovers and checks the session on every request. It holds no
// per-request state and is safe for concurrent use.
type Extractor struct {
	codec *Codec
	now   func() time.Time
}

// NewExtractor creates an extractor using the wall clock.
func NewExtractor(codec *Codec) *Extractor {
	return &Extractor{codec: codec, now: time.Now}
}

// WithClock returns a copy of the extractor reading time from now.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	cp := *e
	cp.now = now
	return &cp
}

// Extract validates raw transport state against tier. present reports
// whether the client sent any state at all.
func (e *Extractor) Extract(state string, present bool, tier Tier) (Token, error) {
	if !present {
		return Token{}, ErrNotAuthenticated
	}

	tok, err := e.codec.Open(state)
	if err != nil {
		return Token{}, ErrNotAuthenticated
	}

	if !tok.IsValid(e.now()) {
		return Token{}, ErrNotAuthenticated
	}

	if tier == Privileged && !tok.IsOfficer {
		return Token{}, ErrPermissionDenied
	}

	return tok, nil
}

// FromRequest reads the session cookie from r and calls Extract.
func (e *Extractor) FromRequest(r *http.Request, tier Tier) (Token, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return e.Extract("", false, tier)
	}
	return e.Extract(c.Value, true, tier)
}

// Ordinary is FromRequest at the ordinary tier.
func (e *Extractor) Ordinary(r *http.Request) (Token, error) {
	return e.FromRequest(r, Ordinary)
}

// Privileged is FromRequest at the privileged tier.
func (e *Extractor) Privileged(r *http.Request) (Token, error) {
	return e.FromRequest(r, Privileged)
}
