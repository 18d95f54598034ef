package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seal(t *testing.T, c *Codec, tok Token) string {
	t.Helper()
	s, err := c.Seal(tok)
	require.NoError(t, err)
	return s
}

func TestExtract(t *testing.T) {
	c := newTestCodec(t)
	issued := time.Unix(1_700_000_000, 0)
	member := NewAt(1, false, issued)
	officer := NewAt(2, true, issued)
	expiry := member.ExpiresAt()

	tests := []struct {
		name    string
		state   string
		present bool
		tier    Tier
		now     time.Time
		want    Token
		wantErr error
	}{
		{"absent", "", false, Ordinary, issued, Token{}, ErrNotAuthenticated},
		{"absent privileged", "", false, Privileged, issued, Token{}, ErrNotAuthenticated},
		{"empty value", "", true, Ordinary, issued, Token{}, ErrNotAuthenticated},
		{"garbage", "not-a-token", true, Ordinary, issued, Token{}, ErrNotAuthenticated},
		{"member ordinary", seal(t, c, member), true, Ordinary, issued, member, nil},
		{"member last second", seal(t, c, member), true, Ordinary, expiry.Add(-time.Second), member, nil},
		{"member expired", seal(t, c, member), true, Ordinary, expiry, Token{}, ErrNotAuthenticated},
		{"member privileged", seal(t, c, member), true, Privileged, issued, Token{}, ErrPermissionDenied},
		{"officer privileged", seal(t, c, officer), true, Privileged, issued, officer, nil},
		{"officer ordinary", seal(t, c, officer), true, Ordinary, issued, officer, nil},
		{"officer expired privileged", seal(t, c, officer), true, Privileged, expiry, Token{}, ErrNotAuthenticated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewExtractor(c).WithClock(fixedClock(tc.now))
			got, err := e.Extract(tc.state, tc.present, tc.tier)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromRequest_ReadsCookie(t *testing.T) {
	c := newTestCodec(t)
	e := NewExtractor(c)
	tok := New(9, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := e.Ordinary(r)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	cookie, err := c.Cookie(tok)
	require.NoError(t, err)
	r.AddCookie(cookie)

	got, err := e.Ordinary(r)
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	_, err = e.Privileged(r)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExtract_ConcurrentSameToken(t *testing.T) {
	c := newTestCodec(t)
	e := NewExtractor(c)
	tok := New(3, true)
	state := seal(t, c, tok)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Extract(state, true, Privileged)
			assert.NoError(t, err)
			assert.Equal(t, tok, got)
		}()
	}
	wg.Wait()
}
