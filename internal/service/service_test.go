package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"erauchess-api/internal/cache"
	"erauchess-api/internal/credential"
	"erauchess-api/internal/model"
	"erauchess-api/internal/repository"
	"erauchess-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *repository.SQLStore
	cache *cache.MemoryCache
	auth  *AuthService
	club  *ClubService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c := cache.NewMemoryCache(time.Hour)
	t.Cleanup(func() { _ = c.Close() })

	return &fixture{
		store: store,
		cache: c,
		auth:  NewAuthService(store, credential.NewPool(2, nil), c, nil),
		club:  NewClubService(store, c, time.Minute, nil),
	}
}

func registration(email string) RegisterInput {
	return RegisterInput{
		FirstName:        "Ada",
		LastName:         "Lovelace",
		ChessComUsername: "ada",
		Email:            email,
		Secret:           "client-side-hash",
	}
}

func requireAPIError(t *testing.T, err error, kind apierror.Kind) *apierror.Error {
	t.Helper()
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr), "expected *apierror.Error, got %T: %v", err, err)
	assert.Equal(t, kind, apiErr.Kind)
	return apiErr
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	now := time.Unix(1700000000, 0)
	f.auth.now = func() time.Time { return now }

	tok, err := f.auth.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)
	assert.Positive(t, tok.User)
	assert.False(t, tok.IsOfficer)
	assert.Equal(t, uint64(now.Unix()), tok.Start)
	assert.True(t, tok.IsValid(now))

	stored, err := f.store.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, credential.Digest("client-side-hash", "a@x.com"), stored.Hash)
	assert.NotEqual(t, "client-side-hash", stored.Hash)
	assert.Equal(t, now.UTC(), stored.SignupDate)
	assert.False(t, stored.IsOfficer)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, registration("a@x.com"))
	apiErr := requireAPIError(t, err, apierror.KindEmailAlreadyRegistered)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode())

	users, err := f.store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	negative := int64(-1)
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"missing last name", func(in *RegisterInput) { in.LastName = " " }},
		{"missing username", func(in *RegisterInput) { in.ChessComUsername = "" }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing secret", func(in *RegisterInput) { in.Secret = "" }},
		{"email without at", func(in *RegisterInput) { in.Email = "ax.com" }},
		{"email with display name", func(in *RegisterInput) { in.Email = "Ada <a@x.com>" }},
		{"negative erau id", func(in *RegisterInput) { in.ErauID = &negative }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registration("a@x.com")
			tt.mutate(&in)
			_, err := f.auth.Register(ctx, in)
			requireAPIError(t, err, apierror.KindInvalidInput)
		})
	}

	users, err := f.store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegister_InvalidatesUserList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	users, err := f.club.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = f.auth.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)

	users, err = f.club.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ada", users[0].FirstName)
}

// pausingStore holds ListUsers and ListGames after the rows are read until
// release is closed.
type pausingStore struct {
	repository.Store
	loaded  chan struct{}
	release chan struct{}
}

func newPausingStore(store repository.Store) *pausingStore {
	return &pausingStore{Store: store, loaded: make(chan struct{}), release: make(chan struct{})}
}

func (s *pausingStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.Store.ListUsers(ctx)
	close(s.loaded)
	<-s.release
	return users, err
}

func (s *pausingStore) ListGames(ctx context.Context) ([]model.Game, error) {
	games, err := s.Store.ListGames(ctx)
	close(s.loaded)
	<-s.release
	return games, err
}

func TestRegister_DuringUserListFill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	paused := newPausingStore(f.store)
	club := NewClubService(paused, f.cache, time.Minute, nil)

	filled := make(chan []model.PublicUser)
	go func() {
		users, _ := club.ListUsers(ctx)
		filled <- users
	}()

	<-paused.loaded
	_, err := f.auth.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)
	close(paused.release)
	assert.Empty(t, <-filled)

	users, err := f.club.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ada", users[0].FirstName)
}

func TestAddGame_DuringGameListFill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	white := officer(t, f, "white@x.com")
	black := officer(t, f, "black@x.com")

	paused := newPausingStore(f.store)
	club := NewClubService(paused, f.cache, time.Minute, nil)

	filled := make(chan []model.Game)
	go func() {
		games, _ := club.ListGames(ctx)
		filled <- games
	}()

	<-paused.loaded
	_, err := f.club.AddGame(ctx, white, GameInput{
		WhiteID: white, BlackID: black, WhitePoints: 1,
		GameEnd: time.Unix(1700000000, 0),
	})
	require.NoError(t, err)
	close(paused.release)
	assert.Empty(t, <-filled)

	games, err := f.club.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "a@x.com", "wrong")
		apiErr := requireAPIError(t, err, apierror.KindIncorrectCredentials)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "nobody@x.com", "client-side-hash")
		apiErr := requireAPIError(t, err, apierror.KindUserNotFound)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "", "x")
		requireAPIError(t, err, apierror.KindInvalidInput)
		_, err = f.auth.Login(ctx, "a@x.com", "")
		requireAPIError(t, err, apierror.KindInvalidInput)
	})

	t.Run("success", func(t *testing.T) {
		now := time.Unix(1800000000, 0)
		f.auth.now = func() time.Time { return now }

		tok, err := f.auth.Login(ctx, "a@x.com", "client-side-hash")
		require.NoError(t, err)
		assert.False(t, tok.IsOfficer)
		assert.Equal(t, uint64(now.Unix()), tok.Start)
		assert.True(t, tok.IsValid(now))
	})
}

// officer inserts an officer directly; registration never grants the flag.
func officer(t *testing.T, f *fixture, email string) int64 {
	t.Helper()
	id, err := f.store.InsertUser(context.Background(), model.NewUser{
		FirstName:        "Olive",
		LastName:         "Officer",
		Hash:             credential.Digest("officer-hash", email),
		SignupDate:       time.Unix(1, 0),
		IsOfficer:        true,
		ChessComUsername: "olive",
		Email:            email,
	})
	require.NoError(t, err)
	return id
}

func TestLogin_CopiesOfficerFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := officer(t, f, "o@x.com")

	tok, err := f.auth.Login(ctx, "o@x.com", "officer-hash")
	require.NoError(t, err)
	assert.Equal(t, id, tok.User)
	assert.True(t, tok.IsOfficer)
}

func TestLogin_CancelledContext(t *testing.T) {
	f := newFixture(t)
	officer(t, f, "o@x.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.auth.Login(ctx, "o@x.com", "officer-hash")
	require.Error(t, err)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode())
}

func TestAddGame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o := officer(t, f, "o@x.com")
	tok, err := f.auth.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)

	now := time.Unix(1700000500, 0)
	f.club.now = func() time.Time { return now }

	games, err := f.club.ListGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, games)

	id, err := f.club.AddGame(ctx, o, GameInput{
		WhiteID: o, BlackID: tok.User,
		WhitePoints: 1, BlackPoints: 0,
		GameEnd: time.Unix(1700000000, 0),
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	games, err = f.club.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, id, games[0].ID)
	assert.Equal(t, o, games[0].AddedBy)
	assert.Equal(t, now.UTC(), games[0].GameEntered)
}

func TestAddGame_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := officer(t, f, "o@x.com")

	valid := GameInput{WhiteID: o, BlackID: o + 1, WhitePoints: 0.5, BlackPoints: 0.5, GameEnd: time.Unix(10, 0)}

	tests := []struct {
		name   string
		mutate func(*GameInput)
	}{
		{"zero id", func(in *GameInput) { in.WhiteID = 0 }},
		{"same player", func(in *GameInput) { in.BlackID = in.WhiteID }},
		{"points above one", func(in *GameInput) { in.WhitePoints = 2 }},
		{"negative points", func(in *GameInput) { in.BlackPoints = -0.5 }},
		{"missing end", func(in *GameInput) { in.GameEnd = time.Time{} }},
		{"unknown player", func(in *GameInput) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.club.AddGame(ctx, o, in)
			requireAPIError(t, err, apierror.KindInvalidInput)
		})
	}
}

func TestStatsAndPing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	officer(t, f, "o@x.com")

	require.NoError(t, f.club.Ping(ctx))

	stats, err := f.club.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Officers)

	require.NoError(t, f.store.Close())
	err = f.club.Ping(ctx)
	requireAPIError(t, err, apierror.KindStoreFailure)
}

func TestStoreError(t *testing.T) {
	assert.Equal(t, apierror.KindEmailAlreadyRegistered, storeError(repository.ErrDuplicateEmail).Kind)
	assert.Equal(t, apierror.KindUserNotFound, storeError(repository.ErrNotFound).Kind)
	assert.Equal(t, apierror.KindInvalidInput, storeError(repository.ErrUnknownReference).Kind)

	cause := errors.New("disk full")
	got := storeError(cause)
	assert.Equal(t, apierror.KindStoreFailure, got.Kind)
	assert.ErrorIs(t, got, cause)
	assert.NotContains(t, got.Message(), "disk full")
}
