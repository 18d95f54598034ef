package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"erauchess-api/internal/cache"
	"erauchess-api/internal/model"
	"erauchess-api/internal/repository"
	"erauchess-api/pkg/apierror"
)

// GameInput is a decoded game form. GameEntered is zero when the client
// did not send it.
type GameInput struct {
	WhiteID        int64
	BlackID        int64
	WhitePoints    float64
	BlackPoints    float64
	PGN            *string
	ScorecardImage []byte
	GameEnd        time.Time
	GameEntered    time.Time
}

// ClubService records games and lists games and members.
// Lists are read through the cache; writes invalidate it.
type ClubService struct {
	store  repository.Store
	cache  cache.Cache
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewClubService creates a club service. cache may be nil.
func NewClubService(store repository.Store, c cache.Cache, ttl time.Duration, logger *slog.Logger) *ClubService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClubService{
		store:  store,
		cache:  c,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With("component", "club"),
	}
}

// AddGame records a game entered by addedBy and returns its id.
func (s *ClubService) AddGame(ctx context.Context, addedBy int64, in GameInput) (int64, error) {
	if err := validateGame(in); err != nil {
		return 0, err
	}

	entered := in.GameEntered
	if entered.IsZero() {
		entered = s.now()
	}

	id, err := s.store.InsertGame(ctx, model.NewGame{
		WhiteID:        in.WhiteID,
		BlackID:        in.BlackID,
		WhitePoints:    in.WhitePoints,
		BlackPoints:    in.BlackPoints,
		PGN:            in.PGN,
		ScorecardImage: in.ScorecardImage,
		GameEnd:        in.GameEnd,
		GameEntered:    entered,
		AddedBy:        addedBy,
	})
	if err != nil {
		return 0, storeError(err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.KeyGameList); err != nil {
			s.logger.WarnContext(ctx, "cache invalidation failed", "key", cache.KeyGameList, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "game recorded", "game_id", id, "added_by", addedBy)

	return id, nil
}

// ListGames returns every game, most recently finished first.
func (s *ClubService) ListGames(ctx context.Context) ([]model.Game, error) {
	var games []model.Game
	err := s.cached(ctx, cache.KeyGameList, &games, func() (any, error) {
		return s.store.ListGames(ctx)
	})
	return games, err
}

// ListUsers returns the public view of every member.
func (s *ClubService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	var users []model.PublicUser
	err := s.cached(ctx, cache.KeyUserList, &users, func() (any, error) {
		all, err := s.store.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		public := make([]model.PublicUser, len(all))
		for i, u := range all {
			public[i] = u.Public()
		}
		return public, nil
	})
	return users, err
}

// Stats returns store counts for the admin endpoint.
func (s *ClubService) Stats(ctx context.Context) (*model.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return stats, nil
}

// Ping checks the store is reachable.
func (s *ClubService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return apierror.StoreFailure("database unreachable").WithCause(err)
	}
	return nil
}

// cached decodes key into dst, filling it from load on a miss.
func (s *ClubService) cached(ctx context.Context, key string, dst any, load func() (any, error)) error {
	fill := func() ([]byte, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	var (
		raw []byte
		err error
	)
	if s.cache == nil {
		raw, err = fill()
	} else {
		raw, err = s.cache.GetOrSet(ctx, key, s.ttl, fill)
	}
	if err != nil {
		return storeError(err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apierror.Unknown("corrupt cache entry").WithCause(err)
	}
	return nil
}

func validateGame(in GameInput) *apierror.Error {
	switch {
	case in.WhiteID <= 0 || in.BlackID <= 0:
		return apierror.InvalidInput("player ids must be positive")
	case in.WhiteID == in.BlackID:
		return apierror.InvalidInput("a player cannot play themselves")
	case !validPoints(in.WhitePoints) || !validPoints(in.BlackPoints):
		return apierror.InvalidInput("points must be between 0 and 1")
	case in.GameEnd.IsZero():
		return apierror.InvalidInput("game_end is required")
	}
	return nil
}

func validPoints(p float64) bool {
	return p >= 0 && p <= 1
}
