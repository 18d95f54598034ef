package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"erauchess-api/internal/cache"
	"erauchess-api/internal/credential"
	"erauchess-api/internal/model"
	"erauchess-api/internal/repository"
	"erauchess-api/internal/session"
	"erauchess-api/pkg/apierror"
)

// RegisterInput is a decoded registration form. Secret is the client-side
// hash the member logs in with; it is digested before storage.
type RegisterInput struct {
	FirstName        string
	LastName         string
	ErauID           *int64
	ChessComUsername string
	Email            string
	Secret           string
}

// AuthService registers members and issues session tokens.
type AuthService struct {
	users  repository.UserRepository
	pool   *credential.Pool
	cache  cache.Cache
	now    func() time.Time
	logger *slog.Logger
}

// NewAuthService creates an auth service. cache may be nil.
func NewAuthService(users repository.UserRepository, pool *credential.Pool, c cache.Cache, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:  users,
		pool:   pool,
		cache:  c,
		now:    time.Now,
		logger: logger.With("component", "auth"),
	}
}

// Register stores a new non-officer member and returns its first token.
// Errors are always *apierror.Error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (session.Token, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateRegister(in); err != nil {
		return session.Token{}, err
	}

	digest, err := s.pool.Digest(ctx, in.Secret, in.Email)
	if err != nil {
		return session.Token{}, apierror.Unknown("request cancelled").WithCause(err)
	}

	now := s.now()
	id, err := s.users.InsertUser(ctx, model.NewUser{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Hash:             digest,
		ErauID:           in.ErauID,
		SignupDate:       now,
		IsOfficer:        false,
		ChessComUsername: in.ChessComUsername,
		Email:            in.Email,
	})
	if err != nil {
		return session.Token{}, storeError(err)
	}

	s.invalidate(ctx, cache.KeyUserList)
	s.logger.InfoContext(ctx, "member registered", "user_id", id)

	return session.NewAt(id, false, now), nil
}

// Login checks the submitted secret against the stored digest and issues a
// token carrying the member's current officer flag.
func (s *AuthService) Login(ctx context.Context, email, secret string) (session.Token, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return session.Token{}, apierror.InvalidInput("email is required")
	}
	if secret == "" {
		return session.Token{}, apierror.InvalidInput("hash is required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return session.Token{}, storeError(err)
	}

	ok, err := s.pool.Verify(ctx, secret, email, user.Hash)
	if err != nil {
		return session.Token{}, apierror.Unknown("request cancelled").WithCause(err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "login rejected", "user_id", user.ID)
		return session.Token{}, apierror.IncorrectCredentials()
	}

	return session.NewAt(user.ID, user.IsOfficer, s.now()), nil
}

func (s *AuthService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

func validateRegister(in RegisterInput) *apierror.Error {
	required := []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"chess_com_username", in.ChessComUsername},
		{"email", in.Email},
		{"hash", in.Secret},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return apierror.InvalidInputf("%s is required", f.name)
		}
	}

	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return apierror.InvalidInput("email is not a valid address")
	}
	if in.ErauID != nil && *in.ErauID <= 0 {
		return apierror.InvalidInput("erau_id must be positive")
	}
	return nil
}
