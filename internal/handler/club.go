package handler

import (
	"net/http"

	"erauchess-api/internal/middleware"
	"erauchess-api/internal/model"
	"erauchess-api/internal/service"
	"erauchess-api/pkg/apierror"
	"erauchess-api/pkg/response"
)

// ClubHandler handles game and member endpoints.
type ClubHandler struct {
	club *service.ClubService
}

// NewClubHandler creates a new club handler.
func NewClubHandler(club *service.ClubService) *ClubHandler {
	return &ClubHandler{club: club}
}

// AddGameResponse is returned after a game is recorded.
type AddGameResponse struct {
	ID int64 `json:"id"`
}

// GameListResponse wraps the game list so the envelope stays an object.
type GameListResponse struct {
	Games []model.Game `json:"games"`
}

// UserListResponse wraps the member list so the envelope stays an object.
type UserListResponse struct {
	Users []model.PublicUser `json:"users"`
}

// AddGame handles POST /api/v1/game/add (officers only)
func (h *ClubHandler) AddGame(w http.ResponseWriter, r *http.Request) {
	tok, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		response.Error(w, r, apierror.NotAuthenticated())
		return
	}

	in, err := decodeGame(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	id, err := h.club.AddGame(r.Context(), tok.User, in)
	response.Send(w, r, AddGameResponse{ID: id}, err)
}

// ListGames handles GET /api/v1/game/list
func (h *ClubHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.club.ListGames(r.Context())
	response.Send(w, r, GameListResponse{Games: games}, err)
}

// ListUsers handles GET /api/v1/users/list
func (h *ClubHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.club.ListUsers(r.Context())
	response.Send(w, r, UserListResponse{Users: users}, err)
}

func decodeGame(w http.ResponseWriter, r *http.Request) (service.GameInput, error) {
	var in service.GameInput

	f, err := parseForm(w, r)
	if err != nil {
		return in, err
	}

	if in.WhiteID, err = f.integer("white_id"); err != nil {
		return in, err
	}
	if in.BlackID, err = f.integer("black_id"); err != nil {
		return in, err
	}
	if in.WhitePoints, err = f.number("white_points"); err != nil {
		return in, err
	}
	if in.BlackPoints, err = f.number("black_points"); err != nil {
		return in, err
	}
	if in.ScorecardImage, err = f.optionalBase64("scorecard_image"); err != nil {
		return in, err
	}
	if in.GameEnd, err = f.unix("game_end"); err != nil {
		return in, err
	}
	if in.GameEntered, err = f.optionalUnix("game_entered"); err != nil {
		return in, err
	}
	in.PGN = f.optionalText("pgn")

	return in, nil
}
