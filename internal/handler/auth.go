package handler

import (
	"net/http"

	"erauchess-api/internal/service"
	"erauchess-api/internal/session"
	"erauchess-api/pkg/apierror"
	"erauchess-api/pkg/response"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	auth  *service.AuthService
	codec *session.Codec
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, codec *session.Codec) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		codec: codec,
	}
}

// Register handles POST /api/v1/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	erauID, err := f.optionalInteger("erau_id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	tok, err := h.auth.Register(r.Context(), service.RegisterInput{
		FirstName:        f.text("first_name"),
		LastName:         f.text("last_name"),
		ErauID:           erauID,
		ChessComUsername: f.text("chess_com_username"),
		Email:            f.text("email"),
		Secret:           f.raw("hash"),
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.issue(w, r, tok)
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	tok, err := h.auth.Login(r.Context(), f.text("email"), f.raw("hash"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.issue(w, r, tok)
}

// Logout handles POST /api/v1/logout. Sessions are stateless, so this only
// tells the client to drop its cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.codec.ClearCookie())
	response.OK(w, r, nil)
}

// issue sets the session cookie and echoes the token as the payload.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, tok session.Token) {
	cookie, err := h.codec.Cookie(tok)
	if err != nil {
		response.Error(w, r, apierror.Unknown("failed to seal session").WithCause(err))
		return
	}

	http.SetCookie(w, cookie)
	response.OK(w, r, tok)
}
