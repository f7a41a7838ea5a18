package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/attendly/attendly/internal/auth"
	"github.com/attendly/attendly/internal/handler/dto"
	"github.com/attendly/attendly/internal/service"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	svc          *service.UserService
	logger       *slog.Logger
	cookieName   string
	cookieSecure bool
	tokenTTL     time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logger,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		tokenTTL:     svc.Tokens().TTL(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.RegisterInput{
		Email:              req.Email,
		Password:           req.Password,
		IsOrganiser:        req.IsOrganiser,
		MealPreference:     req.MealPreference,
		ParticipationStart: req.ParticipationStartTime,
		ParticipationEnd:   req.ParticipationEndTime,
		MealChoices:        req.MealChoices,
	}

	user, err := h.svc.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"is_organiser", user.IsOrganiser,
		"meal_count", len(user.Meals),
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /auth/login. The issued token is returned in the
// body and mirrored into the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, token)

	h.logger.Info("login_successful", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		Token:   token,
	})
}

// Logout handles POST /auth/logout. Idempotent: an absent, expired or
// already-revoked token still yields 200, and the cookie is cleared
// either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := h.tokenFromRequest(r)

	if err := h.svc.Logout(r.Context(), raw); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.clearSessionCookie(w)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// tokenFromRequest extracts the session token from the Authorization
// header, falling back to the session cookie.
func (h *AuthHandler) tokenFromRequest(r *http.Request) string {
	if token, err := auth.TokenFromHeader(r.Header.Get("Authorization")); err == nil {
		return token
	}
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
