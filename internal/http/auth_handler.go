package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	DecodeToken(token string) (*auth.Claims, error)
	GoogleAuthURL(state string) string
	GoogleLogin(ctx context.Context, code string) (*service.LoginResult, error)
}

type AuthHandler struct {
	auth    AuthService
	timeout time.Duration
	secure  bool
}

func NewAuthHandler(auth AuthService, timeout time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, timeout: timeout, secure: secureCookies}
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type DecodeTokenRequestDTO struct {
	Token string `json:"token"`
}

type RefreshRequestDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type loginData struct {
	ID           string   `json:"id"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Email        string   `json:"email"`
	ProfileImage []string `json:"profileImage"`
	PhoneNumber  string   `json:"phoneNumber"`
	Sex          string   `json:"sex"`
}

type socialLoginData struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

type dataResponse struct {
	ErrorCode int         `json:"errorCode"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Email and password are required")
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, "Email and password are required")
		case errors.Is(err, service.ErrUnknownEmail):
			respondError(w, http.StatusBadRequest, 2, "Email does not exist")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(w, http.StatusBadRequest, 3, "Invalid password")
		case errors.Is(err, service.ErrTokenIssue):
			respondInternal(w, r, 4, "Failed to create tokens", err)
		default:
			respondInternal(w, r, 5, "An error occurred during login", err)
		}
		return
	}

	u := result.User
	respondJSON(w, http.StatusOK, dataResponse{
		ErrorCode: 0,
		Message:   "Login successful",
		Data: loginData{
			ID:           u.ID.Hex(),
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			Name:         u.Name,
			Role:         u.Role,
			Email:        u.Email,
			ProfileImage: u.ProfileImage,
			PhoneNumber:  u.PhoneNumber,
			Sex:          u.Sex,
		},
	})
}

func (h *AuthHandler) DecodeToken(w http.ResponseWriter, r *http.Request) {
	var req DecodeTokenRequestDTO
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
		return
	}

	claims, err := h.auth.DecodeToken(req.Token)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": claims})
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RefreshRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Refresh token is required")
		return
	}

	access, err := h.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, "Refresh token is required")
		case errors.Is(err, auth.ErrInvalidToken):
			respondError(w, http.StatusUnauthorized, 2, "Invalid or expired refresh token")
		default:
			respondInternal(w, r, 3, "An error occurred while refreshing the token", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: map[string]string{"access_token": access}})
}

// GoogleStart redirects to the Google consent screen. The state is kept in
// a short-lived cookie and checked on the way back.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.GoogleAuthURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cookie, err := r.Cookie(oauthStateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		respondError(w, http.StatusBadRequest, 1, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	result, err := h.auth.GoogleLogin(ctx, r.URL.Query().Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, "Authorization code is required")
		case errors.Is(err, service.ErrGoogleLogin):
			respondError(w, http.StatusBadGateway, 2, "Google login failed")
		default:
			respondInternal(w, r, 3, "An error occurred during Google login", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, dataResponse{
		ErrorCode: 0,
		Data: socialLoginData{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			User:         result.User,
		},
	})
}
