package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/pagepace/internal/api/shared"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/service/auth"
)

// AuthHandler handles authentication-related API requests. Accounts are
// managed elsewhere; this API only rotates token pairs.
type AuthHandler struct {
	jwtService auth.JWTService
	authConfig config.AuthConfig
	timeFunc   func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(jwtService auth.JWTService, authConfig config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		authConfig: authConfig,
		timeFunc:   time.Now,
	}
}

// WithTimeFunc sets the clock used to compute access token expiry.
func (h *AuthHandler) WithTimeFunc(timeFunc func() time.Time) *AuthHandler {
	h.timeFunc = timeFunc
	return h
}

// RefreshToken handles the /auth/refresh endpoint. A valid refresh token is
// exchanged for a new access and refresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), slog.Default()).
		With(slog.String("user_id", claims.UserID.String()))

	accessToken, err := h.jwtService.GenerateToken(r.Context(), claims.UserID)
	if err != nil {
		log.Error("failed to generate access token", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), claims.UserID)
	if err != nil {
		log.Error("failed to generate refresh token", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	expiresAt := h.timeFunc().Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute)
	log.Debug("token pair refreshed")

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.Format(time.RFC3339),
	})
}
