package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// SessionManager logs users in and revokes their tokens
type SessionManager interface {
	Login(ctx context.Context, email, password string) (auth.IssuedToken, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthController struct {
	sessions SessionManager
}

func NewAuthController(sessions SessionManager) *AuthController {
	return &AuthController{sessions: sessions}
}

// Login godoc
// @Summary Obtain a login token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Email and password"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Email and password are required")
		return
	}

	token, err := ac.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{AuthToken: token.Token})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags auth
// @Success 204 "Logged out"
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/auth/token/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	jti := c.GetString(middleware.ContextTokenID)
	expiresAt := c.GetTime(middleware.ContextTokenExpiresAt)
	if jti == "" {
		respondBadRequest(c, "Token cannot be revoked")
		return
	}

	if err := ac.sessions.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", middleware.CurrentUserID(c)).Info("User logged out")
	c.Status(http.StatusNoContent)
}
