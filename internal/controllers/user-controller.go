package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles registration, profiles and subscriptions
type UserController interface {
	ListUsers(c *gin.Context)
	Register(c *gin.Context)
	Me(c *gin.Context)
	SetPassword(c *gin.Context)
	GetUser(c *gin.Context)
	ListSubscriptions(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
}

type userController struct {
	users         services.UserService
	subscriptions services.SubscriptionService
	presenter     *Presenter
	pageSize      int
}

func NewUserController(users services.UserService, subscriptions services.SubscriptionService,
	presenter *Presenter, pageSize int) UserController {
	return &userController{
		users:         users,
		subscriptions: subscriptions,
		presenter:     presenter,
		pageSize:      pageSize,
	}
}

func (uc *userController) profile(p services.UserProfile) models.UserResponse {
	return uc.presenter.User(p.User, p.IsSubscribed)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PageResponse[models.UserResponse]
// @Router /api/users [get]
func (uc *userController) ListUsers(c *gin.Context) {
	page, err := uc.users.ListUsers(c.Request.Context(), middleware.CurrentUserID(c), paginationFrom(c, uc.pageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, page, uc.profile))
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "New user"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.APIError
// @Router /api/users [post]
func (uc *userController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	user, err := uc.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uc.presenter.User(*user, false))
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/users/me [get]
func (uc *userController) Me(c *gin.Context) {
	user, err := uc.users.GetUserByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, uc.presenter.User(*user, false))
}

// SetPassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Param passwords body models.SetPasswordRequest true "Current and new password"
// @Success 204 "Password changed"
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/set_password [post]
func (uc *userController) SetPassword(c *gin.Context) {
	var req models.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	if err := uc.users.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (uc *userController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := uc.users.GetProfile(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, uc.profile(profile))
}

// ListSubscriptions godoc
// @Summary Authors the current user follows
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Maximum recipes shown per author"
// @Success 200 {object} models.PageResponse[models.SubscriptionResponse]
// @Security BearerAuth
// @Router /api/users/subscriptions [get]
func (uc *userController) ListSubscriptions(c *gin.Context) {
	page, err := uc.subscriptions.ListSubscriptions(c.Request.Context(), middleware.CurrentUserID(c),
		paginationFrom(c, uc.pageSize), queryInt(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, page, uc.presenter.Author))
}

// Subscribe godoc
// @Summary Follow an author
// @Tags users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Maximum recipes shown"
// @Success 201 {object} models.SubscriptionResponse
// @Failure 400 {object} models.APIError "Already subscribed or self subscription"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [post]
func (uc *userController) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	author, err := uc.subscriptions.Subscribe(c.Request.Context(), middleware.CurrentUserID(c), id, queryInt(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uc.presenter.Author(author))
}

// Unsubscribe godoc
// @Summary Unfollow an author
// @Tags users
// @Param id path int true "Author ID"
// @Success 204 "Unsubscribed"
// @Failure 400 {object} models.APIError "Not subscribed"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [delete]
func (uc *userController) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := uc.subscriptions.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
