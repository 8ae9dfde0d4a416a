package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// respondError maps service errors onto the API error body
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, validationErr.Message,
			map[string]interface{}{
				"field": validationErr.Field,
				"rule":  validationErr.Rule,
			}))
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrAlreadyExists, err.Error()))
	case errors.Is(err, services.ErrMembershipNotFound), errors.Is(err, services.ErrSubscriptionNotFound):
		// Removing something the user never added is a client error, not a missing resource
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrNotFound, err.Error()))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, err.Error()))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "You do not have permission to perform this action"))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidCredentials, "Unable to log in with provided credentials"))
	default:
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message))
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.NewOAuth2Error("authorization_required",
		"Authentication credentials were not provided"))
}

// pathID parses a positive numeric path parameter. It responds 404 for
// anything else, the same as an unknown id.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Not found"))
		return 0, false
	}
	return uint(id), true
}

// queryBool accepts the truthy spellings the frontend sends
func queryBool(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}

func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}
