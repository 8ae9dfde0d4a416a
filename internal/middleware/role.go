package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after Authenticate.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required", "User not authenticated")
			return
		}

		role, exists := c.Get(ContextUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.ErrForbidden, "User role not found in token"))
			return
		}

		userRole, ok := role.(string)
		if !ok || userRole != requiredRole {
			log.WithFields(logrus.Fields{
				"user_id":       userID,
				"user_role":     role,
				"required_role": requiredRole,
			}).Warn("Insufficient permissions")
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.ErrForbidden, "Insufficient permissions", map[string]interface{}{
					"required_role": requiredRole,
				}))
			return
		}

		c.Next()
	}
}
