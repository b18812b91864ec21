package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
)

// SessionMiddleware parses the bearer token and loads the caller's identity
// into the request context. Requests without a token pass through untouched;
// handlers that need an organization reject them. The redis session entry is
// checked so that logout invalidates a token before its JWT expiry.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		token := auth[len(bearer):]

		validated, err := utils.JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claims, ok := validated.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		// Redis holds a session entry per token so logout can revoke one
		// before its JWT expiry. Without redis the JWT alone decides.
		if config.GetRedisDB() != nil {
			_, exists, err := config.GetRedisValue("Token:" + token)
			if err != nil || !exists {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				c.Abort()
				return
			}
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, claims.ID)
		ctx = utils.SetIsAdminInContext(ctx, claims.Role == string(models.UserRoleAdmin))
		// A freshly registered user has no organization claim until they
		// create one and log in again.
		if claims.OrganizationId != "" {
			ctx = utils.SetOrganizationIdInContext(ctx, claims.OrganizationId)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
