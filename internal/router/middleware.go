package router

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"example.com/storefront/internal/auth"
	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/models"
)

const (
	contextKeyClaims = "claims"
	contextKeyToken  = "token"
)

// RequireAuth validates the bearer token, rejects blacklisted tokens, and
// stores the parsed claims on the request context.
func RequireAuth(authService *auth.Service, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Authentication required", []global.ValidationError{
				{Field: "Authorization", Message: "Bearer token is required", Code: "required"},
			}))
			c.Abort()
			return
		}

		revoked, err := blacklist.Contains(c.Request.Context(), token)
		if err != nil {
			// Redis being down must not lock everyone out.
			log.Printf("Warning: blacklist lookup failed: %v", err)
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Token has been revoked", nil))
			c.Abort()
			return
		}

		claims, err := authService.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid or expired token", nil))
			c.Abort()
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Set(contextKeyToken, token)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok || claims.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, global.ErrorResponse("Admin access required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(contextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// currentUserID parses the authenticated user's id from the claims. A failure
// here means the middleware chain was misconfigured, not a bad request.
func currentUserID(c *gin.Context) (bson.ObjectID, *auth.Claims, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Authentication required", nil))
		return bson.ObjectID{}, nil, false
	}
	userID, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid token subject", nil))
		return bson.ObjectID{}, nil, false
	}
	return userID, claims, true
}
