package app

import (
	"net/http"
	"strings"

	"police_armory_tool/config"
	"police_armory_tool/db"
	"police_armory_tool/session"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token, checks the backing session still
// exists in Redis, and loads the account. A deactivated account kills the
// session on the spot.
func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "Authentication required"})
			return
		}

		claims, err := session.ParseToken([]byte(cfg.JWTSecret), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "Invalid or expired token"})
			return
		}

		if _, err := appSess.Get(c.Request.Context(), claims.ID); err != nil {
			if !session.IsMissing(err) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, H{"success": false, "message": "Session lookup failed"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "Session expired, please log in again"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), claims.Subject)
		if err != nil || !u.IsActive {
			_ = appSess.Delete(c.Request.Context(), claims.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "Account is not active"})
			return
		}

		c.Set("userID", u.ID)
		c.Set("sessionID", claims.ID)
		c.Set("role", u.Role)
		c.Set("designation", u.Designation)
		c.Next()
	}
}

// AdminOnly gates admin routes. Runs after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"success": false, "message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// OfficerOnly gates routes meant for the officer self-service surface.
func OfficerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role != "officer" {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"success": false, "message": "Officer access required"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// UserID returns the authenticated user's ID set by AuthRequired.
func UserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}

// Designation returns the authenticated user's designation.
func Designation(c *gin.Context) string {
	v, _ := c.Get("designation")
	d, _ := v.(string)
	return d
}
