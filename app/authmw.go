package app

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_donations/auth"
	"Gin_postgres_redis_donations/config"
	"Gin_postgres_redis_donations/models"
	"Gin_postgres_redis_donations/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// context keys set by AuthRequired
const (
	KeyUserID      = "userID"
	KeyEmail       = "email"
	KeyDisplayName = "displayName"
	KeyIsAdmin     = "isAdmin"
)

// AuthRequired accepts "Authorization: Bearer <token>" checked by the
// verifier, or an app session cookie.
func AuthRequired(appSess *session.AppSessionStore, v auth.Verifier, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var who *auth.Identity

		if tok := bearerToken(c.GetHeader("Authorization")); tok != "" {
			id, err := v.Verify(c.Request.Context(), tok)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
				return
			}
			who = id
		} else {
			ck, err := c.Request.Cookie(AppSessionCookie)
			if err != nil || ck.Value == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			as, err := appSess.Get(c.Request.Context(), ck.Value)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
				return
			}
			who = as.Identity()
		}

		// 把 userID 放进上下文，后续 handler 可用
		c.Set(KeyUserID, who.UID)
		c.Set(KeyEmail, who.Email)
		c.Set(KeyDisplayName, who.DisplayName)
		c.Set(KeyIsAdmin, cfg.IsAdmin(who.UID, who.Email))
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(KeyUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool(KeyIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// Actor is the authenticated caller.
func Actor(c *gin.Context) models.Actor {
	return models.Actor{
		ID:    c.GetString(KeyUserID),
		Name:  c.GetString(KeyDisplayName),
		Email: c.GetString(KeyEmail),
	}
}

func bearerToken(h string) string {
	const prefix = "bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
