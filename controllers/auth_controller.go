// controllers/auth_controller.go
package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/auth"

	"github.com/gin-gonic/gin"
)

const maxDisplayName = 100

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login {idToken}：校验令牌后换成会话 Cookie
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "idToken is required")
		return
	}
	who, err := ac.Verifier.Verify(c.Request.Context(), in.IDToken)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) {
			slog.Error("token verification failed", "err", err)
		}
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid token"})
		return
	}
	if err := ac.issueSession(c.Request.Context(), c.Writer, *who); err != nil {
		slog.Error("session create failed", "uid", who.UID, "err", err)
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"user":    who,
		"isAdmin": ac.Cfg.IsAdmin(who.UID, who.Email),
	})
}

// 登出：删 Redis 会话，Cookie 置空
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		if err := ac.AppSess.Delete(c.Request.Context(), ck.Value); err != nil {
			slog.Warn("session delete failed", "err", err)
		}
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// LogoutAll revokes every session of the caller.
func (ac *AuthController) LogoutAll(c *gin.Context) {
	uid := app.Actor(c).ID
	if err := ac.AppSess.RevokeAllForUser(c.Request.Context(), uid); err != nil {
		slog.Error("revoke sessions failed", "uid", uid, "err", err)
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "session unavailable"})
		return
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/auth/update {displayName}：改显示名，同步到该用户所有会话
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var in struct {
		DisplayName string `json:"displayName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "displayName is required")
		return
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayName {
		badRequest(c, fmt.Sprintf("displayName must be 1 to %d characters", maxDisplayName))
		return
	}

	a := app.Actor(c)
	if _, err := ac.AppSess.UpdateDisplayName(c.Request.Context(), a.ID, name); err != nil {
		slog.Error("session update failed", "uid", a.ID, "err", err)
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"user": auth.Identity{UID: a.ID, Email: a.Email, DisplayName: name},
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	a := app.Actor(c)
	c.JSON(http.StatusOK, app.H{
		"user":    auth.Identity{UID: a.ID, Email: a.Email, DisplayName: a.Name},
		"isAdmin": c.GetBool(app.KeyIsAdmin),
	})
}
