// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/auth"
	"Gin_postgres_redis_donations/config"
	"Gin_postgres_redis_donations/db"
	"Gin_postgres_redis_donations/session"

	"github.com/google/uuid"
)

type Srv struct {
	Repo     *db.Repo
	AppSess  *session.AppSessionStore
	Verifier auth.Verifier
	Cfg      config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:     a.Repo(),
		AppSess:  a.AppSessions(),
		Verifier: a.Verifier,
		Cfg:      a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
	})
}

// 登录成功：创建会话并下发 Cookie
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, who auth.Identity) error {
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, who); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return nil
}
