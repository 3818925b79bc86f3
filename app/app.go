package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"Gin_postgres_redis_donations/auth"
	"Gin_postgres_redis_donations/config"
	"Gin_postgres_redis_donations/db"
	"Gin_postgres_redis_donations/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Verifier auth.Verifier
	Config   config.Config

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// New wires an App from already opened dependencies.
func New(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, v auth.Verifier) *App {
	r := gin.Default()
	r.Use(Metrics())
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router:   r,
		DB:       dbConn,
		RDB:      rdb,
		Verifier: v,
		Config:   cfg,
		appSess:  session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

// MustNew connects Postgres, Redis and the credential verifier, exiting on
// any failure.
func MustNew(cfg config.Config) *App {
	// --- DB: Postgres ---
	dbConn := db.ConnectDB(cfg.DatabaseURL)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis unreachable", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}

	// --- Credential verifier ---
	v, err := NewVerifier(ctx, cfg)
	if err != nil {
		slog.Error("credential verifier", "provider", cfg.AuthProvider, "err", err)
		os.Exit(1)
	}

	return New(cfg, dbConn, rdb, v)
}

func NewVerifier(ctx context.Context, cfg config.Config) (auth.Verifier, error) {
	switch cfg.AuthProvider {
	case "firebase":
		return auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath)
	case "jwt":
		return auth.NewJWTVerifier(cfg.JWTSigningKey, cfg.JWTIssuer)
	}
	return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
}

// Repo builds the store with the configured quota zone and limit.
func (a *App) Repo() *db.Repo {
	return db.NewRepo(a.DB, db.WithLocation(a.Config.Location), db.WithQuotaLimit(a.Config.QuotaLimit))
}

func (a *App) Close() { _ = a.RDB.Close() }
