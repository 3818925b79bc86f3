package controllers

import (
	"log/slog"
	"net/http"

	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/db"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[db.ErrorKind]int{
	db.KindValidation:         http.StatusBadRequest,
	db.KindForbidden:          http.StatusForbidden,
	db.KindNotFound:           http.StatusNotFound,
	db.KindInvalidTransition:  http.StatusConflict,
	db.KindQuotaExceeded:      http.StatusTooManyRequests,
	db.KindStorageUnavailable: http.StatusServiceUnavailable,
}

// respondErr writes {"error", "kind"} with the status for the error's kind.
// Storage details stay in the log.
func respondErr(c *gin.Context, err error) {
	kind := db.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.Error("unhandled error", "route", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	msg := err.Error()
	if kind == db.KindStorageUnavailable {
		slog.Error("storage unavailable", "route", c.FullPath(), "err", err)
		msg = "storage unavailable, try again"
	}
	c.JSON(status, app.H{"error": msg, "kind": kind})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, app.H{"error": msg, "kind": db.KindValidation})
}
