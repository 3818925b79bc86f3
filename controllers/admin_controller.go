package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/db"
	"Gin_postgres_redis_donations/models"

	"github.com/gin-gonic/gin"
)

type AdminController struct{ *Srv }

func NewAdminController(s *Srv) *AdminController { return &AdminController{Srv: s} }

// POST /admin/stats/reconcile
func (ac *AdminController) ReconcileStats(c *gin.Context) {
	gs, err := ac.Repo.Counters.Reconcile(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

// GET /admin/items?q=&status=&page=&size=
func (ac *AdminController) ListItems(c *gin.Context) {
	q := db.AdminItemsQuery{
		Q:      c.Query("q"),
		Status: models.ItemStatus(c.Query("status")),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ac.Repo.ListItemsWithClaims(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "items": res.Items, "total": res.Total})
}
