// controllers/item_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/models"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// GET /api/items?category=&condition=&donorId=&status=&limit=
func (ic *ItemController) ListItems(c *gin.Context) {
	f := models.ItemFilter{
		Category:  models.Category(c.Query("category")),
		Condition: models.Condition(c.Query("condition")),
		DonorID:   c.Query("donorId"),
		Status:    models.ItemStatus(c.Query("status")),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}
	items, err := ic.Repo.ListItems(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// GET /api/items/stats
func (ic *ItemController) Stats(c *gin.Context) {
	st, err := ic.Repo.ItemStats(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) CreateItem(c *gin.Context) {
	var in models.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	it, err := ic.Repo.CreateItem(c.Request.Context(), app.Actor(c), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// PUT /api/items/:id，只改传入的字段
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var p models.ItemPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), app.Actor(c).ID, p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Repo.DeleteItem(c.Request.Context(), c.Param("id"), app.Actor(c).ID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/items/:id/requests（仅物品捐赠者）
func (ic *ItemController) ListItemRequests(c *gin.Context) {
	reqs, err := ic.Repo.ListItemRequests(c.Request.Context(), c.Param("id"), app.Actor(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": reqs})
}
