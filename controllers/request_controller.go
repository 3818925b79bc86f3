// controllers/request_controller.go
package controllers

import (
	"errors"
	"io"
	"net/http"

	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/models"

	"github.com/gin-gonic/gin"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

type reasonBody struct {
	Reason string `json:"reason"`
}

// bindOptional decodes an optional JSON body; an empty body is fine.
func bindOptional(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request: "+err.Error())
		return false
	}
	return true
}

// POST /api/requests
func (rc *RequestController) CreateRequest(c *gin.Context) {
	var in struct {
		ItemID  string `json:"itemId" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	req, err := rc.Repo.CreateRequest(c.Request.Context(), app.Actor(c), in.ItemID, in.Message)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GET /api/requests/mine?direction=received|sent
func (rc *RequestController) ListMine(c *gin.Context) {
	dir := models.Direction(c.DefaultQuery("direction", string(models.DirectionReceived)))
	res, err := rc.Repo.ListMyRequests(c.Request.Context(), app.Actor(c).ID, dir)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (rc *RequestController) Approve(c *gin.Context) {
	var info models.CollectionInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	req, err := rc.Repo.ApproveRequest(c.Request.Context(), c.Param("id"), app.Actor(c).ID, info)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) Refuse(c *gin.Context) {
	var in reasonBody
	if !bindOptional(c, &in) {
		return
	}
	req, err := rc.Repo.RefuseRequest(c.Request.Context(), c.Param("id"), app.Actor(c).ID, in.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) ConfirmCollection(c *gin.Context) {
	req, err := rc.Repo.ConfirmCollection(c.Request.Context(), c.Param("id"), app.Actor(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) Cancel(c *gin.Context) {
	var in reasonBody
	if !bindOptional(c, &in) {
		return
	}
	req, err := rc.Repo.CancelRequest(c.Request.Context(), c.Param("id"), app.Actor(c).ID, in.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
