package routes

import (
	"Gin_postgres_redis_donations/app"
	"Gin_postgres_redis_donations/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	itemCtl := controllers.NewItemController(s)
	reqCtl := controllers.NewRequestController(s)
	authCtl := controllers.NewAuthController(s)
	adminCtl := controllers.NewAdminController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Verifier, a.Config)
	adminMW := app.AdminOnly()
	itemWrites := app.Debounce(a.RDB, "items", a.Config.WriteDebounce)
	requestWrites := app.Debounce(a.RDB, "requests", a.Config.WriteDebounce)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// 登录会话
	// ------------------------------
	authG := r.Group("/api/auth")
	{
		authG.POST("/login", authCtl.Login)
		authG.POST("/logout", authCtl.Logout)
		authG.POST("/logout-all", authMW, authCtl.LogoutAll)
		authG.POST("/update", authMW, authCtl.UpdateProfile)
		authG.GET("/me", authMW, authCtl.Me)
	}

	// ------------------------------
	// 物品：公开浏览
	// ------------------------------
	items := r.Group("/api/items")
	{
		items.GET("", itemCtl.ListItems) // ?category=&condition=&donorId=&status=&limit=
		items.GET("/stats", itemCtl.Stats)
		items.GET("/:id", itemCtl.GetItem)
	}

	// 物品：捐赠者管理
	itemsAuth := r.Group("/api/items", authMW)
	{
		itemsAuth.POST("", itemWrites, itemCtl.CreateItem)
		itemsAuth.PUT("/:id", itemCtl.UpdateItem)
		itemsAuth.DELETE("/:id", itemCtl.DeleteItem)
		itemsAuth.GET("/:id/requests", itemCtl.ListItemRequests)
	}

	// ------------------------------
	// 请求生命周期
	// ------------------------------
	reqs := r.Group("/api/requests", authMW)
	{
		reqs.POST("", requestWrites, reqCtl.CreateRequest)
		reqs.GET("/mine", reqCtl.ListMine) // ?direction=received|sent
		reqs.POST("/:id/approve", reqCtl.Approve)
		reqs.POST("/:id/refuse", reqCtl.Refuse)
		reqs.POST("/:id/confirm-collection", reqCtl.ConfirmCollection)
		reqs.POST("/:id/cancel", reqCtl.Cancel)
	}

	// ------------------------------
	// 管理员
	// ------------------------------
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.GET("/items", adminCtl.ListItems) // ?q=&status=&page=&size=
		admin.POST("/stats/reconcile", adminCtl.ReconcileStats)
	}
}
