package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/metrics"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/handlers"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.EngineFacade, policy identity.Policy, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger, m))
	engine.Use(middleware.DecompressRequest(middleware.MaxDecompressedBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	notificationHandler := handlers.NewNotificationHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := engine.Group("/api")
	api.Use(middleware.AuthRequired(facade))

	orders := api.Group("/orders")
	orders.Use(middleware.RequireRole(policy, model.RoleCustomer))
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/confirm-payment", orderHandler.ConfirmPayment)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/deliver", orderHandler.Deliver)

	staff := api.Group("/staff")
	staff.Use(middleware.RequireRole(policy, model.RoleWarehouseStaff))
	staff.POST("/orders/:id/ship", orderHandler.Ship)
	staff.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	staff.PUT("/products/:id/stock", catalogHandler.SetStock)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(policy, model.RoleAdministrator))
	admin.PATCH("/orders/:id", orderHandler.AdminUpdate)
	admin.POST("/products", catalogHandler.Create)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	return engine
}
