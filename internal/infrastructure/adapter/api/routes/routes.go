package routes

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Account  *handler.AccountHandler
	Catalog  *handler.CatalogHandler
	Purchase *handler.PurchaseHandler
	Workflow *handler.WorkflowHandler
	Admin    *handler.AdminHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, accounts usecase.AccountUseCase) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Account.Register)
		auth.POST("/login", h.Account.Login)
	}
	router.GET("/items", h.Catalog.List)
	router.GET("/items/:id", h.Catalog.View)
	router.GET("/sellers/:username/items", h.Catalog.ListBySeller)
	router.GET("/images/:name", h.Catalog.Image)

	// Authenticated routes; role checks happen in the use cases
	secured := router.Group("/", middleware.RequireSession(accounts))
	{
		secured.GET("/me", h.Account.Profile)
		secured.GET("/me/dashboard", h.Account.Dashboard)
		secured.GET("/me/notifications", h.Account.Mailbox)

		secured.POST("/items", h.Catalog.Create)
		secured.PUT("/items/:id", h.Catalog.Update)
		secured.DELETE("/items/:id", h.Catalog.Delete)

		secured.POST("/purchases", h.Purchase.Purchase)
		secured.POST("/seller-requests", h.Workflow.RequestSellerStatus)
	}

	admin := secured.Group("/admin")
	{
		admin.GET("/notifications", h.Workflow.List)
		admin.POST("/notifications/:id", h.Workflow.Process)

		admin.POST("/promotions", h.Admin.Promote)
		admin.GET("/users", h.Admin.ListUsers)
		admin.POST("/users/:username/funds", h.Admin.AddFunds)
		admin.DELETE("/users/:username", h.Admin.DeleteUser)

		admin.POST("/store/:family/repair", h.Admin.RepairFamily)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider, allowedOrigins []string) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.CORS(allowedOrigins))
}
