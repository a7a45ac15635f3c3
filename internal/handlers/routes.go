package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"finanzas/internal/middleware"
	"finanzas/internal/services"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth       *AuthHandler
	Account    *AccountHandler
	Movement   *MovementHandler
	Reserve    *ReserveHandler
	Budget     *BudgetHandler
	Projection *ProjectionHandler
	Summary    *SummaryHandler
}

// NewHandlers wires the services over db into their handlers.
func NewHandlers(db *gorm.DB) *Handlers {
	movementService := services.NewMovementService(db)
	return &Handlers{
		Auth:       NewAuthHandler(services.NewUserService(db)),
		Account:    NewAccountHandler(services.NewAccountService(db), movementService),
		Movement:   NewMovementHandler(movementService),
		Reserve:    NewReserveHandler(services.NewReserveService(db)),
		Budget:     NewBudgetHandler(services.NewBudgetService(db)),
		Projection: NewProjectionHandler(services.NewProjectionService(db)),
		Summary:    NewSummaryHandler(services.NewSummaryService(db)),
	}
}

// NewRouter builds the gin engine with the standard middleware chain and all routes.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.Register(router.Group("/api/v1"), middleware.AuthMiddleware())
	return router
}

// Register mounts the public auth routes and the protected API on r.
func (h *Handlers) Register(r *gin.RouterGroup, auth gin.HandlerFunc) {
	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)

	protected := r.Group("/")
	protected.Use(auth)

	protected.GET("/profile", h.Auth.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("", h.Account.GetUserAccounts)
	accounts.GET("/:id", h.Account.GetAccountByID)
	accounts.PUT("/:id", h.Account.UpdateAccount)
	accounts.DELETE("/:id", h.Account.DeleteAccount)
	accounts.GET("/:id/movements", h.Account.GetAccountMovements)
	accounts.POST("/:id/reconcile", h.Account.ReconcileBalance)

	movements := protected.Group("/movements")
	movements.POST("", h.Movement.RegisterMovement)
	movements.DELETE("/:id", h.Movement.DeleteMovement)

	reserves := protected.Group("/reserves")
	reserves.POST("", h.Reserve.CreateReserve)
	reserves.GET("", h.Reserve.GetUserReserves)
	reserves.GET("/summary", h.Reserve.GetSummary)
	reserves.POST("/movements", h.Reserve.RegisterMovement)
	reserves.DELETE("/movements/:id", h.Reserve.DeleteMovement)
	reserves.POST("/bulk-contributions", h.Reserve.BulkContribute)
	reserves.GET("/:id", h.Reserve.GetReserveByID)
	reserves.PUT("/:id", h.Reserve.UpdateReserve)
	reserves.DELETE("/:id", h.Reserve.DeleteReserve)
	reserves.GET("/:id/movements", h.Reserve.GetMovements)
	reserves.POST("/:id/contributions", h.Reserve.Contribute)
	reserves.POST("/:id/withdrawals", h.Reserve.Withdraw)

	budget := protected.Group("/budget")
	budget.GET("", h.Budget.GetSummary)
	budget.GET("/config", h.Budget.GetConfig)
	budget.PUT("/config", h.Budget.SaveConfig)

	projections := protected.Group("/projections")
	projections.POST("", h.Projection.CreateProjection)
	projections.GET("", h.Projection.GetUserProjections)
	projections.GET("/:id", h.Projection.GetProjectionByID)
	projections.PUT("/:id", h.Projection.UpdateProjection)
	projections.DELETE("/:id", h.Projection.DeleteProjection)

	protected.GET("/summary", h.Summary.GetFinancialSummary)
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
