package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"saldo/internal/config"
	_ "saldo/internal/docs" // Import swagger docs
	"saldo/internal/events"
	"saldo/internal/handlers"
	"saldo/internal/middleware"
	"saldo/internal/monthname"
	"saldo/internal/services"
)

// newRouter wires services, handlers and routes on a fresh engine.
func newRouter(cfg *config.Config, db *gorm.DB, publisher events.Publisher, months *monthname.Formatter) *gin.Engine {
	tokens := middleware.NewTokenManager(cfg)

	// Initialize services
	userService := services.NewUserService(db)
	salaryService := services.NewSalaryService(db, publisher)
	expenseService := services.NewExpenseService(db, publisher)
	fixedExpenseService := services.NewFixedExpenseService(db, publisher, cfg.FixedExpenseEditPolicy)
	balanceService := services.NewBalanceService(db, months, cfg.BalancePeriodFallback)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	salaryHandler := handlers.NewSalaryHandler(salaryService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	fixedExpenseHandler := handlers.NewFixedExpenseHandler(fixedExpenseService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.NoRoute(middleware.NotFound())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", healthCheck(db))

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.POST("/auth/logout", authHandler.Logout)

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Salary routes
	salaries := protected.Group("/salaries")
	salaries.POST("", salaryHandler.CreateSalary)
	salaries.GET("", salaryHandler.GetUserSalaries)
	salaries.GET("/year/:year", salaryHandler.GetSalaryByYear)
	salaries.GET("/:id", salaryHandler.GetSalaryByID)
	salaries.PUT("/:id", salaryHandler.UpdateSalary)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetUserExpenses)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.GET("/:id/installments", expenseHandler.GetExpenseInstallments)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Fixed expense routes
	fixedExpenses := protected.Group("/fixed-expenses")
	fixedExpenses.POST("", fixedExpenseHandler.CreateFixedExpense)
	fixedExpenses.GET("", fixedExpenseHandler.GetUserFixedExpenses)
	fixedExpenses.GET("/:id", fixedExpenseHandler.GetFixedExpenseByID)
	fixedExpenses.GET("/:id/occurrences", fixedExpenseHandler.GetFixedExpenseOccurrences)
	fixedExpenses.PUT("/:id", fixedExpenseHandler.UpdateFixedExpense)
	fixedExpenses.DELETE("/:id", fixedExpenseHandler.DeleteFixedExpense)

	// Monthly balance
	protected.GET("/balance", balanceHandler.GetMonthlyBalance)

	return router
}

// healthCheck reports whether the API can reach its database.
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
