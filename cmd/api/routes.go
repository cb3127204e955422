package main

import (
	"database/sql"
	"time"

	"cloudconnect/internal/httpapi"
	"cloudconnect/internal/rbac"
	"cloudconnect/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", h.Login)

	// protected API group
	api := r.Group("/")
	api.Use(authMW)
	{
		authGroup := api.Group("/auth")
		{
			authGroup.GET("/me", h.Me)
			authGroup.GET("/sip-config", h.SIPConfig)
		}

		// CUSTOMER routes. Listing is role-scoped inside the service;
		// bulk actions and import are admin-only.
		customers := api.Group("/customers")
		{
			customers.GET("", h.ListCustomers)
			customers.POST("", h.CreateCustomer)
			customers.PUT("/:id", h.UpdateCustomer)
			customers.POST("/bulk", rbac.RequireAdmin(), h.BulkCustomers)
			customers.POST("/import", rbac.RequireAdmin(), h.ImportCustomers)
		}

		// CALL routes
		api.POST("/calls", h.RecordCall)

		// DASHBOARD routes
		api.GET("/dashboard/stats", h.DashboardStats)

		// USER routes (admin)
		users := api.Group("/users")
		users.Use(rbac.RequireAdmin())
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.PUT("/:id", h.UpdateUser)
		}
	}
}
