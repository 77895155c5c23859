package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coffee-change.backend/internal/interfaces/http/handlers"
	"coffee-change.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	roundupHandler     *handlers.RoundupHandler
	priceHandler       *handlers.PriceHandler
	diagnosticsHandler *handlers.DiagnosticsHandler
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		api.POST("/sync-transactions", d.roundupHandler.SyncTransactions)
		api.POST("/get-roundups", d.roundupHandler.GetRoundups)
		api.POST("/get-deposited-roundups", d.roundupHandler.GetDepositedRoundups)
		api.POST("/mark-deposited", middleware.IdempotencyMiddleware(), d.roundupHandler.MarkDeposited)

		api.GET("/price", d.priceHandler.GetPrice)
		api.POST("/deposit-quote", d.priceHandler.DepositQuote)
		api.POST("/position", d.priceHandler.GetPosition)

		api.GET("/test-db", d.diagnosticsHandler.TestDB)
	}
}

// applyCORSMiddleware echoes allowed origins. An empty list allows any origin.
func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originAllowed(origin, allowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Idempotency-Key, "+middleware.RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader+", X-Idempotency-Hit")
		c.Header("Access-Control-Max-Age", "3600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "coffee-change",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
