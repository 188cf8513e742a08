package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-coach/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	accountH *AccountHandler,
	pipelineH *PipelineHandler,
	jwtSvc *service.JWTService,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	if accountH != nil {
		auth := r.Group("/auth")
		auth.POST("/register", accountH.Register)
		auth.POST("/login", accountH.Login)
		auth.POST("/refresh", accountH.RefreshToken)
		auth.POST("/logout", accountH.Logout)
	}

	optional := OptionalJWTAuthMiddleware(jwtSvc)
	r.POST("/plans", pipelineH.PlanPreparation)
	r.POST("/sessions/schedule", pipelineH.ScheduleSessions)
	r.POST("/sessions/transition", pipelineH.TransitionSession)
	r.POST("/responses/score", pipelineH.ScoreResponses)
	r.POST("/forecast", optional, pipelineH.Forecast)
	r.POST("/forecast/offer", pipelineH.ForecastOffer)
	r.POST("/follow-ups", optional, pipelineH.PlanFollowUp)
	r.POST("/negotiation", pipelineH.AnalyzeOffer)
	r.POST("/coordinate", optional, pipelineH.Coordinate)

	perf := r.Group("/performance")
	perf.POST("", optional, pipelineH.RecordPerformance)
	perf.GET("/history", JWTAuthMiddleware(jwtSvc), pipelineH.History)
	perf.GET("/similar", JWTAuthMiddleware(jwtSvc), pipelineH.SimilarRecords)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
