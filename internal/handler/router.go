package handler

import (
	"github.com/cleberrangel/timelyai-api/internal/identity"
	"github.com/cleberrangel/timelyai-api/internal/middleware"
	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Routes reúne os handlers montados pelo cmd/api
type Routes struct {
	Resolver      identity.Resolver
	AllowedOrigin string

	Health          *HealthHandler
	Tasks           *TaskHandler
	Goals           *GoalHandler
	Analytics       *AnalyticsHandler
	Recommendations *RecommendationHandler
	Events          *EventHandler
	WebSocket       *WebSocketHandler
}

// NewRouter monta o engine gin com as rotas públicas e as protegidas em /api
func NewRouter(rt Routes) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(rt.AllowedOrigin))
	r.Use(middleware.Observe())

	// Públicas
	r.GET("/health", rt.Health.Detailed)
	r.GET("/health/live", rt.Health.Live)
	r.GET("/health/ready", rt.Health.Ready)
	r.GET("/metrics", rt.Health.Metrics)
	r.GET("/metrics/summary", rt.Health.MetricsSummary)

	authenticate := middleware.Identity(rt.Resolver)

	// O navegador não envia headers no handshake; o token vem na query
	r.GET("/api/ws", websocket.TokenFromQuery(), authenticate, websocket.RequireUpgrade(), rt.WebSocket.HandleConnection)

	api := r.Group("/api")
	api.Use(authenticate)
	{
		api.GET("/tasks", rt.Tasks.List)
		api.POST("/tasks", rt.Tasks.Create)
		api.GET("/tasks/export", rt.Tasks.Export)
		api.GET("/tasks/:id", rt.Tasks.Get)
		api.PUT("/tasks/:id", rt.Tasks.Update)
		api.DELETE("/tasks/:id", rt.Tasks.Delete)

		api.GET("/goals", rt.Goals.Get)
		api.POST("/goals", rt.Goals.Save)

		api.GET("/analytics/slices", rt.Analytics.Slices)
		api.GET("/analytics/chart", rt.Analytics.Chart)
		api.POST("/analytics/chart/click", rt.Analytics.Click)
		api.POST("/analytics/chart/hover", rt.Analytics.Hover)

		api.POST("/recommendations", rt.Recommendations.Generate)
		api.GET("/recommendations/history", rt.Recommendations.History)
		api.POST("/recommendations/feedback", rt.Recommendations.Feedback)

		api.GET("/events", rt.Events.List)
		api.POST("/events", rt.Events.Create)

		api.GET("/ws/status", rt.WebSocket.GetUserConnections)
	}

	return r
}
