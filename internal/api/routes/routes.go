package routes

import (
	"pairchat/internal/api/handlers"
	"pairchat/internal/api/middleware"
	"pairchat/internal/config"
	"pairchat/internal/matchmaking"
	"pairchat/internal/services"
	"pairchat/internal/ws"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine       *gin.Engine
	matchHandler *handlers.MatchHandler
	wsHandler    *handlers.WSHandler
	rateLimitMW  *middleware.RateLimitMiddleware
	matchCfg     config.MatchConfig
}

func NewRouter(
	hub *ws.Hub,
	service *matchmaking.Service,
	redisService *services.RedisService,
	matchCfg config.MatchConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	return &Router{
		engine:       engine,
		matchHandler: handlers.NewMatchHandler(service),
		wsHandler:    handlers.NewWSHandler(hub),
		rateLimitMW:  middleware.NewRateLimitMiddleware(redisService),
		matchCfg:     matchCfg,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	// Synchronous match request, coarse per-IP limit
	queue := api.Group("/queue")
	queue.Use(r.rateLimitMW.RateLimitIP(r.matchCfg.RateLimitRequests, r.matchCfg.RateLimitWindow))
	{
		queue.POST("", r.matchHandler.JoinQueue)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
