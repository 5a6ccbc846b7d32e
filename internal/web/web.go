package web

import (
	"hookrelay/auth"
	"hookrelay/internal/aibot"
	"hookrelay/internal/db"
	"hookrelay/internal/dispatch"
	"hookrelay/internal/telegram"
	"hookrelay/internal/web/api"
	"hookrelay/internal/web/middleware"
	"hookrelay/internal/weblog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(dbConn *db.DB, redisClient *redis.Client, JWTSecret string, service *dispatch.Service, logStore weblog.Store, sched api.SchedulerInterface, tg *telegram.Client, ai *aibot.Client, defaultToken *string) *WebServer {
	router := gin.Default()

	authModule := auth.NewAuthModule(dbConn.Pool(), redisClient, JWTSecret)
	middlewareManager := middleware.NewMiddlewareManager(dbConn.Pool(), redisClient, authModule)

	api.RegisterAuthRoutes(router, authModule, middlewareManager)
	api.RegisterUserRoutes(router, middlewareManager, dbConn.Pool(), authModule)
	api.RegisterWebhookRoutes(router, middlewareManager, service, logStore)
	api.RegisterRuleRoutes(router, middlewareManager, dbConn, tg, defaultToken)
	api.RegisterScheduledBotRoutes(router, middlewareManager, dbConn, sched)
	api.RegisterAIBotRoutes(router, middlewareManager, dbConn, ai, tg, defaultToken)

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) {
	ws.router.Run(addr)
}
