package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/chat"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

const serviceName = "messenger-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer(context.Background(), serviceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Environment)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	var blacklist auth.Blacklist
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		blacklist = auth.NewRedisBlacklist(client)
	}
	validator := auth.NewValidator(cfg.Auth.JWTSecret, blacklist)

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "messenger.audit", serviceName, cfg.Telemetry.Environment)

	userRepo := repositories.NewUserRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	receiptRepo := repositories.NewReceiptRepo(database)
	friendRepo := repositories.NewFriendRepo(database)

	hub := ws.NewHub()

	messageService := chat.NewMessageService(groupRepo, messageRepo, receiptRepo, hub)
	receiptService := chat.NewReceiptService(groupRepo, messageRepo, receiptRepo, hub)
	groupService := chat.NewGroupService(groupRepo, userRepo, friendRepo, messageService, hub)
	friendService := chat.NewFriendService(friendRepo, userRepo, hub)
	userService := chat.NewUserService(userRepo, friendRepo, hub, hub)

	dispatcher := ws.NewDispatcher(messageService, receiptService)
	wsHandler := ws.NewHandler(hub, validator, userRepo, dispatcher, audit, ws.Options{
		WriteWait:      time.Duration(cfg.WebSocket.WriteWaitSeconds) * time.Second,
		PongWait:       time.Duration(cfg.WebSocket.PongWaitSeconds) * time.Second,
		PingPeriod:     time.Duration(cfg.WebSocket.PingPeriodSeconds) * time.Second,
		MaxMessageSize: int64(cfg.WebSocket.MaxMessageSizeBytes),
		SendBuffer:     cfg.WebSocket.SendBufferSize,
	})

	groupHandler := handlers.NewGroupHandler(groupService, audit)
	friendHandler := handlers.NewFriendHandler(friendService, audit)
	messageHandler := handlers.NewMessageHandler(messageService)
	userHandler := handlers.NewUserHandler(userService)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.MetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(validator)

	router.GET("/me", authMiddleware, userHandler.Me)
	router.PATCH("/me/settings", authMiddleware, userHandler.UpdateSettings)
	router.GET("/me/pins", authMiddleware, groupHandler.Pinned)

	router.GET("/friends", authMiddleware, friendHandler.List)
	router.GET("/friends/requests", authMiddleware, friendHandler.Pending)
	router.POST("/friends/requests", authMiddleware, friendHandler.Request)
	router.POST("/friends/requests/:username", authMiddleware, friendHandler.Respond)
	router.DELETE("/friends/:username", authMiddleware, friendHandler.Remove)

	router.POST("/groups", authMiddleware, groupHandler.Create)
	router.GET("/groups", authMiddleware, groupHandler.List)
	router.GET("/groups/:group_id", authMiddleware, groupHandler.Detail)
	router.PATCH("/groups/:group_id", authMiddleware, groupHandler.UpdateInfo)
	router.DELETE("/groups/:group_id", authMiddleware, groupHandler.Delete)
	router.POST("/groups/:group_id/join", authMiddleware, groupHandler.Join)
	router.POST("/groups/:group_id/invite", authMiddleware, groupHandler.Invite)
	router.POST("/groups/:group_id/kick", authMiddleware, groupHandler.Kick)
	router.POST("/groups/:group_id/leave", authMiddleware, groupHandler.Leave)
	router.PUT("/groups/:group_id/admins", authMiddleware, groupHandler.SetAdmin)
	router.POST("/groups/:group_id/mute", authMiddleware, groupHandler.Mute)
	router.POST("/groups/:group_id/unmute", authMiddleware, groupHandler.Unmute)
	router.PUT("/groups/:group_id/invite-policy", authMiddleware, groupHandler.SetInvitePolicy)
	router.PUT("/groups/:group_id/pin", authMiddleware, groupHandler.Pin)
	router.DELETE("/groups/:group_id/pin", authMiddleware, groupHandler.Unpin)
	router.POST("/groups/:group_id/reset-id", authMiddleware, groupHandler.ResetID)

	router.GET("/groups/:group_id/messages", authMiddleware, messageHandler.History)
	router.POST("/groups/:group_id/messages", authMiddleware, messageHandler.Post)
	router.PATCH("/groups/:group_id/messages/:message_id", authMiddleware, messageHandler.Edit)
	router.DELETE("/groups/:group_id/messages/:message_id", authMiddleware, messageHandler.Delete)

	router.GET("/ws", wsHandler.Serve)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
