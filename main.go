package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"realtime-service/internal/auth"
	"realtime-service/internal/call"
	"realtime-service/internal/chat"
	"realtime-service/internal/config"
	"realtime-service/internal/handlers"
	"realtime-service/internal/middleware"
	"realtime-service/internal/notify"
	"realtime-service/internal/observability"
	"realtime-service/internal/presence"
	"realtime-service/internal/rabbitmq"
	"realtime-service/internal/store"
	"realtime-service/internal/telemetry"
	"realtime-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, "realtime-service", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	st := store.Connect(ctx, cfg.RedisURL)
	defer st.Close()

	if publisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(publisher)
		defer publisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit.realtime", "realtime-service", cfg.Environment)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	hub := ws.NewHub()
	tracker := presence.NewTracker(hub, st)
	pipeline := chat.NewPipeline(hub, st)
	engine := call.NewEngine(hub)
	relay := notify.NewRelay(hub, st)

	wsHandler := ws.NewHandler(hub, verifier, tracker, pipeline, engine, relay)
	historyHandler := handlers.NewHistoryHandler(st, hub, engine)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("realtime-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/api/rooms/:room_id/messages", authMiddleware, historyHandler.GetRoomMessages)
	router.GET("/api/users/:user_id/notifications", authMiddleware, historyHandler.GetUserNotifications)
	router.GET("/health", historyHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	log.Printf("realtime server listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
