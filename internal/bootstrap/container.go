package bootstrap

import (
	"context"
	"time"

	"wellmate-be/internal/config"
	"wellmate-be/internal/constant"
	"wellmate-be/internal/controller"
	"wellmate-be/internal/handler"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/repository/memory"
	"wellmate-be/internal/repository/unitofwork"
	"wellmate-be/internal/service"
	"wellmate-be/internal/websocket"
	"wellmate-be/pkg/chatagent/coze"
	"wellmate-be/pkg/conversation"
	"wellmate-be/pkg/database"
	"wellmate-be/pkg/events"
	"wellmate-be/pkg/lock"
	"wellmate-be/pkg/multimodal"
	pktNats "wellmate-be/pkg/nats"
	"wellmate-be/pkg/token"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	UserController       controller.IUserController
	ChatController       controller.IChatController
	SessionController    controller.ISessionController
	HealthDataController controller.IHealthDataController
	MultimodalController controller.IMultimodalController

	Issuer token.IIssuer
	Logger logger.ILogger

	// Background Services (started by Start)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	schema, err := resolveSchema(ctx, db, cfg, sysLogger)
	if err != nil {
		return nil, err
	}
	uowFactory := unitofwork.NewRepositoryFactory(db, schema)
	userCache := memory.NewUserCache(cfg.Cache.UserTTL)
	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	c := &Container{Issuer: issuer, Logger: sysLogger}

	// 2. Infrastructure
	rdb := connectRedis(ctx, cfg.App.RedisURL, sysLogger)
	var locker lock.Locker = lock.NewMemoryLocker(lock.DefaultOptions())
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, lock.DefaultOptions())
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var eventPublisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS publisher unavailable, events are dropped", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS subscriber unavailable, notifications disabled", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// 3. Turn queue
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 4. Conversation core
	store := conversation.NewUnitOfWorkStore(uowFactory, cfg.Database.QueryTimeout)
	reconciler := conversation.NewReconciler(store, locker, schema, sysLogger)

	agent := coze.NewCozeProvider(cfg.Coze.BaseURL, cfg.Coze.APIKey, cfg.Coze.PhysicalBotID, cfg.Coze.Timeout)
	bots := map[string]string{
		constant.SessionTypePhysical: cfg.Coze.PhysicalBotID,
		constant.SessionTypeMental:   cfg.Coze.MentalBotID,
	}

	// 5. Services
	turnPublisher := service.NewTurnPublisher(cfg.App.TurnQueueTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.TurnQueueTopic, reconciler, eventPublisher, sysLogger)

	authService := service.NewAuthService(uowFactory, issuer, eventPublisher, sysLogger, cfg.Database.QueryTimeout)
	userService := service.NewUserService(uowFactory, userCache, sysLogger, cfg.Database.QueryTimeout)
	chatService := service.NewChatService(reconciler, agent, bots, turnPublisher, eventPublisher, sysLogger)
	sessionService := service.NewSessionService(reconciler, eventPublisher, sysLogger)
	healthService := service.NewHealthDataService(uowFactory, eventPublisher, sysLogger, cfg.Database.QueryTimeout)
	multimodalService := service.NewMultimodalService(multimodal.NewClient(cfg.Multimodal.BaseURL, cfg.Multimodal.Timeout), sysLogger)

	// 6. Notification System
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	if natsSub != nil {
		c.NotificationService = service.NewNotificationService(natsSub, c.WebSocketHub, wsLogger)
	}
	c.NotificationHandler = handler.NewNotificationHandler(c.WebSocketHub, issuer, wsLogger)

	// 7. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.UserController = controller.NewUserController(userService)
	c.ChatController = controller.NewChatController(chatService)
	c.SessionController = controller.NewSessionController(sessionService)
	c.HealthDataController = controller.NewHealthDataController(healthService)
	c.MultimodalController = controller.NewMultimodalController(multimodalService)

	return c, nil
}

// Start launches the background workers. They stop when ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	if c.NotificationService != nil {
		c.NotificationService.Start(ctx)
	}
	return c.ConsumerService.Consume(ctx)
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func resolveSchema(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.ILogger) (database.SchemaVersion, error) {
	probeCtx, cancel := context.WithTimeout(ctx, cfg.Database.QueryTimeout)
	defer cancel()

	schema, err := database.ResolveSchemaVersion(probeCtx, db, cfg.Database.SchemaVersion)
	if err != nil {
		return "", err
	}
	log.Info("Bootstrap", "Schema version resolved", map[string]interface{}{"schema": string(schema)})
	return schema, nil
}

// connectRedis returns nil when Redis is unset or unreachable; callers then
// fall back to in-process locking and single-instance websocket delivery.
func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Invalid Redis URL, using direct address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Bootstrap", "Redis unavailable, running single-instance", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
