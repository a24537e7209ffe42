package bootstrap

import (
	"context"
	"log"
	"sort"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/controller"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/internal/store"
	"ai-chatbot-be/pkg/captcha"
	"ai-chatbot-be/pkg/llm/factory"
	pktNats "ai-chatbot-be/pkg/nats"
	"ai-chatbot-be/pkg/objectstore"
	"ai-chatbot-be/pkg/quota"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger *logger.ZapLogger

	// Controllers
	AuthController  controller.IAuthController
	OAuthController controller.IOAuthController
	ChatController  controller.IChatController
	VoteController  controller.IVoteController
	ModelController controller.IModelController
	FileController  controller.IFileController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	queries := store.NewQueries(uowFactory, sysLogger)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() {
		_ = sysLogger.Sync()
		_ = llmLogger.Sync()
	})

	// 2. Model registry
	catalogue := append([]factory.ModelSpec{}, constant.ChatModels...)
	if cfg.Ai.OllamaModel != "" {
		catalogue = append(catalogue, constant.OllamaModel(cfg.Ai.OllamaModel))
	}
	registry, skipped := factory.Build(ctx, catalogue, factory.Credentials{
		GeminiAPIKey:    cfg.Keys.GoogleGemini,
		GroqAPIKey:      cfg.Keys.Groq,
		GroqBaseURL:     cfg.Ai.GroqBaseURL,
		OllamaBaseURL:   cfg.Ai.OllamaBaseURL,
		AttachmentHosts: attachmentHosts(cfg.Storage),
	}, cfg.Ai.DefaultChatModel)
	logSkippedModels(skipped)
	if !registry.Has(registry.Default()) {
		log.Printf("[WARN] Default chat model %q is not available", registry.Default())
	}
	log.Printf("[INFO] Chat models available: %d", len(registry.Models()))

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var relay service.EventRelay
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			relay = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Quota
	var limiter quota.Limiter = quota.NewMemoryLimiter(cfg.Quota.MessagesPerDay)
	if cfg.App.RedisURL != "" {
		if rdb := connectRedis(ctx, cfg.App.RedisURL); rdb != nil {
			limiter = quota.NewRedisLimiter(rdb, cfg.Quota.MessagesPerDay)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
			log.Printf("[INFO] Using Redis message quota")
		}
	}

	// 5. Captcha
	var verifier captcha.Verifier = captcha.NoopVerifier{}
	if cfg.IsProduction() {
		if cfg.Auth.TurnstileSecretKey == "" {
			log.Printf("[WARN] TURNSTILE_SECRET_KEY is not set, captcha checks will fail")
		}
		verifier = captcha.NewTurnstileVerifier(cfg.Auth.TurnstileSecretKey)
	}

	// 6. Object storage
	var uploader objectstore.Uploader
	s3Client, err := objectstore.NewS3Client(ctx, objectstore.S3Config{
		AccessKey: cfg.Storage.AwsAccessKey,
		SecretKey: cfg.Storage.AwsSecretKey,
		Region:    cfg.Storage.AwsRegion,
		Bucket:    cfg.Storage.BucketName,
	})
	if err != nil {
		log.Printf("[WARN] File uploads disabled: %v", err)
	} else {
		uploader = s3Client
	}

	// 7. Services
	publisherService := service.NewPublisherService(pubSub, constant.EventTopic, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, constant.EventTopic, relay, sysLogger)

	titleService := service.NewTitleService(registry, llmLogger)
	chatService := service.NewChatService(
		queries,
		registry,
		titleService,
		limiter,
		publisherService,
		sysLogger,
		llmLogger,
		service.ChatServiceConfig{
			MaxStreamDuration: cfg.Ai.MaxStreamDuration,
			MessagesPerDay:    cfg.Quota.MessagesPerDay,
		},
	)
	authService := service.NewAuthService(queries, verifier, publisherService, sysLogger, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)
	oauthService := service.NewOAuthService(queries, publisherService, sysLogger, service.OAuthConfig{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  cfg.Auth.GoogleRedirectURL,
		JwtSecret:    cfg.Auth.JwtSecret,
		TokenTTL:     cfg.Auth.TokenTTL,
	})
	voteService := service.NewVoteService(queries, publisherService)
	modelService := service.NewModelService(registry)
	fileService := service.NewFileService(uploader, cfg.Storage.MaxUploadSize, sysLogger)

	// 8. Controllers
	secure := cfg.IsProduction()
	c.AuthController = controller.NewAuthController(authService, secure)
	c.OAuthController = controller.NewOAuthController(oauthService, sysLogger, cfg.App.ClientURL, secure)
	c.ChatController = controller.NewChatController(chatService, sysLogger)
	c.VoteController = controller.NewVoteController(voteService)
	c.ModelController = controller.NewModelController(modelService, secure)
	c.FileController = controller.NewFileController(fileService, cfg.Storage.MaxUploadSize)

	return c
}

// Close releases infrastructure clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func connectRedis(ctx context.Context, url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory quota", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func logSkippedModels(skipped map[string]error) {
	ids := make([]string, 0, len(skipped))
	for id := range skipped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		log.Printf("[WARN] Chat model %s unavailable: %v", id, skipped[id])
	}
}

// attachmentHosts lists the hosts uploaded files are served from.
func attachmentHosts(storage config.StorageConfig) []string {
	if storage.BucketName == "" || storage.AwsRegion == "" {
		return nil
	}
	return []string{objectstore.PublicHost(storage.BucketName, storage.AwsRegion)}
}
