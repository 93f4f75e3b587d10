package bootstrap

import (
	"log"
	"time"

	"github.com/on-par/vemorable-sub000/internal/cache"
	"github.com/on-par/vemorable-sub000/internal/config"
	"github.com/on-par/vemorable-sub000/internal/controller"
	"github.com/on-par/vemorable-sub000/internal/pkg/logger"
	"github.com/on-par/vemorable-sub000/internal/repository/unitofwork"
	"github.com/on-par/vemorable-sub000/internal/service"
	"github.com/on-par/vemorable-sub000/pkg/embedding"
	"github.com/on-par/vemorable-sub000/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// Container wires the whole dependency graph. Cache instances are
// constructed here and passed by reference; there are no import-time
// singletons.
type Container struct {
	NoteController   controller.INoteController
	SearchController controller.ISearchController

	CacheManager *cache.CacheManager
	Logger       logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus (in-process)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	eventPublisher := events.NewPublisher(pubSub, events.NoteEventsTopic)

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "jina":
		embeddingProvider = embedding.NewJinaProvider(cfg.Ai.JinaApiKey)
		log.Printf("[INFO] Using Embedding Provider: JINA")
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	gateway := embedding.NewGateway(embeddingProvider, cfg.Ai.EmbeddingProvider)

	// 4. Cache Layer
	cacheManager := cache.NewCacheManager(
		time.Duration(cfg.Cache.DefaultTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.CleanupIntervalSeconds)*time.Second,
	)
	queryCache := cache.NewQueryCache(cacheManager, sysLogger)
	invalidator := cache.NewInvalidator(cacheManager, sysLogger)

	// 5. Services
	noteService := service.NewNoteService(
		uowFactory,
		gateway,
		queryCache,
		invalidator,
		eventPublisher,
		sysLogger,
		service.NoteCacheTTL{
			Notes: time.Duration(cfg.Cache.NotesTTLSeconds) * time.Second,
			Tags:  time.Duration(cfg.Cache.TagsTTLSeconds) * time.Second,
		},
	)
	searchService := service.NewSearchService(
		uowFactory,
		gateway,
		queryCache,
		sysLogger,
		time.Duration(cfg.Cache.SearchTTLSeconds)*time.Second,
	)

	// 6. Controllers
	return &Container{
		NoteController:   controller.NewNoteController(noteService),
		SearchController: controller.NewSearchController(searchService),
		CacheManager:     cacheManager,
		Logger:           sysLogger,
	}
}
