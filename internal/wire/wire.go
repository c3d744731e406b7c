// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"encoding/json"

	"github.com/safishamsi/CDKG/internal/application/retrieval"
	"github.com/safishamsi/CDKG/internal/config"
	infraembedding "github.com/safishamsi/CDKG/internal/infrastructure/embedding"
	"github.com/safishamsi/CDKG/internal/infrastructure/llm"
	"github.com/safishamsi/CDKG/internal/infrastructure/persistence/milvus"
	"github.com/safishamsi/CDKG/internal/infrastructure/persistence/neo4j"
	"github.com/safishamsi/CDKG/internal/infrastructure/persistence/redis"
	"github.com/safishamsi/CDKG/internal/interfaces/http/handler"
	"github.com/safishamsi/CDKG/internal/interfaces/http/middleware"
	"github.com/safishamsi/CDKG/internal/interfaces/http/router"
	"github.com/safishamsi/CDKG/pkg/logger"
)

// App 应用依赖容器
type App struct {
	Router *router.Router

	Neo4jClient    *neo4j.Client
	GraphRepo      *neo4j.GraphRepository
	TranscriptRepo *neo4j.TranscriptRepository

	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository

	RetrievalService *retrieval.Service
}

// DataLayer 数据层依赖容器（bootstrap 等离线工具使用）
type DataLayer struct {
	Neo4jClient  *neo4j.Client
	GraphRepo    *neo4j.GraphRepository
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository
}

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	neo4jClient, err := neo4j.NewClient(ctx, &cfg.Graph.Neo4j)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = neo4jClient.Close(context.Background()) })

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = milvusClient.Close() })

	dl := &DataLayer{
		Neo4jClient:  neo4jClient,
		GraphRepo:    neo4j.NewGraphRepository(neo4jClient),
		MilvusClient: milvusClient,
		VectorRepo:   milvus.NewRepository(milvusClient, cfg.Embedding.Dimension),
	}
	return dl, cleanup, nil
}

// embeddingModelKey 记录当前缓存向量对应的 embedding 模型
const embeddingModelKey = "emb:model"

// rotateEmbeddingCache 换 embedding 模型后旧查询向量不再可比，清空后写入新模型标记。
// 失败只降级为告警，不阻塞启动
func rotateEmbeddingCache(ctx context.Context, cache *redis.Cache, model string) {
	if raw, err := cache.Get(ctx, embeddingModelKey); err == nil {
		var stored string
		if json.Unmarshal(raw, &stored) == nil && stored == model {
			return
		}
	}
	if err := cache.InvalidateEmbeddings(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate stale embedding cache", "error", err.Error())
		return
	}
	if err := cache.Set(ctx, embeddingModelKey, model, 0); err != nil {
		logger.Warn(ctx, "failed to record embedding model marker", "error", err.Error())
	}
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Neo4j（必需）
	neo4jClient, err := neo4j.NewClient(ctx, &cfg.Graph.Neo4j)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = neo4jClient.Close(context.Background()) })
	graphRepo := neo4j.NewGraphRepository(neo4jClient)
	transcriptRepo := neo4j.NewTranscriptRepository(neo4jClient, cfg.Retrieval)

	// Milvus（必需）
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { _ = milvusClient.Close() })
	vectorRepo := milvus.NewRepository(milvusClient, cfg.Embedding.Dimension)
	retrievalVector := milvus.NewRetrievalVectorRepository(vectorRepo)

	// Redis（可选，失败时禁用缓存与限流）
	var (
		redisClient *redis.Client
		cache       *redis.Cache
		rateLimiter *redis.RateLimiter
	)
	redisClient, err = redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, embedding cache and rate limiting disabled", "error", err.Error())
		redisClient = nil
	} else {
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		cache = redis.NewCache(redisClient)
		rateLimiter = redis.NewRateLimiter(redisClient)
		rotateEmbeddingCache(ctx, cache, cfg.Embedding.Model)
	}

	// Embedding（必需，语义分支依赖查询向量）
	baseEmbedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	embedder := infraembedding.NewCachedEmbedder(baseEmbedder, cache, cfg.Embedding.Model, cfg.Cache.Redis.EmbeddingTTL)

	// LLM 工厂与检索编排
	factory := llm.NewEinoFactory(cfg)
	engine := retrieval.NewEngine(embedder, retrievalVector, graphRepo, transcriptRepo, cfg.Retrieval)
	scorer := retrieval.NewScorer(cfg.Retrieval.Confidence)
	synthesizer := retrieval.NewSynthesizer(factory, cfg)
	service := retrieval.NewService(engine, scorer, synthesizer)

	// HTTP 层
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(neo4jClient, redisClient, milvusClient),
		Query:     handler.NewQueryHandler(service),
		Retrieval: handler.NewRetrievalHandler(service),
	}
	// 空指针不能直接塞进接口，否则中间件的 nil 判断失效
	var limiter middleware.RateLimiter
	if rateLimiter != nil {
		limiter = rateLimiter
	}
	r := router.New(cfg, handlers, limiter)

	app := &App{
		Router:           r,
		Neo4jClient:      neo4jClient,
		GraphRepo:        graphRepo,
		TranscriptRepo:   transcriptRepo,
		RedisClient:      redisClient,
		Cache:            cache,
		RateLimiter:      rateLimiter,
		MilvusClient:     milvusClient,
		VectorRepo:       vectorRepo,
		RetrievalService: service,
	}
	return app, cleanup, nil
}
