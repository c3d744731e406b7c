package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	redisinfra "github.com/safishamsi/CDKG/internal/infrastructure/persistence/redis"
	"github.com/safishamsi/CDKG/pkg/metrics"
)

// CachedEmbedder 在 Embedder 外层加查询向量缓存。
// 同一查询文本在 TTL 内复用缓存向量，并发的相同查询只触发一次上游调用，
// 缓存故障时直通底层。
type CachedEmbedder struct {
	inner embedding.Embedder
	cache *redisinfra.Cache
	model string
	ttl   time.Duration
}

var _ embedding.Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(inner embedding.Embedder, cache *redisinfra.Cache, model string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: cache,
		model: model,
		ttl:   ttl,
	}
}

func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if c.cache == nil || c.ttl <= 0 || len(texts) != 1 {
		return c.inner.EmbedStrings(ctx, texts, opts...)
	}

	key := c.cacheKey(texts[0])
	loaded := false
	raw, err := c.cache.GetOrLoadSafe(ctx, key, c.ttl, func() (interface{}, error) {
		loaded = true
		out, err := c.inner.EmbedStrings(ctx, texts, opts...)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, fmt.Errorf("unexpected embedding count: %d", len(out))
		}
		return out[0], nil
	})
	if err != nil {
		if loaded {
			// 上游调用本身失败
			return nil, err
		}
		// 缓存层故障，直通底层
		return c.inner.EmbedStrings(ctx, texts, opts...)
	}

	if loaded {
		metrics.EmbeddingCacheHits.WithLabelValues("miss").Inc()
	} else {
		metrics.EmbeddingCacheHits.WithLabelValues("hit").Inc()
	}

	var vec []float64
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
		// 缓存内容不可用时直通底层
		return c.inner.EmbedStrings(ctx, texts, opts...)
	}
	return [][]float64{vec}, nil
}

// cacheKey 以模型名和文本哈希为键，换模型自动失效
func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:16])
}
