// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/safishamsi/CDKG/pkg/metrics"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
	dim    int
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client, dimension int) *Repository {
	if dimension <= 0 {
		dimension = DefaultVectorDimension
	}
	return &Repository{client: client, dim: dimension}
}

// SearchParams 检索参数
type SearchParams struct {
	QueryVector []float32
	TopK        int
	// EntityTypes 为空表示不过滤
	EntityTypes []string
}

// SearchResult 检索结果
type SearchResult struct {
	ID          string
	Score       float32
	EntityID    string
	EntityType  string
	Name        string
	Description string
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// SearchEntities 在节点向量集合中检索
func (r *Repository) SearchEntities(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchEntities",
		trace.WithAttributes(attribute.Int("top_k", params.TopK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionEntityEmbeddings)
	start := time.Now()

	// 类型过滤表达式，使用 OR 条件避免依赖 IN 语法差异
	filter := ""
	if len(params.EntityTypes) > 0 {
		var parts []string
		for _, t := range params.EntityTypes {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf(`entity_type == "%s"`, t))
		}
		if len(parts) > 0 {
			filter = "(" + strings.Join(parts, " || ") + ")"
		}
	}

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "entity_id", "entity_type", "name", "description"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionEntityEmbeddings).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MilvusSearchTotal.WithLabelValues(CollectionEntityEmbeddings, "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionEntityEmbeddings, "ok").Inc()

	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if entCol, ok := result.Fields.GetColumn("entity_id").(*entity.ColumnVarChar); ok {
				sr.EntityID = entCol.Data()[i]
			}
			if typeCol, ok := result.Fields.GetColumn("entity_type").(*entity.ColumnVarChar); ok {
				sr.EntityType = typeCol.Data()[i]
			}
			if nameCol, ok := result.Fields.GetColumn("name").(*entity.ColumnVarChar); ok {
				sr.Name = nameCol.Data()[i]
			}
			if descCol, ok := result.Fields.GetColumn("description").(*entity.ColumnVarChar); ok {
				sr.Description = descCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// InsertEntities 插入节点向量
func (r *Repository) InsertEntities(ctx context.Context, embeddings []*EntityEmbedding) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertEntities",
		trace.WithAttributes(attribute.Int("count", len(embeddings))))
	defer span.End()

	if len(embeddings) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionEntityEmbeddings)

	ids := make([]string, len(embeddings))
	vectors := make([][]float32, len(embeddings))
	entityIDs := make([]string, len(embeddings))
	entityTypes := make([]string, len(embeddings))
	names := make([]string, len(embeddings))
	descriptions := make([]string, len(embeddings))

	for i, e := range embeddings {
		ids[i] = e.ID
		vectors[i] = e.Vector
		entityIDs[i] = e.EntityID
		entityTypes[i] = e.EntityType
		names[i] = e.Name
		descriptions[i] = e.Description
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", r.dim, vectors)
	entityCol := entity.NewColumnVarChar("entity_id", entityIDs)
	typeCol := entity.NewColumnVarChar("entity_type", entityTypes)
	nameCol := entity.NewColumnVarChar("name", names)
	descCol := entity.NewColumnVarChar("description", descriptions)

	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, entityCol, typeCol, nameCol, descCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert entities: %w", err)
	}

	return nil
}

// DeleteEntity 删除指定节点的向量
func (r *Repository) DeleteEntity(ctx context.Context, entityID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.DeleteEntity",
		trace.WithAttributes(attribute.String("entity_id", entityID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionEntityEmbeddings)
	filter := fmt.Sprintf(`entity_id == "%s"`, entityID)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete entity vectors: %w", err)
	}
	return nil
}

// EnsureEntityCollection 确保节点向量集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureEntityCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionEntityEmbeddings)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, EntityEmbeddingsSchema(r.dim)); err != nil {
			return err
		}
		if err := r.CreateIndex(ctx, CollectionEntityEmbeddings); err != nil {
			return err
		}
	}

	// 尝试确保集合已加载（若已加载，Milvus 会返回成功）
	return r.client.LoadCollection(ctx, CollectionEntityEmbeddings)
}
