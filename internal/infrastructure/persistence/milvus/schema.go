// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionEntityEmbeddings 知识图谱节点向量集合
	CollectionEntityEmbeddings = "entity_embeddings"

	// DefaultVectorDimension 未配置时使用的向量维度
	DefaultVectorDimension = 1536
)

// EntityEmbeddingsSchema 节点向量 Collection Schema
func EntityEmbeddingsSchema(dim int) *entity.Schema {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	return &entity.Schema{
		CollectionName: CollectionEntityEmbeddings,
		Description:    "Knowledge graph entity embeddings for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
			{
				Name:     "entity_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "entity_type",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "description",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// EntityEmbedding 节点向量数据结构
type EntityEmbedding struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	EntityID    string    `json:"entity_id"`
	EntityType  string    `json:"entity_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}
