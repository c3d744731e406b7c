package retrieval

import "context"

// VectorRepository 定义应用层对向量检索的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）；
// 集合建立与写入属于引导阶段，不在检索 port 之内。
type VectorRepository interface {
	SearchEntities(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error)
}

type VectorSearchParams struct {
	QueryVector []float32
	TopK        int
	// EntityTypes 为空表示不过滤；非空则仅检索指定类型的节点。
	EntityTypes []string
}

type VectorSearchResult struct {
	ID          string
	Score       float32
	EntityID    string
	EntityType  string
	Name        string
	Description string
}
