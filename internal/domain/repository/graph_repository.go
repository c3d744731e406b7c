// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"

	"github.com/safishamsi/CDKG/internal/domain/entity"
)

// ErrTalkNotFound 按标题查找演讲无匹配
var ErrTalkNotFound = errors.New("talk not found")

// NeighborResult 图遍历结果，以实体为中心附带其关联的演讲
type NeighborResult struct {
	// Center 匹配到的中心实体
	Center entity.Entity
	// Talks 中心实体关联的演讲
	Talks []entity.Talk
	// Related 遍历范围内的其他关联实体
	Related []entity.Entity
}

// GraphRepository 知识图谱仓储接口
type GraphRepository interface {
	// Neighbors 按名称大小写不敏感匹配实体并展开指定跳数内的邻域
	Neighbors(ctx context.Context, names []string, hops int) ([]NeighborResult, error)

	// FindPaths 查找两个实体间的最短路径，跳数受 maxHops 限制
	FindPaths(ctx context.Context, startName, endName string, maxHops int) ([]entity.Path, error)

	// CommunityMembers 返回与指定实体同社区的成员
	CommunityMembers(ctx context.Context, name string) ([]entity.Entity, error)

	// TalksBySpeaker 按演讲者名称查找其全部演讲
	TalksBySpeaker(ctx context.Context, speakerName string) ([]entity.Talk, error)

	// SearchTalks 按词项在演讲标题和描述中做大小写不敏感匹配
	SearchTalks(ctx context.Context, terms []string, limit int) ([]entity.Talk, error)

	// GetTalk 按标题大小写不敏感获取演讲
	GetTalk(ctx context.Context, title string) (*entity.Talk, error)

	// Ping 连通性检查
	Ping(ctx context.Context) error
}
