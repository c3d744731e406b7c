package retrieval

import (
	"time"

	"github.com/safishamsi/CDKG/internal/domain/entity"
)

// QueryType 查询分类结果
type QueryType string

const (
	QueryTypeSemantic QueryType = "semantic"
	QueryTypeGraph    QueryType = "graph"
	QueryTypeMultiHop QueryType = "multi_hop"
	QueryTypeHybrid   QueryType = "hybrid"
)

// Strategy 检索策略
type Strategy string

const (
	StrategySemantic   Strategy = "semantic"
	StrategyGraph      Strategy = "graph"
	StrategyTranscript Strategy = "transcript"
	StrategyKeyword    Strategy = "keyword"
	StrategyMultiHop   Strategy = "multi_hop"
)

// rankPriority 排序时的策略优先级，值越小排越前
func (s Strategy) rankPriority() int {
	switch s {
	case StrategyTranscript:
		return 0
	case StrategyGraph, StrategyMultiHop:
		return 1
	case StrategySemantic:
		return 2
	case StrategyKeyword:
		return 3
	}
	return 4
}

// Candidate 单条检索候选
type Candidate struct {
	// Key 去重键，同一来源事实在不同策略下共享同一 Key
	Key string
	// Strategy 产出该候选的策略
	Strategy Strategy
	// Provenance 合并后贡献过该候选的全部策略
	Provenance []Strategy
	// Score 策略内归一化得分，[0,1]
	Score float64
	// Text 注入提示词的上下文块
	Text string
	// Citation 可选的引用链接
	Citation string
	// Passages 转写候选合并进来的片段数，其他策略为 0
	Passages int
}

// FusedContext 融合后的上下文
type FusedContext struct {
	// Blocks 按优先级排序并裁剪到预算内的上下文块
	Blocks []Candidate
	// Truncated 是否因预算丢弃或截断了候选
	Truncated bool
	// TotalChars 融合后的总字符数
	TotalChars int
}

// BranchStat 单个检索分支的执行统计
type BranchStat struct {
	Strategy   Strategy      `json:"strategy"`
	Candidates int           `json:"candidates"`
	Duration   time.Duration `json:"duration"`
	Failed     bool          `json:"failed"`
	Error      string        `json:"error,omitempty"`
}

// RetrievalStats 一次检索的汇总统计
type RetrievalStats struct {
	QueryType       QueryType    `json:"query_type"`
	IsFollowUp      bool         `json:"is_follow_up,omitempty"`
	ExpandedQuery   string       `json:"expanded_query,omitempty"`
	Keywords        []string     `json:"keywords,omitempty"`
	Branches        []BranchStat `json:"branches"`
	MergedCandidates int         `json:"merged_candidates"`
	ContextChars    int          `json:"context_chars"`
	Truncated       bool         `json:"truncated"`
	// SemanticBestScore 语义分支最佳命中的相似度，无语义结果时为 0
	SemanticBestScore float64 `json:"semantic_best_score"`
	// TranscriptHits 转写分支命中的片段总数
	TranscriptHits int `json:"transcript_hits"`
	// TranscriptTalks 转写片段覆盖的不同演讲数
	TranscriptTalks int `json:"transcript_talks"`
	// GraphHits 图分支命中的候选数
	GraphHits int `json:"graph_hits"`
	// PathCount 多跳分支找到的路径数
	PathCount int `json:"path_count"`
}

// RetrieveInput 检索输入
type RetrieveInput struct {
	Query   string
	History []entity.ConversationTurn
	// TopK 每策略召回条数，0 取配置默认
	TopK int
	// MaxHops 多跳上限，0 取配置默认
	MaxHops int
}

// RetrieveOutput 检索输出
type RetrieveOutput struct {
	Context FusedContext
	Stats   RetrievalStats
}

// Citation 答案中的一条出处
type Citation struct {
	TalkTitle   string `json:"talk_title"`
	SpeakerName string `json:"speaker_name,omitempty"`
	URL         string `json:"url,omitempty"`
}

// AnswerInput 问答输入
type AnswerInput struct {
	Query   string
	History []entity.ConversationTurn
	TopK    int
	MaxHops int
}

// AnswerOutput 问答输出
type AnswerOutput struct {
	Answer     string         `json:"answer"`
	Confidence float64        `json:"confidence"`
	QueryType  QueryType      `json:"query_type"`
	Citations  []Citation     `json:"citations,omitempty"`
	Stats      RetrievalStats `json:"retrieval_stats"`
	// Degraded 合成失败时为真，Answer 为空且上下文仍然返回
	Degraded bool `json:"degraded,omitempty"`
	// ContextBlocks 降级时返回的原始上下文块
	ContextBlocks []string `json:"context_blocks,omitempty"`
}
