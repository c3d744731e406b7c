package retrieval

import "github.com/safishamsi/CDKG/internal/config"

// 命中数超过上限后贡献饱和，不再继续抬高置信度
const (
	transcriptHitCap = 5
	graphHitCap      = 5
)

// Scorer 基于检索证据估计答案置信度。
// 权重按部署语料标定，来自配置。
type Scorer struct {
	weights config.ConfidenceWeights
}

func NewScorer(weights config.ConfidenceWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score 计算置信度，结果落在 [0,1]。
// 语义分量取最佳相似度线性加权；转写与图分量按命中数线性增长、到上限饱和；
// 转写命中覆盖多场演讲再给多样性加分；路径证据给固定加分。
func (s *Scorer) Score(stats RetrievalStats) float64 {
	score := clamp01(stats.SemanticBestScore) * s.weights.Semantic
	if stats.TranscriptHits > 0 {
		score += s.weights.Transcript * ratio(stats.TranscriptHits, transcriptHitCap)
	}
	if stats.TranscriptTalks > 1 {
		score += s.weights.Diversity
	}
	if stats.GraphHits > 0 {
		score += s.weights.Graph * ratio(stats.GraphHits, graphHitCap)
	}
	if stats.PathCount > 0 {
		score += s.weights.PathBonus
	}
	return clamp01(score)
}

// ratio 把命中数映射到 (0,1]，超过上限按 1 计
func ratio(n, limit int) float64 {
	if n >= limit {
		return 1.0
	}
	return float64(n) / float64(limit)
}
