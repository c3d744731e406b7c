package retrieval

import (
	"regexp"
	"strings"

	"github.com/safishamsi/CDKG/internal/config"
)

// shortQueryWords 低于该词数的查询在有历史时按后续追问处理
const shortQueryWords = 5

// followUpPronoun 匹配指示后续追问的指代词
var followUpPronoun = regexp.MustCompile(`\b(he|she|they|it|that|this|his|her|their|him|them|these|those)\b`)

// Classification 一次查询的分类结果
type Classification struct {
	// Type 查询类型
	Type QueryType
	// Strategies 需要执行的检索分支
	Strategies []Strategy
	// IsFollowUp 是否为依赖历史的后续追问
	IsFollowUp bool
	// MultiHop 是否需要实体间路径检索
	MultiHop bool
}

// Classifier 按词表将自然语言查询分到检索路由。
// 词表由配置注入，路由逻辑不感知具体词汇。
type Classifier struct {
	transcriptTerms []string
	multiHopTerms   []string
	graphTerms      []string
	semanticTerms   []string
}

func NewClassifier(vocab config.VocabularyConfig) *Classifier {
	return &Classifier{
		transcriptTerms: lowerAll(vocab.TranscriptTerms),
		multiHopTerms:   lowerAll(vocab.MultiHopTerms),
		graphTerms:      lowerAll(vocab.GraphTerms),
		semanticTerms:   lowerAll(vocab.SemanticTerms),
	}
}

// Classify 返回查询的类型、分支集合和追问标记。
// 引述类词汇优先级最高并走混合路由，保证转写检索参与；
// 其余按 多跳 > 图 > 语义 依次匹配，均不命中时回退混合。
func (c *Classifier) Classify(query string, hasHistory bool) Classification {
	q := strings.ToLower(strings.TrimSpace(query))
	out := Classification{Type: QueryTypeHybrid}
	if q != "" {
		switch {
		case containsAny(q, c.transcriptTerms):
			out.Type = QueryTypeHybrid
		case containsAny(q, c.multiHopTerms):
			out.Type = QueryTypeMultiHop
		case containsAny(q, c.graphTerms):
			out.Type = QueryTypeGraph
		case containsAny(q, c.semanticTerms):
			out.Type = QueryTypeSemantic
		}
		out.IsFollowUp = isFollowUp(query, q, hasHistory)
	}
	out.MultiHop = out.Type == QueryTypeMultiHop
	out.Strategies = StrategiesFor(out.Type)
	return out
}

// isFollowUp 判定后续追问：有历史且（查询很短，或含指代词，或不含任何专有名词样的词）
func isFollowUp(query, lower string, hasHistory bool) bool {
	if !hasHistory {
		return false
	}
	if len(strings.Fields(lower)) < shortQueryWords {
		return true
	}
	if followUpPronoun.MatchString(lower) {
		return true
	}
	return !hasProperNoun(query)
}

// hasProperNoun 检查查询中是否存在非句首的大写词
func hasProperNoun(query string) bool {
	for i, w := range strings.Fields(query) {
		w = strings.Trim(w, `.,!?;:"'()`)
		if len(w) < 3 || w[0] < 'A' || w[0] > 'Z' {
			continue
		}
		// 句首大写不算专有名词
		if i == 0 {
			continue
		}
		return true
	}
	return false
}

// StrategiesFor 返回查询类型对应的检索分支集合。
// 概念型的语义查询同时走转写分支，答案往往藏在演讲全文而非实体描述里。
func StrategiesFor(t QueryType) []Strategy {
	switch t {
	case QueryTypeSemantic:
		return []Strategy{StrategySemantic, StrategyTranscript}
	case QueryTypeGraph:
		return []Strategy{StrategyGraph, StrategyKeyword}
	case QueryTypeMultiHop:
		return []Strategy{StrategyMultiHop, StrategyGraph}
	default:
		return []Strategy{StrategySemantic, StrategyGraph, StrategyTranscript, StrategyKeyword}
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
