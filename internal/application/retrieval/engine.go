package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/embedding"
	"golang.org/x/sync/errgroup"

	"github.com/safishamsi/CDKG/internal/config"
	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/internal/domain/repository"
	"github.com/safishamsi/CDKG/pkg/logger"
	"github.com/safishamsi/CDKG/pkg/metrics"
)

// minTruncatedBlock 截断后仍值得保留的最小块长度
const minTruncatedBlock = 200

// Engine 混合检索引擎，并发执行策略分支并融合结果。
// 单个分支失败按空贡献处理，全部失败才向上报错。
type Engine struct {
	embedder   embedding.Embedder
	vector     VectorRepository
	graph      repository.GraphRepository
	transcript repository.TranscriptRepository

	classifier *Classifier
	expander   *Expander
	cfg        config.RetrievalConfig
}

func NewEngine(
	embedder embedding.Embedder,
	vector VectorRepository,
	graph repository.GraphRepository,
	transcript repository.TranscriptRepository,
	cfg config.RetrievalConfig,
) *Engine {
	return &Engine{
		embedder:   embedder,
		vector:     vector,
		graph:      graph,
		transcript: transcript,
		classifier: NewClassifier(cfg.Vocabulary),
		expander:   NewExpander(cfg.Vocabulary),
		cfg:        cfg,
	}
}

// VectorEnabled 向量分支是否可用
func (e *Engine) VectorEnabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

// Talk 按标题查找单场演讲的元数据
func (e *Engine) Talk(ctx context.Context, title string) (*entity.Talk, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyQuery
	}
	return e.graph.GetTalk(ctx, title)
}

// Retrieve 执行一次完整检索：分类、扩展、并发分支、融合、预算裁剪。
func (e *Engine) Retrieve(ctx context.Context, in RetrieveInput) (*RetrieveOutput, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, ErrEmptyQuery
	}
	if in.TopK <= 0 {
		in.TopK = e.cfg.TopKPerStrategy
	}
	if in.TopK > 50 {
		in.TopK = 50
	}
	if in.MaxHops <= 0 {
		in.MaxHops = e.cfg.MaxHops
	}
	if in.MaxHops > e.cfg.MaxHops {
		in.MaxHops = e.cfg.MaxHops
	}

	cls := e.classifier.Classify(in.Query, len(in.History) > 0)

	// 只有后续追问才用历史扩展，独立查询原样检索
	expanded := in.Query
	var keywords []string
	if cls.IsFollowUp {
		expanded, keywords = e.expander.Expand(in.Query, in.History)
	}

	stats := RetrievalStats{
		QueryType:  cls.Type,
		IsFollowUp: cls.IsFollowUp,
		Keywords:   keywords,
	}
	if expanded != in.Query {
		stats.ExpandedQuery = expanded
	}

	strategies := cls.Strategies
	branchResults := make([][]Candidate, len(strategies))
	branchStats := make([]BranchStat, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, strat := range strategies {
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, e.cfg.LeafTimeout)
			defer cancel()

			start := time.Now()
			cands, err := e.runBranch(bctx, strat, expanded, in)
			elapsed := time.Since(start)

			st := BranchStat{Strategy: strat, Duration: elapsed, Candidates: len(cands)}
			status := "ok"
			if err != nil {
				st.Failed = true
				st.Error = err.Error()
				status = "error"
				logger.Warn(gctx, "retrieval branch failed",
					"strategy", string(strat), "error", err.Error())
			}
			metrics.RetrievalBranchDuration.WithLabelValues(string(strat)).Observe(elapsed.Seconds())
			metrics.RetrievalBranchTotal.WithLabelValues(string(strat), status).Inc()
			metrics.RetrievalCandidates.WithLabelValues(string(strat)).Observe(float64(len(cands)))

			mu.Lock()
			branchResults[i] = cands
			branchStats[i] = st
			mu.Unlock()
			return nil
		})
	}
	// 分支错误在各自的 goroutine 内消化，这里不会返回非 nil
	_ = g.Wait()

	stats.Branches = branchStats
	allFailed := true
	for _, st := range branchStats {
		if !st.Failed {
			allFailed = false
			break
		}
	}
	if allFailed {
		return nil, fmt.Errorf("%w: %s", ErrRetrievalFailed, summarizeBranchErrors(branchStats))
	}

	merged := mergeCandidates(branchResults)
	stats.MergedCandidates = len(merged)
	fillEvidenceStats(&stats, branchResults, strategies)

	rankCandidates(merged)
	fused := budgetTruncate(merged, e.cfg.ContextBudgetChars)
	stats.ContextChars = fused.TotalChars
	stats.Truncated = fused.Truncated

	return &RetrieveOutput{Context: fused, Stats: stats}, nil
}

func (e *Engine) runBranch(ctx context.Context, strat Strategy, query string, in RetrieveInput) ([]Candidate, error) {
	switch strat {
	case StrategySemantic:
		return e.semanticBranch(ctx, query, in.TopK)
	case StrategyGraph:
		return e.graphBranch(ctx, query, in.MaxHops)
	case StrategyTranscript:
		return e.transcriptBranch(ctx, query)
	case StrategyKeyword:
		return e.keywordBranch(ctx, query, in.TopK)
	case StrategyMultiHop:
		return e.multiHopBranch(ctx, query, in.MaxHops, in.TopK)
	}
	return nil, fmt.Errorf("unknown strategy: %s", strat)
}

// semanticBranch 语义召回：查询向量化后在实体向量集合中检索
func (e *Engine) semanticBranch(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if !e.VectorEnabled() {
		return nil, ErrVectorDisabled
	}
	vec, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := e.vector.SearchEntities(ctx, &VectorSearchParams{
		QueryVector: vec,
		TopK:        topK,
	})
	if err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		score := clamp01(float64(r.Score))
		text := r.Name
		if r.Description != "" {
			text = fmt.Sprintf("%s: %s", r.Name, r.Description)
		}
		cands = append(cands, Candidate{
			Key:      "entity:" + r.EntityID,
			Strategy: StrategySemantic,
			Score:    score,
			Text:     fmt.Sprintf("[%s] %s", r.EntityType, text),
		})
	}
	return cands, nil
}

// graphBranch 图遍历：先按演讲者名精确查其演讲，再从查询中的实体名展开邻域
func (e *Engine) graphBranch(ctx context.Context, query string, hops int) ([]Candidate, error) {
	names := entityNames(query)
	if len(names) == 0 {
		return nil, nil
	}

	var cands []Candidate
	for _, name := range names {
		talks, err := e.graph.TalksBySpeaker(ctx, name)
		if err != nil {
			continue
		}
		for _, talk := range talks {
			speaker := talk.SpeakerName
			if speaker == "" {
				speaker = name
			}
			text := fmt.Sprintf("Talk %q by %s", talk.Title, speaker)
			if talk.EventName != "" {
				text += fmt.Sprintf(" at %s", talk.EventName)
			}
			if talk.Description != "" {
				text += ": " + talk.Description
			}
			cands = append(cands, Candidate{
				Key:      "talk:" + talk.ID,
				Strategy: StrategyGraph,
				Score:    0.9,
				Text:     text,
				Citation: talk.YouTubeURL,
			})
		}
	}

	neighbors, err := e.graph.Neighbors(ctx, names, hops)
	if err != nil {
		if len(cands) > 0 {
			return cands, nil
		}
		return nil, err
	}
	for _, n := range neighbors {
		for _, talk := range n.Talks {
			text := fmt.Sprintf("Talk %q by %s", talk.Title, n.Center.Name)
			if talk.EventName != "" {
				text += fmt.Sprintf(" at %s", talk.EventName)
			}
			if talk.Description != "" {
				text += ": " + talk.Description
			}
			cands = append(cands, Candidate{
				Key:      "talk:" + talk.ID,
				Strategy: StrategyGraph,
				Score:    0.9,
				Text:     text,
				Citation: talk.YouTubeURL,
			})
		}
		for _, rel := range n.Related {
			text := fmt.Sprintf("[%s] %s", rel.Type, rel.Name)
			if rel.Description != "" {
				text += ": " + rel.Description
			}
			cands = append(cands, Candidate{
				Key:      "entity:" + rel.ID,
				Strategy: StrategyGraph,
				Score:    0.7,
				Text:     text,
			})
		}
	}

	// 社区成员补充：中心命中时带上同社区的其他实体
	for _, n := range neighbors {
		members, err := e.graph.CommunityMembers(ctx, n.Center.Name)
		if err != nil {
			continue
		}
		for _, m := range members {
			cands = append(cands, Candidate{
				Key:      "entity:" + m.ID,
				Strategy: StrategyGraph,
				Score:    0.5,
				Text:     fmt.Sprintf("[community of %s] %s", n.Center.Name, m.Name),
			})
		}
	}
	return cands, nil
}

// transcriptBranch 转写检索：在演讲全文中定位词汇并提取片段。
// 同一演讲的多个片段合并为一个候选，键与图分支共享以便跨策略合并。
func (e *Engine) transcriptBranch(ctx context.Context, query string) ([]Candidate, error) {
	terms := e.expander.SearchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	passages, err := e.transcript.SearchPassages(ctx, terms, e.cfg.MaxSnippetsPerTalk)
	if err != nil {
		return nil, err
	}

	var cands []Candidate
	byTalk := make(map[string]int)
	for _, p := range passages {
		key := "talk:" + p.TalkID
		idx, ok := byTalk[key]
		if !ok {
			header := fmt.Sprintf("From %q", p.TalkTitle)
			if p.SpeakerName != "" {
				header += " by " + p.SpeakerName
			}
			cands = append(cands, Candidate{
				Key:      key,
				Strategy: StrategyTranscript,
				Score:    1.0,
				Text:     header + ":",
			})
			idx = len(cands) - 1
			byTalk[key] = idx
		}
		cands[idx].Text += "\n" + p.Snippet
		cands[idx].Passages++
		if cands[idx].Citation == "" {
			cands[idx].Citation = p.CitationURL
		}
	}
	return cands, nil
}

// keywordBranch 关键词检索：按词项匹配演讲标题和描述
func (e *Engine) keywordBranch(ctx context.Context, query string, topK int) ([]Candidate, error) {
	terms := e.expander.SearchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	talks, err := e.graph.SearchTalks(ctx, terms, topK)
	if err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(talks))
	for _, talk := range talks {
		text := fmt.Sprintf("Talk %q", talk.Title)
		if talk.SpeakerName != "" {
			text += " by " + talk.SpeakerName
		}
		if talk.Description != "" {
			text += ": " + talk.Description
		}
		cands = append(cands, Candidate{
			Key:      "talk:" + talk.ID,
			Strategy: StrategyKeyword,
			Score:    0.6,
			Text:     text,
			Citation: talk.YouTubeURL,
		})
	}
	return cands, nil
}

// multiHopBranch 多跳检索：在查询提到的两个实体间找最短路径。
// 查询里大写实体名不足两个时，用语义命中的实体名补齐端点，
// 小写概念（如 "knowledge graphs"）也能成为路径终点。
func (e *Engine) multiHopBranch(ctx context.Context, query string, maxHops, topK int) ([]Candidate, error) {
	names := entityNames(query)
	if len(names) < 2 {
		names = e.supplementEntityNames(ctx, query, names, topK)
	}
	if len(names) < 2 {
		return nil, nil
	}
	paths, err := e.graph.FindPaths(ctx, names[0], names[1], maxHops)
	if err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(paths))
	for i, p := range paths {
		cands = append(cands, Candidate{
			Key:      fmt.Sprintf("path:%s:%s:%d", names[0], names[1], i),
			Strategy: StrategyMultiHop,
			Score:    1.0,
			Text:     "Connection: " + p.String(),
		})
	}
	return cands, nil
}

// supplementEntityNames 用语义检索命中的实体名补齐候选端点
func (e *Engine) supplementEntityNames(ctx context.Context, query string, names []string, topK int) []string {
	if !e.VectorEnabled() {
		return names
	}
	vec, err := e.embedQuery(ctx, query)
	if err != nil {
		return names
	}
	results, err := e.vector.SearchEntities(ctx, &VectorSearchParams{
		QueryVector: vec,
		TopK:        topK,
	})
	if err != nil {
		return names
	}

	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[strings.ToLower(n)] = struct{}{}
	}
	for _, r := range results {
		if r == nil || r.Name == "" {
			continue
		}
		low := strings.ToLower(r.Name)
		if _, dup := seen[low]; dup {
			continue
		}
		seen[low] = struct{}{}
		names = append(names, r.Name)
		if len(names) >= 2 {
			break
		}
	}
	return names
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e == nil || e.embedder == nil {
		return nil, ErrVectorDisabled
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	v64, err := e.embedder.EmbedStrings(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}

// entityNames 从查询中提取大写短语作为候选实体名
func entityNames(query string) []string {
	matches := capitalizedPhrase.FindAllString(query, -1)
	var names []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		low := strings.ToLower(m)
		if _, dup := seen[low]; dup {
			continue
		}
		seen[low] = struct{}{}
		names = append(names, m)
	}
	return names
}

// mergeCandidates 按去重键合并，得分取最大值，血缘取并集
func mergeCandidates(branches [][]Candidate) []Candidate {
	byKey := make(map[string]*Candidate)
	var order []string
	for _, cands := range branches {
		for _, c := range cands {
			existing, ok := byKey[c.Key]
			if !ok {
				cp := c
				cp.Provenance = []Strategy{c.Strategy}
				byKey[c.Key] = &cp
				order = append(order, c.Key)
				continue
			}
			if c.Score > existing.Score {
				existing.Score = c.Score
				existing.Strategy = c.Strategy
				existing.Text = c.Text
				if c.Citation != "" {
					existing.Citation = c.Citation
				}
			}
			if !hasStrategy(existing.Provenance, c.Strategy) {
				existing.Provenance = append(existing.Provenance, c.Strategy)
			}
		}
	}
	out := make([]Candidate, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

func hasStrategy(list []Strategy, s Strategy) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// rankCandidates 按策略优先级和得分排序，键名作稳定兜底
func rankCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		pi, pj := cands[i].Strategy.rankPriority(), cands[j].Strategy.rankPriority()
		if pi != pj {
			return pi < pj
		}
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Key < cands[j].Key
	})
}

// budgetTruncate 按字符预算裁剪。放不下的首个块若剩余空间足够则截断保留，
// 其余丢弃并标记 Truncated。省略号计入预算，截断点回退到字符边界。
func budgetTruncate(cands []Candidate, budget int) FusedContext {
	out := FusedContext{}
	if budget <= 0 {
		budget = 12000
	}
	used := 0
	for _, c := range cands {
		n := len(c.Text)
		if used+n <= budget {
			out.Blocks = append(out.Blocks, c)
			used += n
			continue
		}
		remaining := budget - used
		if remaining >= minTruncatedBlock {
			cut := remaining - len("...")
			for cut > 0 && !utf8.RuneStart(c.Text[cut]) {
				cut--
			}
			c.Text = strings.TrimSpace(c.Text[:cut]) + "..."
			out.Blocks = append(out.Blocks, c)
			used += len(c.Text)
		}
		out.Truncated = true
		break
	}
	if len(cands) > len(out.Blocks) {
		out.Truncated = true
	}
	out.TotalChars = used
	return out
}

// fillEvidenceStats 汇总置信度估计所需的证据统计
func fillEvidenceStats(stats *RetrievalStats, branches [][]Candidate, strategies []Strategy) {
	for i, strat := range strategies {
		switch strat {
		case StrategySemantic:
			for _, c := range branches[i] {
				if c.Score > stats.SemanticBestScore {
					stats.SemanticBestScore = c.Score
				}
			}
		case StrategyTranscript:
			for _, c := range branches[i] {
				stats.TranscriptHits += c.Passages
			}
			stats.TranscriptTalks = len(branches[i])
		case StrategyGraph, StrategyKeyword:
			stats.GraphHits += len(branches[i])
		case StrategyMultiHop:
			stats.PathCount = len(branches[i])
		}
	}
}

func summarizeBranchErrors(stats []BranchStat) string {
	parts := make([]string, 0, len(stats))
	for _, st := range stats {
		if st.Failed {
			parts = append(parts, fmt.Sprintf("%s: %s", st.Strategy, st.Error))
		}
	}
	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
