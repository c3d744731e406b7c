package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/pkg/logger"
	"github.com/safishamsi/CDKG/pkg/metrics"
)

// Service 问答编排：分类、检索、置信度估计、答案合成。
type Service struct {
	engine      *Engine
	scorer      *Scorer
	synthesizer *Synthesizer
}

func NewService(engine *Engine, scorer *Scorer, synthesizer *Synthesizer) *Service {
	return &Service{
		engine:      engine,
		scorer:      scorer,
		synthesizer: synthesizer,
	}
}

// Retrieve 仅执行检索，不做合成。供检索调试接口使用。
func (s *Service) Retrieve(ctx context.Context, in RetrieveInput) (*RetrieveOutput, error) {
	return s.engine.Retrieve(ctx, in)
}

// Talk 按标题查找单场演讲
func (s *Service) Talk(ctx context.Context, title string) (*entity.Talk, error) {
	return s.engine.Talk(ctx, title)
}

// AnswerQuery 端到端回答一个问题。
// 检索失败返回 ErrRetrievalFailed；检索成功但合成失败返回 *SynthesisError，
// 调用方可用其中的上下文和置信度构造降级响应。
func (s *Service) AnswerQuery(ctx context.Context, in AnswerInput) (*AnswerOutput, error) {
	start := time.Now()

	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, ErrEmptyQuery
	}

	out, err := s.engine.Retrieve(ctx, RetrieveInput{
		Query:   in.Query,
		History: in.History,
		TopK:    in.TopK,
		MaxHops: in.MaxHops,
	})
	if err != nil {
		metrics.QueryTotal.WithLabelValues("unknown", "retrieval_error").Inc()
		return nil, err
	}

	confidence := s.scorer.Score(out.Stats)
	queryType := string(out.Stats.QueryType)

	answer, citations, err := s.synthesizer.Synthesize(ctx, in.Query, out.Context, in.History)
	if err != nil {
		metrics.QueryTotal.WithLabelValues(queryType, "synthesis_error").Inc()
		return nil, &SynthesisError{
			Context:    out.Context,
			Stats:      out.Stats,
			Confidence: confidence,
			Err:        err,
		}
	}

	metrics.QueryTotal.WithLabelValues(queryType, "ok").Inc()
	metrics.QueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
	metrics.QueryConfidence.WithLabelValues(queryType).Observe(confidence)

	logger.Info(ctx, "query answered",
		"query_type", queryType,
		"confidence", confidence,
		"context_chars", out.Stats.ContextChars,
		"merged_candidates", out.Stats.MergedCandidates,
		"duration_ms", time.Since(start).Milliseconds())

	return &AnswerOutput{
		Answer:     answer,
		Confidence: confidence,
		QueryType:  out.Stats.QueryType,
		Citations:  citations,
		Stats:      out.Stats,
	}, nil
}
