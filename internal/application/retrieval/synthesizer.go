package retrieval

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/safishamsi/CDKG/internal/config"
	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/internal/infrastructure/llm"
	"github.com/safishamsi/CDKG/pkg/logger"
	"github.com/safishamsi/CDKG/pkg/metrics"
)

// Synthesizer 基于融合上下文调用 LLM 合成答案。
// 暂态失败重试一次，重试间隔固定退避。
type Synthesizer struct {
	factory *llm.EinoFactory
	cfg     config.RetrievalConfig

	provider string
	model    string
}

func NewSynthesizer(factory *llm.EinoFactory, cfg *config.Config) *Synthesizer {
	providerName := cfg.LLM.DefaultProvider
	modelName := ""
	if p, ok := cfg.LLM.Providers[providerName]; ok {
		modelName = p.Model
	}
	return &Synthesizer{
		factory:  factory,
		cfg:      cfg.Retrieval,
		provider: providerName,
		model:    modelName,
	}
}

// Synthesize 生成答案文本并汇集引用。
// 第一次调用失败后等待固定退避重试一次，仍失败则返回错误。
func (s *Synthesizer) Synthesize(ctx context.Context, query string, fused FusedContext, history []entity.ConversationTurn) (string, []Citation, error) {
	if s == nil || s.factory == nil {
		return "", nil, fmt.Errorf("llm factory not configured")
	}

	chatModel, err := s.factory.Default(ctx)
	if err != nil {
		return "", nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(BuildPrompt(query, fused, history)),
	}

	answer, err := s.generateOnce(ctx, chatModel, messages)
	if err != nil {
		if !isTransientLLMError(err) {
			return "", nil, err
		}
		logger.Warn(ctx, "synthesis attempt failed, retrying", "error", err.Error())
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(s.cfg.SynthesisRetryBackoff):
		}
		answer, err = s.generateOnce(ctx, chatModel, messages)
		if err != nil {
			return "", nil, err
		}
	}

	return answer, collectCitations(fused), nil
}

// transientMarkers 标记可重试的供应商侧暂态失败
var transientMarkers = []string{
	"rate limit",
	"429",
	"502",
	"503",
	"timeout",
	"temporarily",
	"overloaded",
	"connection reset",
	"unavailable",
}

// isTransientLLMError 判断失败是否值得重试。
// 鉴权错误、提示词被拒等确定性失败直接向上返回
func isTransientLLMError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (s *Synthesizer) generateOnce(ctx context.Context, chatModel model.BaseChatModel, messages []*schema.Message) (string, error) {
	start := time.Now()
	msg, err := chatModel.Generate(ctx, messages)
	metrics.LLMCallDuration.WithLabelValues(s.provider, s.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(s.provider, s.model, "error").Inc()
		return "", err
	}
	metrics.LLMCallTotal.WithLabelValues(s.provider, s.model, "ok").Inc()
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(s.provider, s.model, "prompt").
			Add(float64(msg.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(s.provider, s.model, "completion").
			Add(float64(msg.ResponseMeta.Usage.CompletionTokens))
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return "", fmt.Errorf("empty completion")
	}
	return answer, nil
}

// collectCitations 从携带链接的上下文块汇集引用并去重
func collectCitations(fused FusedContext) []Citation {
	var out []Citation
	seen := make(map[string]struct{})
	for _, blk := range fused.Blocks {
		if blk.Citation == "" {
			continue
		}
		if _, dup := seen[blk.Citation]; dup {
			continue
		}
		seen[blk.Citation] = struct{}{}
		out = append(out, Citation{
			TalkTitle:   titleFromBlock(blk.Text),
			SpeakerName: speakerFromBlock(blk.Text),
			URL:         blk.Citation,
		})
	}
	return out
}

// titleFromBlock 从上下文块文本中提取引号内的演讲标题
func titleFromBlock(text string) string {
	start := strings.IndexRune(text, '"')
	if start < 0 {
		return ""
	}
	rest := text[start+1:]
	end := strings.IndexRune(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// speakerFromBlock 提取块文本中 by 之后的演讲者名称
func speakerFromBlock(text string) string {
	idx := strings.Index(text, `" by `)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(`" by `):]
	if cut := strings.IndexAny(rest, ":"); cut >= 0 {
		rest = rest[:cut]
	}
	if cut := strings.Index(rest, " at "); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}
