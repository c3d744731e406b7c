package neo4j

import (
	"context"
	"encoding/json"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/safishamsi/CDKG/internal/config"
	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/internal/domain/repository"
)

// TranscriptRepository 演讲转写检索仓储。
// 全文匹配在图库内做粗筛，片段提取和句边界修剪在本地完成。
type TranscriptRepository struct {
	client *Client
	cfg    config.RetrievalConfig
}

// NewTranscriptRepository 创建转写检索仓储
func NewTranscriptRepository(client *Client, cfg config.RetrievalConfig) *TranscriptRepository {
	return &TranscriptRepository{client: client, cfg: cfg}
}

var _ repository.TranscriptRepository = (*TranscriptRepository)(nil)

// SearchPassages 在转写全文中检索词汇并提取片段
func (r *TranscriptRepository) SearchPassages(ctx context.Context, terms []string, limitPerTalk int) ([]repository.Passage, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if limitPerTalk <= 0 {
		limitPerTalk = r.cfg.MaxSnippetsPerTalk
	}
	ctx, span := tracer.Start(ctx, "neo4j.SearchPassages",
		trace.WithAttributes(attribute.Int("terms", len(terms))))
	defer span.End()

	query := `
		UNWIND $terms AS term
		MATCH (t:Talk)
		WHERE t.transcript IS NOT NULL
		  AND toLower(t.transcript) CONTAINS toLower(term)
		OPTIONAL MATCH (s:Speaker)-[:GIVES_TALK]->(t)
		RETURN DISTINCT t, s.name AS speaker
		LIMIT 10`

	session := r.client.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"terms": terms})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	records, _ := result.([]*neo4j.Record)

	var passages []repository.Passage
	for _, rec := range records {
		tVal, ok := rec.Get("t")
		if !ok {
			continue
		}
		node, ok := tVal.(neo4j.Node)
		if !ok {
			continue
		}
		talk := nodeToTalk(node)
		talk.Segments = segmentsFromNode(node)
		if sVal, ok := rec.Get("speaker"); ok {
			if s, ok := sVal.(string); ok {
				talk.SpeakerName = s
			}
		}
		if talk.Transcript == "" {
			continue
		}

		snippets := ExtractSnippets(talk.Transcript, terms, r.cfg.SnippetRadiusChars, limitPerTalk)
		for _, sn := range snippets {
			p := repository.Passage{
				TalkID:      talk.ID,
				TalkTitle:   talk.Title,
				SpeakerName: talk.SpeakerName,
				Snippet:     sn.Text,
				MatchedTerm: sn.Term,
			}
			if seg, ok := talk.SegmentAt(sn.Offset); ok {
				p.CitationURL = talk.CitationURL(seg.StartSeconds)
			} else {
				p.CitationURL = talk.CitationURL(0)
			}
			passages = append(passages, p)
		}
	}
	span.SetAttributes(attribute.Int("result_count", len(passages)))
	return passages, nil
}

// segmentsFromNode 解析节点上 JSON 编码的分段时间轴，缺失或损坏时返回空
func segmentsFromNode(n neo4j.Node) []entity.TranscriptSegment {
	raw := stringProp(n, "segments")
	if raw == "" {
		return nil
	}
	var segments []entity.TranscriptSegment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return nil
	}
	return segments
}
