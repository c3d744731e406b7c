package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/internal/domain/repository"
	"github.com/safishamsi/CDKG/pkg/metrics"
)

// GraphRepository 知识图谱仓储
type GraphRepository struct {
	client *Client
}

// NewGraphRepository 创建知识图谱仓储
func NewGraphRepository(client *Client) *GraphRepository {
	return &GraphRepository{client: client}
}

var _ repository.GraphRepository = (*GraphRepository)(nil)

// Neighbors 按名称大小写不敏感匹配实体并展开邻域
func (r *GraphRepository) Neighbors(ctx context.Context, names []string, hops int) ([]repository.NeighborResult, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if hops < 1 {
		hops = 1
	}
	ctx, span := tracer.Start(ctx, "neo4j.Neighbors",
		trace.WithAttributes(attribute.Int("names", len(names)), attribute.Int("hops", hops)))
	defer span.End()

	// 跳数只能内插到查询文本里，Cypher 不支持参数化变长上限
	query := fmt.Sprintf(`
		UNWIND $names AS q
		MATCH (c)
		WHERE toLower(coalesce(c.name, c.title, '')) CONTAINS toLower(q)
		OPTIONAL MATCH (c)-[*1..%d]-(t:Talk)
		WITH c, collect(DISTINCT t) AS talks
		OPTIONAL MATCH (c)-[*1..%d]-(rel)
		WHERE NOT rel:Talk AND rel <> c
		RETURN c, talks, collect(DISTINCT rel)[..20] AS related
		LIMIT 10`, hops, hops)

	records, err := r.runRead(ctx, "neighbors", query, map[string]any{"names": names})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var out []repository.NeighborResult
	for _, rec := range records {
		cVal, ok := rec.Get("c")
		if !ok {
			continue
		}
		center, ok := cVal.(neo4j.Node)
		if !ok {
			continue
		}
		nr := repository.NeighborResult{Center: nodeToEntity(center)}

		if tVal, ok := rec.Get("talks"); ok {
			if talks, ok := tVal.([]any); ok {
				for _, t := range talks {
					if node, ok := t.(neo4j.Node); ok {
						nr.Talks = append(nr.Talks, nodeToTalk(node))
					}
				}
			}
		}
		if rVal, ok := rec.Get("related"); ok {
			if related, ok := rVal.([]any); ok {
				for _, rn := range related {
					if node, ok := rn.(neo4j.Node); ok {
						nr.Related = append(nr.Related, nodeToEntity(node))
					}
				}
			}
		}
		out = append(out, nr)
	}
	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// FindPaths 查找两个实体间的最短路径
func (r *GraphRepository) FindPaths(ctx context.Context, startName, endName string, maxHops int) ([]entity.Path, error) {
	startName = strings.TrimSpace(startName)
	endName = strings.TrimSpace(endName)
	if startName == "" || endName == "" {
		return nil, nil
	}
	if maxHops < 1 {
		maxHops = 1
	}
	ctx, span := tracer.Start(ctx, "neo4j.FindPaths",
		trace.WithAttributes(attribute.Int("max_hops", maxHops)))
	defer span.End()

	query := fmt.Sprintf(`
		MATCH (a), (b)
		WHERE toLower(coalesce(a.name, a.title, '')) CONTAINS toLower($start)
		  AND toLower(coalesce(b.name, b.title, '')) CONTAINS toLower($end)
		  AND a <> b
		MATCH p = shortestPath((a)-[*..%d]-(b))
		RETURN p
		LIMIT 5`, maxHops)

	records, err := r.runRead(ctx, "find_paths", query, map[string]any{
		"start": startName,
		"end":   endName,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var out []entity.Path
	for _, rec := range records {
		pVal, ok := rec.Get("p")
		if !ok {
			continue
		}
		path, ok := pVal.(neo4j.Path)
		if !ok {
			continue
		}
		out = append(out, pathToEntity(path))
	}
	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// CommunityMembers 返回与指定实体同社区的成员
func (r *GraphRepository) CommunityMembers(ctx context.Context, name string) ([]entity.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "neo4j.CommunityMembers")
	defer span.End()

	query := `
		MATCH (n)-[:BELONGS_TO]->(c)<-[:BELONGS_TO]-(m)
		WHERE toLower(coalesce(n.name, n.title, '')) = toLower($name)
		RETURN DISTINCT m
		LIMIT 20`

	records, err := r.runRead(ctx, "community_members", query, map[string]any{"name": name})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var out []entity.Entity
	for _, rec := range records {
		mVal, ok := rec.Get("m")
		if !ok {
			continue
		}
		if node, ok := mVal.(neo4j.Node); ok {
			out = append(out, nodeToEntity(node))
		}
	}
	return out, nil
}

// TalksBySpeaker 按演讲者名称查找其全部演讲
func (r *GraphRepository) TalksBySpeaker(ctx context.Context, speakerName string) ([]entity.Talk, error) {
	speakerName = strings.TrimSpace(speakerName)
	if speakerName == "" {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "neo4j.TalksBySpeaker")
	defer span.End()

	query := `
		MATCH (s:Speaker)-[:GIVES_TALK]->(t:Talk)
		WHERE toLower(s.name) CONTAINS toLower($name)
		OPTIONAL MATCH (t)-[:IS_PART_OF]->(e:Event)
		RETURN t, s.name AS speaker, e.name AS event`

	records, err := r.runRead(ctx, "talks_by_speaker", query, map[string]any{"name": speakerName})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return recordsToTalks(records), nil
}

// SearchTalks 按词项在演讲标题和描述中匹配
func (r *GraphRepository) SearchTalks(ctx context.Context, terms []string, limit int) ([]entity.Talk, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	ctx, span := tracer.Start(ctx, "neo4j.SearchTalks",
		trace.WithAttributes(attribute.Int("terms", len(terms))))
	defer span.End()

	query := `
		UNWIND $terms AS term
		MATCH (t:Talk)
		WHERE toLower(t.title) CONTAINS toLower(term)
		   OR toLower(coalesce(t.description, '')) CONTAINS toLower(term)
		OPTIONAL MATCH (s:Speaker)-[:GIVES_TALK]->(t)
		OPTIONAL MATCH (t)-[:IS_PART_OF]->(e:Event)
		RETURN DISTINCT t, s.name AS speaker, e.name AS event
		LIMIT $limit`

	records, err := r.runRead(ctx, "search_talks", query, map[string]any{
		"terms": terms,
		"limit": limit,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return recordsToTalks(records), nil
}

// GetTalk 按标题大小写不敏感获取演讲
func (r *GraphRepository) GetTalk(ctx context.Context, title string) (*entity.Talk, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("talk title is empty")
	}
	ctx, span := tracer.Start(ctx, "neo4j.GetTalk")
	defer span.End()

	query := `
		MATCH (t:Talk)
		WHERE toLower(t.title) = toLower($title)
		OPTIONAL MATCH (s:Speaker)-[:GIVES_TALK]->(t)
		OPTIONAL MATCH (t)-[:IS_PART_OF]->(e:Event)
		RETURN t, s.name AS speaker, e.name AS event
		LIMIT 1`

	records, err := r.runRead(ctx, "get_talk", query, map[string]any{"title": title})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	talks := recordsToTalks(records)
	if len(talks) == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrTalkNotFound, title)
	}
	return &talks[0], nil
}

// Ping 连通性检查
func (r *GraphRepository) Ping(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

func (r *GraphRepository) runRead(ctx context.Context, kind, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := r.client.readSession(ctx)
	defer session.Close(ctx)

	start := time.Now()
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	metrics.Neo4jQueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Neo4jQueryTotal.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("neo4j %s query failed: %w", kind, err)
	}
	metrics.Neo4jQueryTotal.WithLabelValues(kind, "ok").Inc()

	records, _ := result.([]*neo4j.Record)
	return records, nil
}

// nodeToEntity 将图节点映射为领域实体，标签决定类型
func nodeToEntity(n neo4j.Node) entity.Entity {
	e := entity.Entity{
		ID:         stringProp(n, "id"),
		Name:       stringProp(n, "name"),
		Properties: n.Props,
	}
	if e.Name == "" {
		e.Name = stringProp(n, "title")
	}
	if e.ID == "" {
		e.ID = n.ElementId
	}
	e.Description = stringProp(n, "description")
	for _, label := range n.Labels {
		if t, err := entity.ParseEntityType(label); err == nil {
			e.Type = t
			break
		}
	}
	return e
}

// nodeToTalk 将 Talk 节点映射为演讲实体
func nodeToTalk(n neo4j.Node) entity.Talk {
	t := entity.Talk{
		ID:          stringProp(n, "id"),
		Title:       stringProp(n, "title"),
		Description: stringProp(n, "description"),
		YouTubeURL:  stringProp(n, "youtube_url"),
		Transcript:  stringProp(n, "transcript"),
	}
	if t.ID == "" {
		t.ID = n.ElementId
	}
	return t
}

func pathToEntity(p neo4j.Path) entity.Path {
	out := entity.Path{}
	for _, n := range p.Nodes {
		out.Nodes = append(out.Nodes, nodeToEntity(n))
	}
	for _, rel := range p.Relationships {
		rt, err := entity.ParseRelationType(rel.Type)
		if err != nil {
			rt = entity.RelationType(rel.Type)
		}
		out.Relations = append(out.Relations, rt)
	}
	return out
}

func recordsToTalks(records []*neo4j.Record) []entity.Talk {
	var out []entity.Talk
	seen := make(map[string]struct{})
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
		if _, dup := seen[talk.ID]; dup {
			continue
		}
		seen[talk.ID] = struct{}{}
		if sVal, ok := rec.Get("speaker"); ok {
			if s, ok := sVal.(string); ok {
				talk.SpeakerName = s
			}
		}
		if eVal, ok := rec.Get("event"); ok {
			if e, ok := eVal.(string); ok {
				talk.EventName = e
			}
		}
		out = append(out, talk)
	}
	return out
}

func stringProp(n neo4j.Node, key string) string {
	if v, ok := n.Props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
