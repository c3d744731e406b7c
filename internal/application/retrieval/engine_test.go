package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/internal/domain/repository"
)

// mockEmbedder implements embedding.Embedder for testing
type mockEmbedder struct {
	embedFn func(texts []string) ([][]float64, error)
}

func (m *mockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if m.embedFn != nil {
		return m.embedFn(texts)
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

// mockVector implements VectorRepository for testing
type mockVector struct {
	searchFn func(params *VectorSearchParams) ([]*VectorSearchResult, error)
}

func (m *mockVector) SearchEntities(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(params)
	}
	return nil, nil
}

// mockGraph implements repository.GraphRepository for testing
type mockGraph struct {
	neighborsFn      func(names []string, hops int) ([]repository.NeighborResult, error)
	findPathsFn      func(start, end string, maxHops int) ([]entity.Path, error)
	searchTalksFn    func(terms []string, limit int) ([]entity.Talk, error)
	talksBySpeakerFn func(speakerName string) ([]entity.Talk, error)
	getTalkFn        func(title string) (*entity.Talk, error)
}

func (m *mockGraph) Neighbors(ctx context.Context, names []string, hops int) ([]repository.NeighborResult, error) {
	if m.neighborsFn != nil {
		return m.neighborsFn(names, hops)
	}
	return nil, nil
}

func (m *mockGraph) FindPaths(ctx context.Context, startName, endName string, maxHops int) ([]entity.Path, error) {
	if m.findPathsFn != nil {
		return m.findPathsFn(startName, endName, maxHops)
	}
	return nil, nil
}

func (m *mockGraph) CommunityMembers(ctx context.Context, name string) ([]entity.Entity, error) {
	return nil, nil
}

func (m *mockGraph) TalksBySpeaker(ctx context.Context, speakerName string) ([]entity.Talk, error) {
	if m.talksBySpeakerFn != nil {
		return m.talksBySpeakerFn(speakerName)
	}
	return nil, nil
}

func (m *mockGraph) SearchTalks(ctx context.Context, terms []string, limit int) ([]entity.Talk, error) {
	if m.searchTalksFn != nil {
		return m.searchTalksFn(terms, limit)
	}
	return nil, nil
}

func (m *mockGraph) GetTalk(ctx context.Context, title string) (*entity.Talk, error) {
	if m.getTalkFn != nil {
		return m.getTalkFn(title)
	}
	return nil, repository.ErrTalkNotFound
}

func (m *mockGraph) Ping(ctx context.Context) error { return nil }

// mockTranscript implements repository.TranscriptRepository for testing
type mockTranscript struct {
	called   bool
	searchFn func(terms []string, limitPerTalk int) ([]repository.Passage, error)
}

func (m *mockTranscript) SearchPassages(ctx context.Context, terms []string, limitPerTalk int) ([]repository.Passage, error) {
	m.called = true
	if m.searchFn != nil {
		return m.searchFn(terms, limitPerTalk)
	}
	return nil, nil
}

func newTestEngine(emb *mockEmbedder, vec *mockVector, graph *mockGraph, transcript *mockTranscript) *Engine {
	return NewEngine(emb, vec, graph, transcript, testRetrievalConfig())
}

func TestRetrieveEmptyQuery(t *testing.T) {
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, &mockGraph{}, &mockTranscript{})
	_, err := e.Retrieve(context.Background(), RetrieveInput{Query: "   "})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestRetrieveMergesDuplicatesAcrossBranches(t *testing.T) {
	talk := entity.Talk{
		ID:          "t1",
		Title:       "Graphs at Scale",
		SpeakerName: "Paco Nathan",
		YouTubeURL:  "https://youtube.com/watch?v=abc",
	}
	graph := &mockGraph{
		neighborsFn: func(names []string, hops int) ([]repository.NeighborResult, error) {
			return []repository.NeighborResult{{
				Center: entity.Entity{ID: "s1", Name: "Paco Nathan", Type: entity.EntityTypeSpeaker},
				Talks:  []entity.Talk{talk},
			}}, nil
		},
		searchTalksFn: func(terms []string, limit int) ([]entity.Talk, error) {
			return []entity.Talk{talk}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, graph, &mockTranscript{})

	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "What talks did Paco Nathan give?"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.Stats.QueryType != QueryTypeGraph {
		t.Fatalf("query type = %v, want graph", out.Stats.QueryType)
	}

	var merged *Candidate
	for i := range out.Context.Blocks {
		if out.Context.Blocks[i].Key == "talk:t1" {
			merged = &out.Context.Blocks[i]
		}
	}
	if merged == nil {
		t.Fatal("expected merged candidate talk:t1")
	}
	if merged.Score != 0.9 {
		t.Errorf("merged score = %v, want the max across branches (0.9)", merged.Score)
	}
	if len(merged.Provenance) != 2 {
		t.Errorf("provenance = %v, want contributions from both branches", merged.Provenance)
	}
	if out.Stats.MergedCandidates != 1 {
		t.Errorf("merged candidates = %d, want 1", out.Stats.MergedCandidates)
	}
}

func TestRetrieveSpeakerFastPath(t *testing.T) {
	graph := &mockGraph{
		talksBySpeakerFn: func(speakerName string) ([]entity.Talk, error) {
			if speakerName != "Leo Meyerovich" {
				return nil, nil
			}
			return []entity.Talk{{
				ID:         "t7",
				Title:      "GPU Graph Visualization",
				YouTubeURL: "https://youtube.com/watch?v=leo",
			}}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, graph, &mockTranscript{})

	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "What talks did Leo Meyerovich give?"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	var found *Candidate
	for i := range out.Context.Blocks {
		if out.Context.Blocks[i].Key == "talk:t7" {
			found = &out.Context.Blocks[i]
		}
	}
	if found == nil {
		t.Fatal("expected the speaker's talk from the direct lookup")
	}
	if !strings.Contains(found.Text, "Leo Meyerovich") {
		t.Errorf("talk text = %q, want the speaker name filled from the query", found.Text)
	}
	if found.Citation != "https://youtube.com/watch?v=leo" {
		t.Errorf("citation = %q, want the talk URL", found.Citation)
	}
}

func TestRetrieveSemanticQueryRunsTranscript(t *testing.T) {
	transcript := &mockTranscript{
		searchFn: func(terms []string, limitPerTalk int) ([]repository.Passage, error) {
			return []repository.Passage{{
				TalkID:    "t1",
				TalkTitle: "Graphs at Scale",
				Snippet:   "...knowledge graphs connect talks and speakers...",
			}}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, &mockGraph{}, transcript)

	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "What talks discuss knowledge graphs?"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.Stats.QueryType != QueryTypeSemantic {
		t.Fatalf("query type = %v, want semantic", out.Stats.QueryType)
	}
	if !transcript.called {
		t.Fatal("conceptual queries must also search transcripts")
	}
	var found bool
	for _, blk := range out.Context.Blocks {
		if blk.Key == "talk:t1" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a transcript block for talk:t1, got %+v", out.Context.Blocks)
	}
}

func TestRetrieveFollowUpExpandsFromHistory(t *testing.T) {
	transcript := &mockTranscript{
		searchFn: func(terms []string, limitPerTalk int) ([]repository.Passage, error) {
			return []repository.Passage{{
				TalkID:    "t1",
				TalkTitle: "Graphs at Scale",
				Snippet:   "...we use Graphistry for GPU acceleration...",
			}}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, &mockGraph{}, transcript)

	history := []entity.ConversationTurn{
		{Role: entity.TurnRoleUser, Content: "What talks did Paco Nathan give?"},
		{Role: entity.TurnRoleAssistant, Content: `Paco Nathan presented "Graphs at Scale".`},
	}
	out, err := e.Retrieve(context.Background(), RetrieveInput{
		Query:   "What tools does he discuss?",
		History: history,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !out.Stats.IsFollowUp {
		t.Fatal("pronoun query with history must be treated as a follow-up")
	}
	if !strings.Contains(out.Stats.ExpandedQuery, "Paco Nathan") {
		t.Errorf("expanded query = %q, want the speaker resolved from history", out.Stats.ExpandedQuery)
	}
	if !transcript.called {
		t.Error("semantic follow-up must still reach the transcript branch")
	}
}

func TestRetrieveStandaloneQueryNotExpanded(t *testing.T) {
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, &mockGraph{}, &mockTranscript{})

	history := []entity.ConversationTurn{
		{Role: entity.TurnRoleUser, Content: "What talks did Paco Nathan give?"},
	}
	out, err := e.Retrieve(context.Background(), RetrieveInput{
		Query:   "Which conference talks discuss Apache Arrow internals?",
		History: history,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.Stats.IsFollowUp {
		t.Error("standalone named query must not be treated as a follow-up")
	}
	if out.Stats.ExpandedQuery != "" {
		t.Errorf("expanded query = %q, want no history expansion", out.Stats.ExpandedQuery)
	}
}

func TestRetrieveCombinesPassagesPerTalk(t *testing.T) {
	talk := entity.Talk{
		ID:          "t1",
		Title:       "Graphs at Scale",
		SpeakerName: "Paco Nathan",
		YouTubeURL:  "https://youtube.com/watch?v=abc",
	}
	graph := &mockGraph{
		neighborsFn: func(names []string, hops int) ([]repository.NeighborResult, error) {
			return []repository.NeighborResult{{
				Center: entity.Entity{ID: "s1", Name: "Paco Nathan", Type: entity.EntityTypeSpeaker},
				Talks:  []entity.Talk{talk},
			}}, nil
		},
	}
	transcript := &mockTranscript{
		searchFn: func(terms []string, limitPerTalk int) ([]repository.Passage, error) {
			return []repository.Passage{
				{
					TalkID:      "t1",
					TalkTitle:   "Graphs at Scale",
					SpeakerName: "Paco Nathan",
					Snippet:     "...Cynefin helps teams navigate complexity...",
					CitationURL: "https://youtube.com/watch?v=abc&t=120",
				},
				{
					TalkID:      "t1",
					TalkTitle:   "Graphs at Scale",
					SpeakerName: "Paco Nathan",
					Snippet:     "...the Cynefin framework distinguishes domains...",
					CitationURL: "https://youtube.com/watch?v=abc&t=360",
				},
			}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, graph, transcript)

	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "What did Paco Nathan say about Cynefin?"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	var blocks []*Candidate
	for i := range out.Context.Blocks {
		if out.Context.Blocks[i].Key == "talk:t1" {
			blocks = append(blocks, &out.Context.Blocks[i])
		}
	}
	if len(blocks) != 1 {
		t.Fatalf("blocks for talk:t1 = %d, want passages combined into one candidate", len(blocks))
	}
	blk := blocks[0]
	if !strings.Contains(blk.Text, "navigate complexity") || !strings.Contains(blk.Text, "distinguishes domains") {
		t.Errorf("combined text = %q, want both snippets", blk.Text)
	}
	if !strings.HasPrefix(blk.Text, `From "Graphs at Scale" by Paco Nathan:`) {
		t.Errorf("combined text = %q, want the talk header first", blk.Text)
	}
	if !hasStrategy(blk.Provenance, StrategyTranscript) || !hasStrategy(blk.Provenance, StrategyGraph) {
		t.Errorf("provenance = %v, want transcript and graph merged on the shared key", blk.Provenance)
	}
	if out.Stats.TranscriptHits != 2 {
		t.Errorf("transcript hits = %d, want 2 passages", out.Stats.TranscriptHits)
	}
	if out.Stats.TranscriptTalks != 1 {
		t.Errorf("transcript talks = %d, want 1 distinct talk", out.Stats.TranscriptTalks)
	}
}

func TestRetrieveSingleBranchFailureDegrades(t *testing.T) {
	emb := &mockEmbedder{
		embedFn: func(texts []string) ([][]float64, error) {
			return nil, fmt.Errorf("embedding provider down")
		},
	}
	transcript := &mockTranscript{
		searchFn: func(terms []string, limitPerTalk int) ([]repository.Passage, error) {
			return []repository.Passage{{
				TalkID:    "t1",
				TalkTitle: "Graphs at Scale",
				Snippet:   "...we rely on knowledge graphs every day...",
			}}, nil
		},
	}
	e := newTestEngine(emb, &mockVector{}, &mockGraph{}, transcript)

	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "What did Paco Nathan say about graphs?"})
	if err != nil {
		t.Fatalf("one failed branch must not fail the whole retrieval: %v", err)
	}

	var failed, succeeded int
	for _, st := range out.Stats.Branches {
		if st.Failed {
			failed++
		} else {
			succeeded++
		}
	}
	if failed == 0 {
		t.Error("expected the semantic branch to be recorded as failed")
	}
	if succeeded == 0 {
		t.Error("expected surviving branches")
	}
	if len(out.Context.Blocks) == 0 {
		t.Error("expected context from surviving branches")
	}
}

func TestRetrieveAllBranchesFailed(t *testing.T) {
	emb := &mockEmbedder{
		embedFn: func(texts []string) ([][]float64, error) {
			return nil, fmt.Errorf("embedding provider down")
		},
	}
	transcript := &mockTranscript{
		searchFn: func(terms []string, limitPerTalk int) ([]repository.Passage, error) {
			return nil, fmt.Errorf("neo4j down")
		},
	}
	e := newTestEngine(emb, &mockVector{}, &mockGraph{}, transcript)

	// 语义类查询走语义和转写两个分支，两个都失败
	_, err := e.Retrieve(context.Background(), RetrieveInput{Query: "Which talks discuss complexity?"})
	if !errors.Is(err, ErrRetrievalFailed) {
		t.Fatalf("err = %v, want ErrRetrievalFailed", err)
	}
}

func TestRetrieveMultiHopPaths(t *testing.T) {
	graph := &mockGraph{
		findPathsFn: func(start, end string, maxHops int) ([]entity.Path, error) {
			if start != "Paco Nathan" || end != "Leo Meyerovich" {
				return nil, fmt.Errorf("unexpected endpoints %q -> %q", start, end)
			}
			return []entity.Path{{
				Nodes: []entity.Entity{
					{Name: "Paco Nathan", Type: entity.EntityTypeSpeaker},
					{Name: "Graphistry", Type: entity.EntityTypeTag},
					{Name: "Leo Meyerovich", Type: entity.EntityTypeSpeaker},
				},
				Relations: []entity.RelationType{entity.RelationMentions, entity.RelationMentions},
			}}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, graph, &mockTranscript{})

	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "How is Paco Nathan connected to Leo Meyerovich?"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.Stats.QueryType != QueryTypeMultiHop {
		t.Fatalf("query type = %v, want multi_hop", out.Stats.QueryType)
	}
	if out.Stats.PathCount != 1 {
		t.Errorf("path count = %d, want 1", out.Stats.PathCount)
	}
	var found bool
	for _, blk := range out.Context.Blocks {
		if strings.HasPrefix(blk.Text, "Connection: ") && strings.Contains(blk.Text, "Graphistry") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a rendered path block, got %+v", out.Context.Blocks)
	}
}

func TestRetrieveMultiHopSupplementsEndpoint(t *testing.T) {
	vec := &mockVector{
		searchFn: func(params *VectorSearchParams) ([]*VectorSearchResult, error) {
			return []*VectorSearchResult{
				{EntityID: "e1", EntityType: "Tag", Name: "Knowledge Graphs", Score: 0.92},
			}, nil
		},
	}
	var gotStart, gotEnd string
	graph := &mockGraph{
		findPathsFn: func(start, end string, maxHops int) ([]entity.Path, error) {
			gotStart, gotEnd = start, end
			return []entity.Path{{
				Nodes: []entity.Entity{
					{Name: "Paco Nathan", Type: entity.EntityTypeSpeaker},
					{Name: "Knowledge Graphs", Type: entity.EntityTypeTag},
				},
				Relations: []entity.RelationType{entity.RelationMentions},
			}}, nil
		},
	}
	e := newTestEngine(&mockEmbedder{}, vec, graph, &mockTranscript{})

	// 第二个端点在查询里是小写概念，要靠语义命中补齐
	out, err := e.Retrieve(context.Background(), RetrieveInput{Query: "How is Paco Nathan related to knowledge graphs?"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if gotStart != "Paco Nathan" || gotEnd != "Knowledge Graphs" {
		t.Fatalf("path endpoints = %q -> %q, want the semantic hit as second endpoint", gotStart, gotEnd)
	}
	if out.Stats.PathCount != 1 {
		t.Errorf("path count = %d, want 1", out.Stats.PathCount)
	}
}

func TestEngineTalkLookup(t *testing.T) {
	graph := &mockGraph{
		getTalkFn: func(title string) (*entity.Talk, error) {
			if strings.EqualFold(title, "Graphs at Scale") {
				return &entity.Talk{ID: "t1", Title: "Graphs at Scale", SpeakerName: "Paco Nathan"}, nil
			}
			return nil, repository.ErrTalkNotFound
		},
	}
	e := newTestEngine(&mockEmbedder{}, &mockVector{}, graph, &mockTranscript{})

	talk, err := e.Talk(context.Background(), "Graphs at Scale")
	if err != nil {
		t.Fatalf("Talk: %v", err)
	}
	if talk.ID != "t1" {
		t.Errorf("talk id = %q, want t1", talk.ID)
	}

	if _, err := e.Talk(context.Background(), "No Such Talk"); !errors.Is(err, repository.ErrTalkNotFound) {
		t.Errorf("err = %v, want ErrTalkNotFound", err)
	}
	if _, err := e.Talk(context.Background(), "  "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestMergeCandidates(t *testing.T) {
	branches := [][]Candidate{
		{
			{Key: "a", Strategy: StrategySemantic, Score: 0.5, Text: "semantic a"},
			{Key: "b", Strategy: StrategySemantic, Score: 0.4, Text: "semantic b"},
		},
		{
			{Key: "a", Strategy: StrategyGraph, Score: 0.9, Text: "graph a", Citation: "https://example.com"},
		},
	}
	merged := mergeCandidates(branches)
	if len(merged) != 2 {
		t.Fatalf("len = %d, want 2", len(merged))
	}
	a := merged[0]
	if a.Key != "a" {
		t.Fatalf("first key = %q, want insertion order preserved", a.Key)
	}
	if a.Score != 0.9 || a.Text != "graph a" {
		t.Errorf("winner = %+v, want the highest scoring variant", a)
	}
	if a.Citation != "https://example.com" {
		t.Errorf("citation = %q, want the citation carried over", a.Citation)
	}
	if len(a.Provenance) != 2 {
		t.Errorf("provenance = %v, want both strategies", a.Provenance)
	}
}

func TestRankCandidates(t *testing.T) {
	cands := []Candidate{
		{Key: "k", Strategy: StrategyKeyword, Score: 1.0},
		{Key: "s", Strategy: StrategySemantic, Score: 0.9},
		{Key: "t", Strategy: StrategyTranscript, Score: 0.2},
		{Key: "g2", Strategy: StrategyGraph, Score: 0.5},
		{Key: "g1", Strategy: StrategyGraph, Score: 0.9},
	}
	rankCandidates(cands)

	wantOrder := []string{"t", "g1", "g2", "s", "k"}
	for i, want := range wantOrder {
		if cands[i].Key != want {
			t.Fatalf("rank[%d] = %q, want %q (full order %+v)", i, cands[i].Key, want, cands)
		}
	}
}

func TestBudgetTruncate(t *testing.T) {
	long := strings.Repeat("x", 600)
	cands := []Candidate{
		{Key: "a", Text: long},
		{Key: "b", Text: long},
		{Key: "c", Text: long},
	}

	fused := budgetTruncate(cands, 1500)
	if !fused.Truncated {
		t.Error("expected truncation flag")
	}
	if len(fused.Blocks) != 3 {
		t.Fatalf("blocks = %d, want the third block truncated but kept", len(fused.Blocks))
	}
	if fused.TotalChars > 1500 {
		t.Errorf("total chars = %d, must never exceed the budget", fused.TotalChars)
	}
	sum := 0
	for _, blk := range fused.Blocks {
		sum += len(blk.Text)
	}
	if fused.TotalChars != sum {
		t.Errorf("total chars = %d, want the actual emitted length %d", fused.TotalChars, sum)
	}
	if !strings.HasSuffix(fused.Blocks[2].Text, "...") {
		t.Errorf("truncated block should end with ellipsis, got %q", fused.Blocks[2].Text[len(fused.Blocks[2].Text)-10:])
	}

	fused = budgetTruncate(cands, 5000)
	if fused.Truncated {
		t.Error("no truncation expected inside budget")
	}
	if fused.TotalChars != 1800 {
		t.Errorf("total chars = %d, want 1800", fused.TotalChars)
	}
}

func TestBudgetTruncateKeepsRunesIntact(t *testing.T) {
	cands := []Candidate{
		{Key: "a", Text: strings.Repeat("x", 600)},
		{Key: "b", Text: strings.Repeat("知识图谱", 100)},
	}

	// 截断点落在多字节字符中间，必须回退到字符边界
	fused := budgetTruncate(cands, 901)
	if len(fused.Blocks) != 2 {
		t.Fatalf("blocks = %d, want the second block truncated but kept", len(fused.Blocks))
	}
	if fused.TotalChars > 901 {
		t.Errorf("total chars = %d, must never exceed the budget", fused.TotalChars)
	}
	if !utf8.ValidString(fused.Blocks[1].Text) {
		t.Errorf("truncated block is not valid UTF-8: %q", fused.Blocks[1].Text)
	}
}

func TestBudgetTruncateDropsTinyRemainder(t *testing.T) {
	cands := []Candidate{
		{Key: "a", Text: strings.Repeat("x", 950)},
		{Key: "b", Text: strings.Repeat("y", 500)},
	}
	fused := budgetTruncate(cands, 1000)
	if len(fused.Blocks) != 1 {
		t.Fatalf("blocks = %d, want the remainder below the minimum dropped", len(fused.Blocks))
	}
	if !fused.Truncated {
		t.Error("expected truncation flag")
	}
}

func TestFillEvidenceStats(t *testing.T) {
	strategies := []Strategy{StrategySemantic, StrategyTranscript, StrategyGraph}
	branches := [][]Candidate{
		{
			{Key: "entity:e1", Strategy: StrategySemantic, Score: 0.4},
			{Key: "entity:e2", Strategy: StrategySemantic, Score: 0.8},
		},
		{
			{Key: "talk:t1", Strategy: StrategyTranscript, Passages: 3},
			{Key: "talk:t2", Strategy: StrategyTranscript, Passages: 1},
		},
		{
			{Key: "talk:t1", Strategy: StrategyGraph},
		},
	}

	var stats RetrievalStats
	fillEvidenceStats(&stats, branches, strategies)

	if stats.SemanticBestScore != 0.8 {
		t.Errorf("semantic best score = %v, want the top hit 0.8", stats.SemanticBestScore)
	}
	if stats.TranscriptHits != 4 {
		t.Errorf("transcript hits = %d, want the passage total 4", stats.TranscriptHits)
	}
	if stats.TranscriptTalks != 2 {
		t.Errorf("transcript talks = %d, want 2 distinct talks", stats.TranscriptTalks)
	}
	if stats.GraphHits != 1 {
		t.Errorf("graph hits = %d, want 1", stats.GraphHits)
	}
}
