package neo4j

import (
	"strings"
	"testing"
)

func TestExtractSnippetsBasic(t *testing.T) {
	transcript := "We started with relational stores. Then we moved everything to knowledge graphs. That changed how we query."

	snippets := ExtractSnippets(transcript, []string{"knowledge graphs"}, 40, 5)
	if len(snippets) != 1 {
		t.Fatalf("snippets = %d, want 1", len(snippets))
	}
	sn := snippets[0]
	if sn.Term != "knowledge graphs" {
		t.Errorf("term = %q", sn.Term)
	}
	if !strings.Contains(sn.Text, "knowledge graphs") {
		t.Errorf("snippet must contain the matched term, got %q", sn.Text)
	}
	if sn.Offset != strings.Index(strings.ToLower(transcript), "knowledge graphs") {
		t.Errorf("offset = %d", sn.Offset)
	}
}

func TestExtractSnippetsCaseInsensitive(t *testing.T) {
	transcript := "Cynefin helps teams make sense of complexity."
	snippets := ExtractSnippets(transcript, []string{"cynefin"}, 100, 5)
	if len(snippets) != 1 {
		t.Fatalf("snippets = %d, want 1", len(snippets))
	}
	if snippets[0].Offset != 0 {
		t.Errorf("offset = %d, want 0", snippets[0].Offset)
	}
}

func TestExtractSnippetsSentenceBoundaries(t *testing.T) {
	transcript := strings.Repeat("Filler sentence here. ", 20) +
		"The key insight was graphs. " +
		strings.Repeat("More filler after. ", 20)

	snippets := ExtractSnippets(transcript, []string{"key insight"}, 60, 5)
	if len(snippets) != 1 {
		t.Fatalf("snippets = %d, want 1", len(snippets))
	}
	text := snippets[0].Text
	// 向句边界修剪后不应以半句开头或收尾
	if strings.HasPrefix(text, "...") {
		t.Errorf("expected a sentence boundary before the match instead of a hard cut, got %q", text)
	}
	if strings.HasSuffix(text, "...") {
		t.Errorf("expected a sentence boundary after the match instead of a hard cut, got %q", text)
	}
	if !strings.Contains(text, "The key insight was graphs.") {
		t.Errorf("snippet should contain the full matched sentence, got %q", text)
	}
}

func TestExtractSnippetsEllipsisWithoutBoundary(t *testing.T) {
	// 无任何句末标点，两端只能硬切并加省略号
	transcript := strings.Repeat("word ", 200) + "needle " + strings.Repeat("word ", 200)
	snippets := ExtractSnippets(transcript, []string{"needle"}, 50, 5)
	if len(snippets) != 1 {
		t.Fatalf("snippets = %d, want 1", len(snippets))
	}
	text := snippets[0].Text
	if !strings.HasPrefix(text, "...") || !strings.HasSuffix(text, "...") {
		t.Errorf("expected ellipsis affixes on hard cuts, got %q", text)
	}
}

func TestExtractSnippetsDeduplicates(t *testing.T) {
	// 两个词命中同一句话，第二个片段与第一个高度重叠应被丢弃
	transcript := "Apache Arrow and Parquet power the columnar pipeline in this system."
	snippets := ExtractSnippets(transcript, []string{"arrow", "parquet"}, 200, 5)
	if len(snippets) != 1 {
		t.Fatalf("snippets = %d, want overlapping duplicates dropped", len(snippets))
	}
}

func TestExtractSnippetsLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("Unique sentence number ")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(" mentions graphs topic")
		b.WriteString(strings.Repeat(" pad", i*3))
		b.WriteString(". ")
	}
	snippets := ExtractSnippets(b.String(), []string{"graphs"}, 30, 3)
	if len(snippets) > 3 {
		t.Errorf("snippets = %d, want at most 3", len(snippets))
	}
}

func TestExtractSnippetsEmptyInputs(t *testing.T) {
	if got := ExtractSnippets("", []string{"x"}, 100, 5); got != nil {
		t.Errorf("empty transcript should yield nil, got %v", got)
	}
	if got := ExtractSnippets("some text", nil, 100, 5); got != nil {
		t.Errorf("no terms should yield nil, got %v", got)
	}
	if got := ExtractSnippets("some text", []string{"text"}, 100, 0); got != nil {
		t.Errorf("zero budget should yield nil, got %v", got)
	}
}

func TestOverlapRatio(t *testing.T) {
	a := wordSet("the quick brown fox")
	b := wordSet("the quick brown dog")
	got := overlapRatio(a, b)
	if got != 0.75 {
		t.Errorf("overlapRatio = %v, want 0.75", got)
	}
	if overlapRatio(a, wordSet("")) != 0 {
		t.Error("empty set overlap must be 0")
	}
}
