package retrieval

import (
	"strings"
	"testing"

	"github.com/safishamsi/CDKG/internal/domain/entity"
)

func TestBuildPrompt(t *testing.T) {
	fused := FusedContext{
		Blocks: []Candidate{
			{Text: "From \"Graphs at Scale\" by Paco Nathan: ...graphs everywhere..."},
			{Text: "Talk \"Visual Graph AI\" by Leo Meyerovich"},
		},
	}
	history := []entity.ConversationTurn{
		{Role: entity.TurnRoleUser, Content: "Who spoke about graphs?"},
		{Role: entity.TurnRoleAssistant, Content: "Paco Nathan did."},
	}

	got := BuildPrompt("What else did he cover?", fused, history)

	if !strings.Contains(got, "[1] From \"Graphs at Scale\"") {
		t.Errorf("expected numbered context blocks, got:\n%s", got)
	}
	if !strings.Contains(got, "[2] Talk \"Visual Graph AI\"") {
		t.Errorf("expected second block numbered, got:\n%s", got)
	}
	if !strings.Contains(got, "user: Who spoke about graphs?") {
		t.Errorf("expected history rendered with roles, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "Question: What else did he cover?") {
		t.Errorf("prompt must end with the question, got:\n%s", got)
	}
}

func TestBuildPromptEmptyContext(t *testing.T) {
	got := BuildPrompt("Who is Paco Nathan?", FusedContext{}, nil)
	if !strings.Contains(got, "(no relevant material was found)") {
		t.Errorf("empty context needs an explicit marker, got:\n%s", got)
	}
}

func TestCompactOneLine(t *testing.T) {
	got := compactOneLine("a\r\nb\n  c   d")
	if got != "a b c d" {
		t.Errorf("compactOneLine = %q", got)
	}
}

func TestCollectCitations(t *testing.T) {
	fused := FusedContext{
		Blocks: []Candidate{
			{Text: "From \"Graphs at Scale\" by Paco Nathan: snippet", Citation: "https://youtube.com/watch?v=abc&t=42s"},
			{Text: "Talk \"Graphs at Scale\" by Paco Nathan", Citation: "https://youtube.com/watch?v=abc&t=42s"},
			{Text: "no citation here"},
			{Text: "Talk \"Visual Graph AI\" by Leo Meyerovich at GraphConf: desc", Citation: "https://youtube.com/watch?v=def"},
		},
	}

	got := collectCitations(fused)
	if len(got) != 2 {
		t.Fatalf("citations = %d, want duplicates removed by URL", len(got))
	}
	if got[0].TalkTitle != "Graphs at Scale" || got[0].SpeakerName != "Paco Nathan" {
		t.Errorf("first citation = %+v", got[0])
	}
	if got[1].TalkTitle != "Visual Graph AI" || got[1].SpeakerName != "Leo Meyerovich" {
		t.Errorf("second citation = %+v", got[1])
	}
}

func TestTitleAndSpeakerFromBlock(t *testing.T) {
	tests := []struct {
		text        string
		wantTitle   string
		wantSpeaker string
	}{
		{`From "Graphs at Scale" by Paco Nathan: snippet text`, "Graphs at Scale", "Paco Nathan"},
		{`Talk "Visual Graph AI" by Leo Meyerovich at GraphConf: desc`, "Visual Graph AI", "Leo Meyerovich"},
		{`Talk "Untitled"`, "Untitled", ""},
		{`no quotes at all`, "", ""},
	}
	for _, tt := range tests {
		if got := titleFromBlock(tt.text); got != tt.wantTitle {
			t.Errorf("titleFromBlock(%q) = %q, want %q", tt.text, got, tt.wantTitle)
		}
		if got := speakerFromBlock(tt.text); got != tt.wantSpeaker {
			t.Errorf("speakerFromBlock(%q) = %q, want %q", tt.text, got, tt.wantSpeaker)
		}
	}
}
