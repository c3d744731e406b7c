package retrieval

import (
	"strings"
	"testing"

	"github.com/safishamsi/CDKG/internal/domain/entity"
)

func turns(contents ...string) []entity.ConversationTurn {
	out := make([]entity.ConversationTurn, 0, len(contents))
	for i, c := range contents {
		role := entity.TurnRoleUser
		if i%2 == 1 {
			role = entity.TurnRoleAssistant
		}
		out = append(out, entity.ConversationTurn{Role: role, Content: c})
	}
	return out
}

func TestExpandNoHistory(t *testing.T) {
	e := NewExpander(testVocab())
	got, kw := e.Expand("What is Cynefin?", nil)
	if got != "What is Cynefin?" {
		t.Errorf("Expand = %q, want original query", got)
	}
	if kw != nil {
		t.Errorf("keywords = %v, want nil", kw)
	}
}

func TestExpandResolvesPronoun(t *testing.T) {
	e := NewExpander(testVocab())
	history := turns(
		"Tell me about the talk by Paco Nathan.",
		"He spoke on Cynefin and complexity at the conference.",
	)
	got, kw := e.Expand("What else did he talk about?", history)
	if !strings.HasPrefix(got, "What else did he talk about?") {
		t.Fatalf("expanded query must keep the original prefix, got %q", got)
	}
	if !strings.Contains(got, "Paco Nathan") {
		t.Errorf("expanded query should carry the speaker name, got %q", got)
	}
	if len(kw) == 0 {
		t.Fatal("expected expansion keywords")
	}
	if kw[0] != "Paco Nathan" {
		t.Errorf("pronoun should resolve to the most recent person, got %q", kw[0])
	}
}

func TestExpandResolvesThingPronounToTitle(t *testing.T) {
	e := NewExpander(testVocab())
	history := turns(
		"Which talk covered graph thinking?",
		`She presented "Graph Thinking" last year.`,
	)
	got, kw := e.Expand("What is that about?", history)
	if len(kw) == 0 {
		t.Fatal("expected expansion keywords")
	}
	if kw[0] != "Graph Thinking" {
		t.Errorf("thing pronoun should resolve to the most recent title, got %q", kw[0])
	}
	if !strings.Contains(got, "Graph Thinking") {
		t.Errorf("expanded query should carry the talk title, got %q", got)
	}
}

func TestExpandSkipsEntitiesAlreadyInQuery(t *testing.T) {
	e := NewExpander(testVocab())
	history := turns("Tell me about the talk by Leo Meyerovich.")
	got, kw := e.Expand("What did Leo Meyerovich build?", history)
	for _, k := range kw {
		if strings.EqualFold(k, "Leo Meyerovich") {
			t.Errorf("entity already in query must not be re-appended, keywords = %v", kw)
		}
	}
	if strings.Count(strings.ToLower(got), "leo meyerovich") != 1 {
		t.Errorf("expanded query duplicates entity: %q", got)
	}
}

func TestExpandKeywordLimit(t *testing.T) {
	e := NewExpander(testVocab())
	history := turns(
		`Alice Anderson met Bob Brown and Carol Clark in London Town, then "graph theory" came up with David Dunn and Erin Evans.`,
	)
	_, kw := e.Expand("What happened next?", history)
	if len(kw) > maxExpansionKeywords {
		t.Errorf("got %d keywords, want at most %d: %v", len(kw), maxExpansionKeywords, kw)
	}
}

func TestExpandWindowIgnoresOldTurns(t *testing.T) {
	e := NewExpander(testVocab())
	history := turns(
		"Early mention of Zara Zimmerman here.",
		"ok", "ok", "ok", "ok", "ok", "ok",
	)
	got, _ := e.Expand("What did she say?", history)
	if strings.Contains(got, "Zara Zimmerman") {
		t.Errorf("mentions outside the history window must be ignored, got %q", got)
	}
}

func TestSearchTermsFiltersStopWords(t *testing.T) {
	e := NewExpander(testVocab())
	terms := e.SearchTerms("What did the speaker say about complexity?")
	for _, term := range terms {
		low := strings.ToLower(term)
		if low == "what" || low == "the" || low == "about" || low == "did" {
			t.Errorf("stop word leaked into terms: %v", terms)
		}
	}
	found := false
	for _, term := range terms {
		if strings.ToLower(term) == "complexity" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected content word in terms, got %v", terms)
	}
}

func TestSearchTermsKeepsCapitalizedPhrases(t *testing.T) {
	e := NewExpander(testVocab())
	terms := e.SearchTerms("Did Paco Nathan mention Apache Arrow?")
	var hasPhrase bool
	for _, term := range terms {
		if term == "Paco Nathan" {
			hasPhrase = true
		}
	}
	if !hasPhrase {
		t.Errorf("capitalized phrase should survive as a whole term, got %v", terms)
	}
}

func TestSearchTermsDomainWidening(t *testing.T) {
	e := NewExpander(testVocab())
	terms := e.SearchTerms("Which graph tool came up?")
	var hasDomain bool
	for _, term := range terms {
		if term == "graphistry" || term == "cynefin" {
			hasDomain = true
		}
	}
	if !hasDomain {
		t.Errorf("tool indicator should widen terms with the domain vocabulary, got %v", terms)
	}

	terms = e.SearchTerms("Who spoke first?")
	for _, term := range terms {
		if term == "graphistry" {
			t.Errorf("domain widening must not trigger without an indicator, got %v", terms)
		}
	}
}

func TestSearchTermsEmptyQuery(t *testing.T) {
	e := NewExpander(testVocab())
	if terms := e.SearchTerms("   "); terms != nil {
		t.Errorf("SearchTerms on blank query = %v, want nil", terms)
	}
}
