package retrieval

import (
	"math"
	"testing"

	"github.com/safishamsi/CDKG/internal/config"
)

func testWeights() config.ConfidenceWeights {
	return config.ConfidenceWeights{
		Semantic:   0.3,
		Transcript: 0.4,
		Graph:      0.2,
		PathBonus:  0.1,
		Diversity:  0.1,
	}
}

func TestScore(t *testing.T) {
	s := NewScorer(testWeights())

	tests := []struct {
		name  string
		stats RetrievalStats
		want  float64
	}{
		{"no evidence", RetrievalStats{}, 0},
		{"semantic best hit", RetrievalStats{SemanticBestScore: 0.8}, 0.24},
		{"single transcript hit", RetrievalStats{TranscriptHits: 1, TranscriptTalks: 1}, 0.08},
		{"transcript hits at cap", RetrievalStats{TranscriptHits: 5, TranscriptTalks: 1}, 0.4},
		{"transcript hits above cap saturate", RetrievalStats{TranscriptHits: 9, TranscriptTalks: 1}, 0.4},
		{"transcript diversity across talks", RetrievalStats{TranscriptHits: 2, TranscriptTalks: 2}, 0.26},
		{"many hits in one talk no diversity", RetrievalStats{TranscriptHits: 4, TranscriptTalks: 1}, 0.32},
		{"graph hits scale", RetrievalStats{GraphHits: 2}, 0.08},
		{"graph hits at cap", RetrievalStats{GraphHits: 5}, 0.2},
		{"path evidence", RetrievalStats{PathCount: 1}, 0.1},
		{
			"all evidence capped at one",
			RetrievalStats{SemanticBestScore: 1.0, TranscriptHits: 8, TranscriptTalks: 3, GraphHits: 6, PathCount: 1},
			1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.stats)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreGrowsWithHits(t *testing.T) {
	s := NewScorer(testWeights())
	one := s.Score(RetrievalStats{TranscriptHits: 1, TranscriptTalks: 1})
	three := s.Score(RetrievalStats{TranscriptHits: 3, TranscriptTalks: 1})
	if three <= one {
		t.Errorf("Score with 3 hits = %v, want above single hit %v", three, one)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	s := NewScorer(config.ConfidenceWeights{Semantic: -1})
	if got := s.Score(RetrievalStats{SemanticBestScore: 0.5}); got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}
}
