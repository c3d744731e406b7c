package entity

import "testing"

func TestTalkValidateSegmentOrder(t *testing.T) {
	talk := Talk{
		ID:    "t1",
		Title: "Graphs at Scale",
		Segments: []TranscriptSegment{
			{Offset: 0, StartSeconds: 0},
			{Offset: 120, StartSeconds: 15},
			{Offset: 300, StartSeconds: 40},
		},
	}
	if err := talk.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	talk.Segments[2].Offset = 100
	if err := talk.Validate(); err == nil {
		t.Fatal("expected error for out-of-order segments")
	}
}

func TestTalkValidateRequiredFields(t *testing.T) {
	if err := (&Talk{Title: "x"}).Validate(); err == nil {
		t.Error("expected error for missing id")
	}
	if err := (&Talk{ID: "t1"}).Validate(); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestSegmentAt(t *testing.T) {
	talk := Talk{
		ID:    "t1",
		Title: "Graphs at Scale",
		Segments: []TranscriptSegment{
			{Offset: 0, StartSeconds: 0},
			{Offset: 120, StartSeconds: 15},
			{Offset: 300, StartSeconds: 40},
		},
	}

	tests := []struct {
		offset      int
		wantSeconds int
		wantOK      bool
	}{
		{0, 0, true},
		{119, 0, true},
		{120, 15, true},
		{250, 15, true},
		{300, 40, true},
		{9999, 40, true},
		{-1, 0, false},
	}
	for _, tt := range tests {
		seg, ok := talk.SegmentAt(tt.offset)
		if ok != tt.wantOK {
			t.Errorf("SegmentAt(%d) ok = %v, want %v", tt.offset, ok, tt.wantOK)
			continue
		}
		if ok && seg.StartSeconds != tt.wantSeconds {
			t.Errorf("SegmentAt(%d).StartSeconds = %d, want %d", tt.offset, seg.StartSeconds, tt.wantSeconds)
		}
	}

	if _, ok := (&Talk{ID: "t2", Title: "No Segments"}).SegmentAt(10); ok {
		t.Error("talk without segments must not resolve an offset")
	}
}

func TestCitationURL(t *testing.T) {
	talk := Talk{ID: "t1", Title: "x", YouTubeURL: "https://youtube.com/watch?v=abc"}
	if got := talk.CitationURL(42); got != "https://youtube.com/watch?v=abc&t=42s" {
		t.Errorf("CitationURL = %q", got)
	}
	if got := talk.CitationURL(0); got != "https://youtube.com/watch?v=abc" {
		t.Errorf("CitationURL(0) = %q", got)
	}

	plain := Talk{ID: "t2", Title: "y", YouTubeURL: "https://youtu.be/abc"}
	if got := plain.CitationURL(42); got != "https://youtu.be/abc?t=42s" {
		t.Errorf("CitationURL = %q", got)
	}

	if got := (&Talk{ID: "t3", Title: "z"}).CitationURL(42); got != "" {
		t.Errorf("CitationURL without video = %q, want empty", got)
	}
}

func TestPathValidate(t *testing.T) {
	p := Path{
		Nodes: []Entity{
			{ID: "a", Name: "Paco Nathan", Type: EntityTypeSpeaker},
			{ID: "b", Name: "Graphs at Scale", Type: EntityTypeTalk},
		},
		Relations: []RelationType{RelationGivesTalk},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Hops() != 1 {
		t.Errorf("Hops = %d, want 1", p.Hops())
	}

	p.Relations = nil
	if err := p.Validate(); err == nil {
		t.Error("expected error when relation count does not match node count")
	}

	empty := Path{}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestPathString(t *testing.T) {
	p := Path{
		Nodes: []Entity{
			{Name: "Paco Nathan"},
			{Name: "Graphs at Scale"},
			{Name: "GraphConf"},
		},
		Relations: []RelationType{RelationGivesTalk, RelationIsPartOf},
	}
	want := "Paco Nathan -[GIVES_TALK]-> Graphs at Scale -[IS_PART_OF]-> GraphConf"
	if got := p.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestParseEntityType(t *testing.T) {
	if got, err := ParseEntityType("Speaker"); err != nil || got != EntityTypeSpeaker {
		t.Errorf("ParseEntityType(Speaker) = %v, %v", got, err)
	}
	if _, err := ParseEntityType("planet"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseRelationType(t *testing.T) {
	if got, err := ParseRelationType("mentions"); err != nil || got != RelationMentions {
		t.Errorf("ParseRelationType(mentions) = %v, %v", got, err)
	}
	if _, err := ParseRelationType("KNOWS"); err == nil {
		t.Error("expected error for relation outside the closed set")
	}
}
