// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// EntityType 知识图谱节点类型
type EntityType string

const (
	EntityTypeSpeaker  EntityType = "speaker"
	EntityTypeTalk     EntityType = "talk"
	EntityTypeTag      EntityType = "tag"
	EntityTypeEvent    EntityType = "event"
	EntityTypeCategory EntityType = "category"
)

// Valid 校验节点类型是否为已知类型
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeSpeaker, EntityTypeTalk, EntityTypeTag, EntityTypeEvent, EntityTypeCategory:
		return true
	}
	return false
}

// ParseEntityType 解析节点类型字符串
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type: %s", s)
	}
	return t, nil
}

// Entity 知识图谱节点
type Entity struct {
	ID          string         `json:"id"`
	Type        EntityType     `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// Validate 校验节点字段
func (e *Entity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity id is empty")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("entity %s has unknown type: %s", e.ID, e.Type)
	}
	if e.Name == "" {
		return fmt.Errorf("entity %s has empty name", e.ID)
	}
	return nil
}

// TranscriptSegment 演讲转写片段，Offset 为片段在全文中的字符起点
type TranscriptSegment struct {
	Offset       int    `json:"offset"`
	StartSeconds int    `json:"start_seconds"`
	Text         string `json:"text"`
}

// Talk 演讲实体，携带转写全文和分段时间轴
type Talk struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	SpeakerName string              `json:"speaker_name,omitempty"`
	EventName   string              `json:"event_name,omitempty"`
	YouTubeURL  string              `json:"youtube_url,omitempty"`
	Transcript  string              `json:"transcript,omitempty"`
	Segments    []TranscriptSegment `json:"segments,omitempty"`
}

// Validate 校验演讲字段，分段按字符偏移非递减排列
func (t *Talk) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("talk id is empty")
	}
	if t.Title == "" {
		return fmt.Errorf("talk %s has empty title", t.ID)
	}
	for i := 1; i < len(t.Segments); i++ {
		if t.Segments[i].Offset < t.Segments[i-1].Offset {
			return fmt.Errorf("talk %s segments out of order at index %d", t.ID, i)
		}
	}
	return nil
}

// SegmentAt 返回覆盖指定字符偏移的分段，用于定位引用的播放时间点
func (t *Talk) SegmentAt(offset int) (TranscriptSegment, bool) {
	if len(t.Segments) == 0 || offset < 0 {
		return TranscriptSegment{}, false
	}
	found := -1
	for i, seg := range t.Segments {
		if seg.Offset > offset {
			break
		}
		found = i
	}
	if found < 0 {
		return TranscriptSegment{}, false
	}
	return t.Segments[found], true
}

// CitationURL 返回带时间戳的视频链接，无视频地址时返回空串
func (t *Talk) CitationURL(seconds int) string {
	if t.YouTubeURL == "" {
		return ""
	}
	if seconds <= 0 {
		return t.YouTubeURL
	}
	sep := "?"
	if strings.Contains(t.YouTubeURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%ds", t.YouTubeURL, sep, seconds)
}
