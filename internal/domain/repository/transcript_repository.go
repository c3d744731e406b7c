// Package repository 定义数据访问层接口
package repository

import (
	"context"
)

// Passage 转写文本中命中的一个片段
type Passage struct {
	// TalkID 所属演讲 ID
	TalkID string
	// TalkTitle 所属演讲标题
	TalkTitle string
	// SpeakerName 演讲者名称
	SpeakerName string
	// Snippet 修剪到句边界后的片段文本
	Snippet string
	// MatchedTerm 命中的检索词
	MatchedTerm string
	// CitationURL 带时间戳的视频链接，无法定位时为空
	CitationURL string
}

// TranscriptRepository 演讲转写检索接口
type TranscriptRepository interface {
	// SearchPassages 在转写全文中检索词汇并提取片段，每场演讲至多 limitPerTalk 个
	SearchPassages(ctx context.Context, terms []string, limitPerTalk int) ([]Passage, error)
}
