// Package dto 提供 HTTP 层数据传输对象
package dto

import "github.com/safishamsi/CDKG/internal/application/retrieval"

// SearchRequest 检索请求
type SearchRequest struct {
	Query   string             `json:"query" binding:"required,max=5000"`
	History []ConversationTurn `json:"history,omitempty"`
	TopK    int                `json:"top_k,omitempty"`
	MaxHops int                `json:"max_hops,omitempty"`
}

// ConversationTurn 一轮对话
type ConversationTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Blocks     []*ContextBlock          `json:"blocks"`
	Truncated  bool                     `json:"truncated"`
	TotalChars int                      `json:"total_chars"`
	Stats      *retrieval.RetrievalStats `json:"stats,omitempty"`
}

// TalkResponse 按标题查找演讲的响应
type TalkResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	SpeakerName string `json:"speaker_name,omitempty"`
	EventName   string `json:"event_name,omitempty"`
	Description string `json:"description,omitempty"`
	YouTubeURL  string `json:"youtube_url,omitempty"`
}

// ContextBlock 融合后的一个上下文块
type ContextBlock struct {
	Text       string   `json:"text"`
	Score      float64  `json:"score"`
	Strategy   string   `json:"strategy"`
	Provenance []string `json:"provenance,omitempty"`
	Citation   string   `json:"citation,omitempty"`
}
