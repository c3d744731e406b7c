// Package dto 提供 HTTP 层数据传输对象
package dto

import "github.com/safishamsi/CDKG/internal/application/retrieval"

// AskRequest 问答请求
type AskRequest struct {
	Query   string             `json:"query" binding:"required,max=5000"`
	History []ConversationTurn `json:"history,omitempty"`
	TopK    int                `json:"top_k,omitempty"`
	MaxHops int                `json:"max_hops,omitempty"`
}

// AskResponse 问答响应
type AskResponse struct {
	Answer     string                    `json:"answer"`
	Confidence float64                   `json:"confidence"`
	QueryType  string                    `json:"query_type"`
	Citations  []retrieval.Citation      `json:"citations,omitempty"`
	Stats      *retrieval.RetrievalStats `json:"retrieval_stats,omitempty"`
	// Degraded 合成失败降级时为真，此时 Answer 为空并返回原始上下文
	Degraded      bool     `json:"degraded,omitempty"`
	ContextBlocks []string `json:"context_blocks,omitempty"`
}
