// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/safishamsi/CDKG/internal/application/retrieval"
	"github.com/safishamsi/CDKG/internal/interfaces/http/dto"
)

// QueryHandler 问答处理器
type QueryHandler struct {
	service *retrieval.Service
}

// NewQueryHandler 创建问答处理器
func NewQueryHandler(service *retrieval.Service) *QueryHandler {
	return &QueryHandler{
		service: service,
	}
}

// Ask 回答问题
// @Summary 回答问题
// @Description 对知识图谱执行混合检索并合成答案；合成失败时降级返回原始上下文
// @Tags Query
// @Accept json
// @Produce json
// @Param body body dto.AskRequest true "问答请求"
// @Success 200 {object} dto.Response[dto.AskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/query [post]
func (h *QueryHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	out, err := h.service.AnswerQuery(c.Request.Context(), retrieval.AnswerInput{
		Query:   req.Query,
		History: toHistory(req.History),
		TopK:    req.TopK,
		MaxHops: req.MaxHops,
	})
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			dto.BadRequest(c, "query must not be empty")
			return
		}

		// 检索成功但合成失败：降级返回上下文，调用方可自行兜底
		var synthErr *retrieval.SynthesisError
		if errors.As(err, &synthErr) {
			blocks := make([]string, 0, len(synthErr.Context.Blocks))
			for _, blk := range synthErr.Context.Blocks {
				blocks = append(blocks, blk.Text)
			}
			dto.Success(c, &dto.AskResponse{
				Confidence:    synthErr.Confidence,
				QueryType:     string(synthErr.Stats.QueryType),
				Stats:         &synthErr.Stats,
				Degraded:      true,
				ContextBlocks: blocks,
			})
			return
		}

		if errors.Is(err, retrieval.ErrRetrievalFailed) {
			dto.Error(c, 502, err.Error())
			return
		}
		dto.InternalError(c, err.Error())
		return
	}

	dto.Success(c, &dto.AskResponse{
		Answer:     out.Answer,
		Confidence: out.Confidence,
		QueryType:  string(out.QueryType),
		Citations:  out.Citations,
		Stats:      &out.Stats,
	})
}
