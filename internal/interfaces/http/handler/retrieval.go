// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/safishamsi/CDKG/internal/application/retrieval"
	"github.com/safishamsi/CDKG/internal/domain/entity"
	"github.com/safishamsi/CDKG/internal/domain/repository"
	"github.com/safishamsi/CDKG/internal/interfaces/http/dto"
)

// RetrievalHandler 检索处理器，暴露不经过答案合成的检索调试接口
type RetrievalHandler struct {
	service *retrieval.Service
}

// NewRetrievalHandler 创建检索处理器
func NewRetrievalHandler(service *retrieval.Service) *RetrievalHandler {
	return &RetrievalHandler{
		service: service,
	}
}

// Search 检索上下文
// @Summary 检索上下文
// @Description 执行混合检索并返回融合后的上下文块，不做答案合成
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/retrieval/search [post]
func (h *RetrievalHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	out, err := h.service.Retrieve(c.Request.Context(), retrieval.RetrieveInput{
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
		if errors.Is(err, retrieval.ErrRetrievalFailed) {
			dto.Error(c, 502, err.Error())
			return
		}
		dto.InternalError(c, err.Error())
		return
	}

	resp := &dto.SearchResponse{
		Truncated:  out.Context.Truncated,
		TotalChars: out.Context.TotalChars,
		Stats:      &out.Stats,
		Blocks:     make([]*dto.ContextBlock, 0, len(out.Context.Blocks)),
	}
	for _, blk := range out.Context.Blocks {
		provenance := make([]string, 0, len(blk.Provenance))
		for _, s := range blk.Provenance {
			provenance = append(provenance, string(s))
		}
		resp.Blocks = append(resp.Blocks, &dto.ContextBlock{
			Text:       blk.Text,
			Score:      blk.Score,
			Strategy:   string(blk.Strategy),
			Provenance: provenance,
			Citation:   blk.Citation,
		})
	}
	dto.Success(c, resp)
}

// Talk 按标题查找演讲
// @Summary 按标题查找演讲
// @Description 大小写不敏感地按标题返回单场演讲的元数据
// @Tags Retrieval
// @Produce json
// @Param title query string true "演讲标题"
// @Success 200 {object} dto.Response[dto.TalkResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/talks [get]
func (h *RetrievalHandler) Talk(c *gin.Context) {
	title := c.Query("title")
	if strings.TrimSpace(title) == "" {
		dto.BadRequest(c, "title must not be empty")
		return
	}

	talk, err := h.service.Talk(c.Request.Context(), title)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			dto.BadRequest(c, "title must not be empty")
			return
		}
		if errors.Is(err, repository.ErrTalkNotFound) {
			dto.NotFound(c, err.Error())
			return
		}
		dto.InternalError(c, err.Error())
		return
	}

	dto.Success(c, &dto.TalkResponse{
		ID:          talk.ID,
		Title:       talk.Title,
		SpeakerName: talk.SpeakerName,
		EventName:   talk.EventName,
		Description: talk.Description,
		YouTubeURL:  talk.YouTubeURL,
	})
}

// toHistory 将请求历史转换为领域轮次
func toHistory(turns []dto.ConversationTurn) []entity.ConversationTurn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]entity.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, entity.ConversationTurn{
			Role:    entity.TurnRole(t.Role),
			Content: t.Content,
		})
	}
	return out
}
