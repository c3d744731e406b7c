// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/safishamsi/CDKG/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册 API 路由
func RegisterAPIRoutes(
	api *gin.RouterGroup,
	queryHandler *handler.QueryHandler,
	retrievalHandler *handler.RetrievalHandler,
) {
	// 问答入口
	api.POST("/query", queryHandler.Ask)

	// 检索调试
	retrieval := api.Group("/retrieval")
	{
		retrieval.POST("/search", retrievalHandler.Search)
	}

	// 演讲元数据查找
	api.GET("/talks", retrievalHandler.Talk)
}
