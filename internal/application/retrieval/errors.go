package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery 表示查询去除空白后为空。
	ErrEmptyQuery = errors.New("query is empty")

	// ErrRetrievalFailed 表示全部检索分支失败，没有任何上下文可用。
	ErrRetrievalFailed = errors.New("all retrieval branches failed")

	// ErrVectorDisabled 表示向量检索能力未配置（Milvus 或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector retrieval is disabled")
)

// SynthesisError 表示检索成功但答案合成失败，携带已融合的上下文供降级返回。
type SynthesisError struct {
	Context    FusedContext
	Stats      RetrievalStats
	Confidence float64
	Err        error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("answer synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
