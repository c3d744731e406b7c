// Package entity 定义领域实体
package entity

import "fmt"

// TurnRole 对话轮次角色
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Valid 校验角色是否合法
func (r TurnRole) Valid() bool {
	return r == TurnRoleUser || r == TurnRoleAssistant
}

// ConversationTurn 一轮对话，历史由调用方持有并随请求传入
type ConversationTurn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// Validate 校验轮次字段
func (t *ConversationTurn) Validate() error {
	if !t.Role.Valid() {
		return fmt.Errorf("unknown turn role: %s", t.Role)
	}
	if t.Content == "" {
		return fmt.Errorf("turn content is empty")
	}
	return nil
}
