// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// RelationType 知识图谱关系类型，构成封闭集合
type RelationType string

const (
	RelationGivesTalk     RelationType = "GIVES_TALK"
	RelationIsPartOf      RelationType = "IS_PART_OF"
	RelationCategorizedAs RelationType = "IS_CATEGORIZED_AS"
	RelationDescribedBy   RelationType = "IS_DESCRIBED_BY"
	RelationMentions      RelationType = "MENTIONS"
	RelationBelongsTo     RelationType = "BELONGS_TO"
)

// Valid 校验关系类型是否属于封闭集合
func (r RelationType) Valid() bool {
	switch r {
	case RelationGivesTalk, RelationIsPartOf, RelationCategorizedAs,
		RelationDescribedBy, RelationMentions, RelationBelongsTo:
		return true
	}
	return false
}

// ParseRelationType 解析关系类型字符串
func ParseRelationType(s string) (RelationType, error) {
	r := RelationType(strings.ToUpper(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown relation type: %s", s)
	}
	return r, nil
}

// Relationship 两个节点间的有向关系
type Relationship struct {
	FromID string       `json:"from_id"`
	Type   RelationType `json:"type"`
	ToID   string       `json:"to_id"`
}

// Validate 校验关系字段
func (r *Relationship) Validate() error {
	if r.FromID == "" || r.ToID == "" {
		return fmt.Errorf("relationship endpoints must be non-empty")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown relation type: %s", r.Type)
	}
	return nil
}

// Path 两个节点间的一条图路径，节点与关系交替排列
type Path struct {
	Nodes     []Entity       `json:"nodes"`
	Relations []RelationType `json:"relations"`
}

// Validate 校验路径结构，关系数必须为节点数减一
func (p *Path) Validate() error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("path has no nodes")
	}
	if len(p.Relations) != len(p.Nodes)-1 {
		return fmt.Errorf("path has %d nodes but %d relations", len(p.Nodes), len(p.Relations))
	}
	for _, r := range p.Relations {
		if !r.Valid() {
			return fmt.Errorf("path contains unknown relation type: %s", r)
		}
	}
	return nil
}

// Hops 返回路径跳数
func (p *Path) Hops() int {
	return len(p.Relations)
}

// String 渲染路径为可读文本，供提示词拼装使用
func (p *Path) String() string {
	if len(p.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(p.Nodes[0].Name)
	for i, rel := range p.Relations {
		b.WriteString(" -[")
		b.WriteString(string(rel))
		b.WriteString("]-> ")
		if i+1 < len(p.Nodes) {
			b.WriteString(p.Nodes[i+1].Name)
		}
	}
	return b.String()
}
