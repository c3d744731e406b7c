package retrieval

import (
	"regexp"
	"strings"

	"github.com/safishamsi/CDKG/internal/config"
	"github.com/safishamsi/CDKG/internal/domain/entity"
)

// historyWindow 指代消解只回看最近的若干轮
const historyWindow = 6

// maxExpansionKeywords 追加到查询尾部的关键词上限
const maxExpansionKeywords = 5

var (
	// capitalizedPhrase 匹配 1 到 3 个首字母大写单词组成的短语（人名、演讲标题片段）
	capitalizedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2}\b`)
	// quotedText 匹配单双引号包裹的文本
	quotedText = regexp.MustCompile(`["']([^"']{2,80})["']`)
	// byNamePattern 匹配 "by <Name>" 形式的演讲者提及
	byNamePattern = regexp.MustCompile(`\bby\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	// inTitlePattern 匹配 "in <Title>" 形式的演讲提及
	inTitlePattern = regexp.MustCompile(`\bin\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,3})`)
	// personPronoun 匹配指人代词，消解到最近提到的人名
	personPronoun = regexp.MustCompile(`\b(he|she|they|his|her|their|him|them)\b`)
	// thingPronoun 匹配指物代词，消解到最近提到的演讲标题
	thingPronoun = regexp.MustCompile(`\b(it|that|this|these|those)\b`)
)

// Expander 用对话历史补全后续轮次中的省略指代。
// 历史由调用方随请求传入，服务端不保存会话状态。
type Expander struct {
	toolIndicators []string
	domainTerms    []string
	stopWords      map[string]struct{}
}

func NewExpander(vocab config.VocabularyConfig) *Expander {
	stop := make(map[string]struct{}, len(vocab.StopWords))
	for _, w := range vocab.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Expander{
		toolIndicators: lowerAll(vocab.ToolIndicators),
		domainTerms:    vocab.DomainTerms,
		stopWords:      stop,
	}
}

// Expand 从最近几轮历史中提取实体提及并追加到查询尾部。
// 原始查询始终保留在最前；没有可追加的实体时原样返回。
func (e *Expander) Expand(query string, history []entity.ConversationTurn) (string, []string) {
	query = strings.TrimSpace(query)
	if query == "" || len(history) == 0 {
		return query, nil
	}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	// 按时间从新到旧收集提及，保证代词消解取最近的人名与标题。
	// 两词的大写短语按人名归类，三词按标题归类
	var mentions []string
	var persons []string
	var titles []string
	for i := len(window) - 1; i >= 0; i-- {
		text := window[i].Content
		for _, m := range byNamePattern.FindAllStringSubmatch(text, -1) {
			mentions = append(mentions, m[1])
			persons = append(persons, m[1])
		}
		for _, m := range inTitlePattern.FindAllStringSubmatch(text, -1) {
			mentions = append(mentions, m[1])
			titles = append(titles, m[1])
		}
		for _, m := range quotedText.FindAllStringSubmatch(text, -1) {
			t := strings.TrimSpace(m[1])
			mentions = append(mentions, t)
			titles = append(titles, t)
		}
		for _, m := range capitalizedPhrase.FindAllString(text, -1) {
			mentions = append(mentions, m)
			switch strings.Count(m, " ") {
			case 1:
				persons = append(persons, m)
			case 2:
				titles = append(titles, m)
			}
		}
	}

	var keywords []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		low := strings.ToLower(s)
		if _, dup := seen[low]; dup {
			return
		}
		// 已出现在查询中的实体不再追加
		if strings.Contains(strings.ToLower(query), low) {
			return
		}
		seen[low] = struct{}{}
		keywords = append(keywords, s)
	}

	// 代词消解：指人代词补最近人名，指物代词补最近标题
	lowerQuery := strings.ToLower(query)
	if personPronoun.MatchString(lowerQuery) && len(persons) > 0 {
		add(persons[0])
	}
	if thingPronoun.MatchString(lowerQuery) && len(titles) > 0 {
		add(titles[0])
	}
	for _, m := range mentions {
		if len(keywords) >= maxExpansionKeywords {
			break
		}
		add(m)
	}
	if len(keywords) > maxExpansionKeywords {
		keywords = keywords[:maxExpansionKeywords]
	}

	if len(keywords) == 0 {
		return query, nil
	}
	return query + " " + strings.Join(keywords, " "), keywords
}

// SearchTerms 从查询中抽取转写/关键词检索用的词项。
// 大写短语整体保留；其余按停用词过滤；
// 查询暗示提问工具或技术时追加领域词表以扩大召回。
func (e *Expander) SearchTerms(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var terms []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		low := strings.ToLower(s)
		if low == "" {
			return
		}
		if _, dup := seen[low]; dup {
			return
		}
		seen[low] = struct{}{}
		terms = append(terms, s)
	}

	for _, m := range capitalizedPhrase.FindAllString(query, -1) {
		add(m)
	}
	for _, m := range quotedText.FindAllStringSubmatch(query, -1) {
		add(m[1])
	}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, `.,!?;:"'()`)
		if len(w) < 3 {
			continue
		}
		if _, stop := e.stopWords[w]; stop {
			continue
		}
		add(w)
	}

	if containsAny(strings.ToLower(query), e.toolIndicators) {
		for _, t := range e.domainTerms {
			add(t)
		}
	}
	return terms
}
