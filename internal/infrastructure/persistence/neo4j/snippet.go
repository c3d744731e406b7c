package neo4j

import (
	"strings"
)

// boundarySearch 句边界回退搜索的半径
const boundarySearch = 150

// overlapThreshold 片段判重的词重叠率阈值
const overlapThreshold = 0.5

// Snippet 从转写全文提取的一个片段
type Snippet struct {
	// Text 修剪后的片段文本
	Text string
	// Offset 匹配词在全文中的字符位置
	Offset int
	// Term 命中的检索词
	Term string
}

// ExtractSnippets 在转写全文中查找词项并提取至多 maxSnippets 个片段。
// 每个片段以匹配位置为中心取 radius 半径，再向句边界修剪；
// 词重叠率过高的片段视为重复丢弃。
func ExtractSnippets(transcript string, terms []string, radius, maxSnippets int) []Snippet {
	if transcript == "" || len(terms) == 0 || maxSnippets <= 0 {
		return nil
	}
	if radius <= 0 {
		radius = 800
	}

	lower := strings.ToLower(transcript)

	var snippets []Snippet
	for _, term := range terms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		searchFrom := 0
		for len(snippets) < maxSnippets {
			idx := strings.Index(lower[searchFrom:], t)
			if idx < 0 {
				break
			}
			pos := searchFrom + idx
			searchFrom = pos + len(t)

			text := extractWindow(transcript, pos, radius)
			if text == "" {
				continue
			}
			if isDuplicate(text, snippets) {
				continue
			}
			snippets = append(snippets, Snippet{
				Text:   text,
				Offset: pos,
				Term:   term,
			})
		}
		if len(snippets) >= maxSnippets {
			break
		}
	}
	return snippets
}

// extractWindow 取匹配位置前后 radius 个字符并修剪到句边界
func extractWindow(text string, pos, radius int) string {
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(text) {
		end = len(text)
	}

	trimmedStart := start
	if start > 0 {
		// 向后找最近的句末，避免从句中间开始
		if b := findBoundaryAfter(text, start); b >= 0 && b < pos {
			trimmedStart = b + 1
		}
	}
	trimmedEnd := end
	if end < len(text) {
		// 向前找最近的句末，避免在句中间截断
		if b := findBoundaryBefore(text, end); b > pos {
			trimmedEnd = b + 1
		}
	}

	out := strings.TrimSpace(text[trimmedStart:trimmedEnd])
	if out == "" {
		return ""
	}
	if trimmedStart > 0 && trimmedStart == start {
		out = "..." + out
	}
	if trimmedEnd < len(text) && trimmedEnd == end {
		out = out + "..."
	}
	return out
}

// findBoundaryAfter 从 from 起向后在有限范围内找第一个句末标点
func findBoundaryAfter(text string, from int) int {
	limit := from + boundarySearch
	if limit > len(text) {
		limit = len(text)
	}
	for i := from; i < limit; i++ {
		if isSentenceEnd(text[i]) {
			return i
		}
	}
	return -1
}

// findBoundaryBefore 从 to 起向前在有限范围内找最近的句末标点
func findBoundaryBefore(text string, to int) int {
	limit := to - boundarySearch
	if limit < 0 {
		limit = 0
	}
	for i := to - 1; i >= limit; i-- {
		if isSentenceEnd(text[i]) {
			return i
		}
	}
	return -1
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// isDuplicate 词重叠率超过阈值视为重复
func isDuplicate(text string, existing []Snippet) bool {
	words := wordSet(text)
	for _, s := range existing {
		other := wordSet(s.Text)
		if overlapRatio(words, other) > overlapThreshold {
			return true
		}
	}
	return false
}

func wordSet(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, `.,!?;:"'()`)
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

// overlapRatio 交集大小除以较大集合的大小
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return float64(inter) / float64(max)
}
