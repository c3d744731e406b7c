package retrieval

import (
	"fmt"
	"strings"

	"github.com/safishamsi/CDKG/internal/domain/entity"
)

const systemPrompt = `You are an assistant that answers questions about conference talks, speakers, and their topics.
Answer only from the provided context. If the context does not contain the answer, say you don't know.
When quoting a speaker, quote the transcript excerpt verbatim and name the talk it comes from.
Keep answers concise and factual.`

// BuildPrompt 将融合上下文和对话历史拼装为合成提示。
// 上下文块按融合顺序编号，模型可用编号指明出处。
func BuildPrompt(query string, fused FusedContext, history []entity.ConversationTurn) string {
	var b strings.Builder

	if len(fused.Blocks) > 0 {
		b.WriteString("Context:\n")
		for i, blk := range fused.Blocks {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, compactOneLine(blk.Text))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Context: (no relevant material was found)\n\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		window := history
		if len(window) > historyWindow {
			window = window[len(window)-historyWindow:]
		}
		for _, t := range window {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, compactOneLine(t.Content))
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

func compactOneLine(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}
