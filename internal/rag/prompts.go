package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/tmc/langchaingo/prompts"
)

var condensePrompt = prompts.NewPromptTemplate(
	`Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
{{.chat_history}}
Follow Up Input: {{.question}}
Standalone question:`,
	[]string{"chat_history", "question"},
)

var qaSystemPrompt = prompts.NewPromptTemplate(
	`Use the following pieces of context to answer the user's question.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
----------------
{{.context}}`,
	[]string{"context"},
)

// formatHistory renders turns oldest first as Human/Assistant lines.
func formatHistory(history []commonModels.ChatTurn) string {
	var b strings.Builder
	for _, turn := range history {
		if turn.IsEmpty() {
			continue
		}
		fmt.Fprintf(&b, "\nHuman: %s\nAssistant: %s", turn.Question, turn.Answer)
	}
	return b.String()
}

func joinContext(chunks []commonModels.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.Content != "" {
			parts = append(parts, c.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// sourceNames lists the distinct documents behind the retrieved chunks, best match first.
func sourceNames(chunks []commonModels.RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var out []string
	for _, c := range chunks {
		name := c.DocName
		if name == "" {
			continue
		}
		if c.PageNum > 1 {
			name = fmt.Sprintf("%s p.%d", name, c.PageNum)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
