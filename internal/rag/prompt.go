package rag

import (
	"fmt"
	"strings"
)

// RefusalPhrase is the exact wording the model is instructed to use when the
// context does not contain the answer.
const RefusalPhrase = "I don't have that information in my knowledge base"

const systemPrompt = `You are a knowledgeable League of Legends assistant. Answer the question using ONLY the context provided below. If the answer is not in the context, say "` + RefusalPhrase + `". Do not use any outside knowledge.

Context:
%s`

const historyInstruction = `

Previous conversation:
%s

Resolve pronouns and references in the current question against the previous conversation.`

const toolResultsPrompt = `You are a knowledgeable League of Legends assistant. Answer the question using ONLY the tool results below. If the tool results do not contain the answer, say "` + RefusalPhrase + `".

Tool results:
%s`

// formatContext renders retrieved chunks as a numbered source block,
// preserving retrieval order.
func formatContext(docs []RetrievedDoc) string {
	if len(docs) == 0 {
		return "(no relevant documents found)"
	}
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "[Source %d]\n%s\n\n", i+1, d.Content)
	}
	return strings.TrimSpace(b.String())
}

// formatHistory serializes conversation turns as alternating User/Assistant
// lines.
func formatHistory(history []Turn) string {
	var b strings.Builder
	for _, t := range history {
		switch t.Role {
		case "user":
			fmt.Fprintf(&b, "User: %s\n", t.Content)
		case "assistant":
			fmt.Fprintf(&b, "Assistant: %s\n", t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// buildSystemPrompt assembles the grounding prompt, appending the history
// block when the caller supplied one.
func buildSystemPrompt(docs []RetrievedDoc, history []Turn) string {
	prompt := fmt.Sprintf(systemPrompt, formatContext(docs))
	if len(history) > 0 {
		prompt += fmt.Sprintf(historyInstruction, formatHistory(history))
	}
	return prompt
}
