package models

// AnswerResult is the structured output of a single answered question.
// It is created once per query, returned to the caller, and never persisted.
type AnswerResult struct {
	// The user's question, verbatim
	Question string `json:"question"`

	// Generated answer text
	Answer string `json:"answer"`

	// True when retrieved context passages were embedded in the prompt
	RAGUsed bool `json:"rag_used"`

	// Source ids of the passages actually embedded, in prompt order.
	// Empty when RAGUsed is false.
	ContextSources []string `json:"context_sources"`

	// ISO-8601 timestamp of when the answer was assembled
	Timestamp string `json:"timestamp"`
}
