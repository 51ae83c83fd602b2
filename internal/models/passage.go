package models

// Passage represents a single piece of retrieved reference context.
// Passages are produced by the retrieval index or the built-in knowledge
// base and are embedded verbatim into completion prompts.
type Passage struct {
	// Identity of the originating document or knowledge base entry
	SourceID string `json:"source_id"`

	// Optional human-readable title from the source
	Title string `json:"title,omitempty"`

	// Passage text, embedded verbatim into the prompt
	Text string `json:"text"`

	// Relevance confidence reported by the source, in [0,1]
	Confidence float64 `json:"confidence"`
}
