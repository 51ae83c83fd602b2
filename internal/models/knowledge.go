package models

// KnowledgeEntry is a predefined compliance reference snippet used as
// fallback context when index retrieval is unavailable or yields nothing.
type KnowledgeEntry struct {
	// Stable identifier, reported as the passage source id (e.g. "kb-aml-str")
	ID string `yaml:"id" json:"id"`

	// Compliance category: aml, kyc, trading, reporting
	Category string `yaml:"category" json:"category"`

	// Short title describing the entry
	Title string `yaml:"title" json:"title"`

	// Reference text embedded into prompts when the entry matches
	Text string `yaml:"text" json:"text"`

	// Keywords matched against the question (case-insensitive)
	Keywords []string `yaml:"keywords" json:"keywords"`
}
