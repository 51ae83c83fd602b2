package assistant

import (
	"fmt"
	"strings"

	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/models"
)

// PromptBuilder assembles completion requests from a question and optional
// context passages. Assembly is deterministic: the same question and passages
// always produce byte-identical requests.
type PromptBuilder struct {
	maxPassages int
	maxTokens   int
	temperature float32
}

// NewPromptBuilder creates a prompt builder. maxPassages caps how many
// passages are embedded per prompt.
func NewPromptBuilder(maxPassages, maxTokens int, temperature float32) *PromptBuilder {
	if maxPassages <= 0 {
		maxPassages = 3
	}
	return &PromptBuilder{
		maxPassages: maxPassages,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Build creates the completion request. Passages beyond the configured cap
// are dropped; the survivors keep their given order and are tagged with
// their source id so the model can cite them.
func (b *PromptBuilder) Build(question string, passages []models.Passage) *interfaces.CompletionRequest {
	embedded := passages
	if len(embedded) > b.maxPassages {
		embedded = embedded[:b.maxPassages]
	}

	if len(embedded) == 0 {
		return &interfaces.CompletionRequest{
			System: directSystemPrompt,
			Messages: []interfaces.Message{
				{Role: "user", Content: question},
			},
			MaxTokens:   b.maxTokens,
			Temperature: b.temperature,
		}
	}

	var sb strings.Builder
	sb.WriteString("Context documents:\n\n")
	for _, p := range embedded {
		sb.WriteString(fmt.Sprintf("[%s] %s\n%s\n\n", p.SourceID, p.Title, p.Text))
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)

	return &interfaces.CompletionRequest{
		System: complianceSystemPrompt,
		Messages: []interfaces.Message{
			{Role: "user", Content: sb.String()},
		},
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	}
}

// Embedded returns the passages that would be embedded for the given input,
// applying the same cap as Build.
func (b *PromptBuilder) Embedded(passages []models.Passage) []models.Passage {
	if len(passages) > b.maxPassages {
		return passages[:b.maxPassages]
	}
	return passages
}
