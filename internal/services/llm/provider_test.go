package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		fallback ProviderType
		expected ProviderType
	}{
		{"claude model name", "claude-sonnet-4-20250514", ProviderGemini, ProviderClaude},
		{"claude prefix", "claude/claude-sonnet-4-20250514", ProviderGemini, ProviderClaude},
		{"anthropic prefix", "anthropic/claude-opus-4", ProviderGemini, ProviderClaude},
		{"gemini model name", "gemini-3-flash", ProviderClaude, ProviderGemini},
		{"gemini prefix", "gemini/gemini-3-flash", ProviderClaude, ProviderGemini},
		{"google prefix", "google/gemini-3-pro", ProviderClaude, ProviderGemini},
		{"empty model uses fallback", "", ProviderClaude, ProviderClaude},
		{"unknown model uses fallback", "llama-3-70b", ProviderGemini, ProviderGemini},
		{"mixed case", "Claude-Sonnet-4", ProviderGemini, ProviderClaude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectProvider(tt.model, tt.fallback))
		})
	}
}

func TestNormalizeModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", NormalizeModel("claude/claude-sonnet-4-20250514"))
	assert.Equal(t, "gemini-3-flash", NormalizeModel("google/gemini-3-flash"))
	assert.Equal(t, "claude-sonnet-4-20250514", NormalizeModel("claude-sonnet-4-20250514"))
}
