package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func TestReplaceKeyReferences(t *testing.T) {
	kvMap := map[string]string{
		"anthropic_api_key":  "sk-ant-12345",
		"retrieval_endpoint": "https://search.example.com",
		"index-1":            "compliance-docs",
	}
	logger := testLogger()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single reference",
			input:    "key: {anthropic_api_key}",
			expected: "key: sk-ant-12345",
		},
		{
			name:     "multiple references",
			input:    "{retrieval_endpoint}/indexes/{index-1}/query",
			expected: "https://search.example.com/indexes/compliance-docs/query",
		},
		{
			name:     "repeated reference",
			input:    "{index-1} and {index-1}",
			expected: "compliance-docs and compliance-docs",
		},
		{
			name:     "missing key left unchanged",
			input:    "key: {unknown_key}",
			expected: "key: {unknown_key}",
		},
		{
			name:     "no references",
			input:    "plain value",
			expected: "plain value",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "malformed braces ignored",
			input:    "{not closed and not} {a valid ref}",
			expected: "{not closed and not} {a valid ref}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReplaceKeyReferences(tt.input, kvMap, logger))
		})
	}
}

func TestReplaceInStruct(t *testing.T) {
	kvMap := map[string]string{
		"anthropic_api_key": "sk-ant-12345",
		"endpoint":          "https://search.example.com",
	}
	logger := testLogger()

	type inner struct {
		Endpoint string
	}
	type outer struct {
		APIKey     string
		Inner      inner
		InnerPtr   *inner
		NilPtr     *inner
		Tags       []string
		Extras     map[string]string
		unexported string
		Number     int
	}

	target := &outer{
		APIKey:     "{anthropic_api_key}",
		Inner:      inner{Endpoint: "{endpoint}"},
		InnerPtr:   &inner{Endpoint: "{endpoint}/v2"},
		Tags:       []string{"{endpoint}", "static"},
		Extras:     map[string]string{"url": "{endpoint}"},
		unexported: "{anthropic_api_key}",
		Number:     7,
	}

	err := ReplaceInStruct(target, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-12345", target.APIKey)
	assert.Equal(t, "https://search.example.com", target.Inner.Endpoint)
	assert.Equal(t, "https://search.example.com/v2", target.InnerPtr.Endpoint)
	assert.Nil(t, target.NilPtr)
	assert.Equal(t, []string{"https://search.example.com", "static"}, target.Tags)
	assert.Equal(t, "https://search.example.com", target.Extras["url"])
	assert.Equal(t, "{anthropic_api_key}", target.unexported, "unexported fields are left alone")
	assert.Equal(t, 7, target.Number)
}

func TestReplaceInStruct_RequiresStructPointer(t *testing.T) {
	logger := testLogger()

	err := ReplaceInStruct(struct{}{}, nil, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pointer")

	s := "not a struct"
	err = ReplaceInStruct(&s, nil, logger)
	require.Error(t, err)
}

func TestReplaceInStruct_Config(t *testing.T) {
	kvMap := map[string]string{
		"retrieval_api_key": "idx-key-9",
	}
	logger := testLogger()

	config := NewDefaultConfig()
	config.Retrieval.APIKey = "{retrieval_api_key}"

	err := ReplaceInStruct(config, kvMap, logger)
	require.NoError(t, err)
	assert.Equal(t, "idx-key-9", config.Retrieval.APIKey)
}
