package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/custos/internal/common"
)

func newTestService(t *testing.T, cfg *common.Config) *Service {
	t.Helper()
	svc, err := NewService(cfg, common.GetLogger())
	require.NoError(t, err)
	return svc
}

func TestLookup_MatchesSTRQuestion(t *testing.T) {
	svc := newTestService(t, nil)

	passages := svc.Lookup(context.Background(), "What are the STR reporting requirements?")

	require.NotEmpty(t, passages)
	assert.Equal(t, "kb-aml-str", passages[0].SourceID)
	assert.Contains(t, passages[0].Text, "7 days")
}

func TestLookup_CaseInsensitive(t *testing.T) {
	svc := newTestService(t, nil)

	lower := svc.Lookup(context.Background(), "what is circular trading?")
	upper := svc.Lookup(context.Background(), "WHAT IS CIRCULAR TRADING?")

	require.NotEmpty(t, lower)
	assert.Equal(t, lower[0].SourceID, upper[0].SourceID)
	assert.Equal(t, "kb-trading-circular", lower[0].SourceID)
}

func TestLookup_NoMatchReturnsEmpty(t *testing.T) {
	svc := newTestService(t, nil)

	passages := svc.Lookup(context.Background(), "what is the weather in sydney today?")

	assert.Empty(t, passages)
}

func TestLookup_OrderedByMatchStrength(t *testing.T) {
	svc := newTestService(t, nil)

	passages := svc.Lookup(context.Background(), "How long must AML records be retained?")

	require.NotEmpty(t, passages)
	assert.Equal(t, "kb-aml-retention", passages[0].SourceID)
	for i := 1; i < len(passages); i++ {
		assert.GreaterOrEqual(t, passages[i-1].Confidence, passages[i].Confidence)
	}
}

func TestNewService_MergesEntriesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entries.yaml")
	content := `entries:
  - id: kb-aml-str
    category: aml
    title: STR filing (local policy)
    text: Local policy requires STR filing within 3 days.
    keywords: [str, suspicious]
  - id: kb-custom-sanctions
    category: aml
    title: Sanctions screening
    text: All payments must be screened against sanctions lists before release.
    keywords: [sanctions, screening]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := common.NewDefaultConfig()
	cfg.Knowledge.EntriesFile = path
	svc := newTestService(t, cfg)

	passages := svc.Lookup(context.Background(), "When must an STR be filed?")
	require.NotEmpty(t, passages)
	assert.Equal(t, "kb-aml-str", passages[0].SourceID)
	assert.Contains(t, passages[0].Text, "3 days")

	sanctions := svc.Lookup(context.Background(), "Do we run sanctions screening on payments?")
	require.NotEmpty(t, sanctions)
	assert.Equal(t, "kb-custom-sanctions", sanctions[0].SourceID)
}

func TestNewService_RejectsEntryWithoutID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - title: no id\n    text: something\n"), 0o644))

	cfg := common.NewDefaultConfig()
	cfg.Knowledge.EntriesFile = path

	_, err := NewService(cfg, common.GetLogger())
	assert.Error(t, err)
}

func TestTopics_CoversAllCategories(t *testing.T) {
	svc := newTestService(t, nil)

	topics := svc.Topics()

	for _, category := range []string{"aml", "trading", "kyc", "reporting"} {
		assert.NotEmpty(t, topics[category], "category %s should have sample questions", category)
	}
}
