// -----------------------------------------------------------------------
// Built-in knowledge base used as the fallback context source when the
// retrieval index is unavailable or returns nothing usable.
// -----------------------------------------------------------------------

package knowledge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/models"
)

// Service answers lookups against an in-memory set of compliance reference
// entries. Lookups never fail; an unmatched question yields an empty result.
type Service struct {
	entries []models.KnowledgeEntry
	logger  arbor.ILogger
}

// NewService builds the knowledge base from the built-in entries, merged with
// the optional entries file from config. File entries with an ID matching a
// built-in entry replace it.
func NewService(cfg *common.Config, logger arbor.ILogger) (*Service, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	entries := builtinEntries()

	if cfg != nil && cfg.Knowledge.EntriesFile != "" {
		loaded, err := loadEntriesFile(cfg.Knowledge.EntriesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge entries file: %w", err)
		}
		entries = mergeEntries(entries, loaded)
		logger.Info().
			Str("file", cfg.Knowledge.EntriesFile).
			Int("loaded", len(loaded)).
			Msg("Merged knowledge entries from file")
	}

	logger.Debug().Int("entries", len(entries)).Msg("Knowledge base initialized")

	return &Service{
		entries: entries,
		logger:  logger,
	}, nil
}

// Lookup returns entries whose keywords appear in the question, converted to
// passages and ordered by match strength. Matching is case-insensitive.
func (s *Service) Lookup(ctx context.Context, question string) []models.Passage {
	q := strings.ToLower(question)

	type scored struct {
		entry models.KnowledgeEntry
		score float64
	}

	var matches []scored
	for _, entry := range s.entries {
		hits := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, scored{
			entry: entry,
			score: float64(hits) / float64(len(entry.Keywords)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	passages := make([]models.Passage, 0, len(matches))
	for _, m := range matches {
		passages = append(passages, models.Passage{
			SourceID:   m.entry.ID,
			Title:      m.entry.Title,
			Text:       m.entry.Text,
			Confidence: m.score,
		})
	}

	s.logger.Debug().
		Int("matches", len(passages)).
		Msg("Knowledge base lookup complete")

	return passages
}

// Entries returns a copy of the loaded knowledge entries.
func (s *Service) Entries() []models.KnowledgeEntry {
	out := make([]models.KnowledgeEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Topics returns the sample questions grouped by compliance category.
func (s *Service) Topics() map[string][]string {
	return SampleQuestions()
}

func loadEntriesFile(path string) ([]models.KnowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Entries []models.KnowledgeEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, entry := range doc.Entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("entry %d in %s has no id", i, path)
		}
		if entry.Text == "" {
			return nil, fmt.Errorf("entry %q in %s has no text", entry.ID, path)
		}
	}

	return doc.Entries, nil
}

func mergeEntries(base, overrides []models.KnowledgeEntry) []models.KnowledgeEntry {
	byID := make(map[string]int, len(base))
	for i, entry := range base {
		byID[entry.ID] = i
	}

	merged := make([]models.KnowledgeEntry, len(base))
	copy(merged, base)

	for _, entry := range overrides {
		if i, ok := byID[entry.ID]; ok {
			merged[i] = entry
			continue
		}
		merged = append(merged, entry)
	}
	return merged
}
