package badger

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// keyFileEntry is one named value in a keys TOML file.
// Format:
// [anthropic_api_key]
// value = "sk-..."
// description = "optional description"
type keyFileEntry struct {
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

// LoadKeyFiles loads API keys and variables from TOML files in the given
// directory into the KV store. Missing directory is not an error; operators
// may provide keys through config or the environment instead.
func (m *Manager) LoadKeyFiles(ctx context.Context, dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil || !info.IsDir() {
		m.logger.Debug().Str("dir", dirPath).Msg("Keys directory not found, skipping")
		return nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		m.logger.Warn().Err(err).Str("dir", dirPath).Msg("Failed to read keys directory")
		return nil
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		loaded += m.loadKeyFile(ctx, filepath.Join(dirPath, entry.Name()))
	}

	m.logger.Debug().Str("dir", dirPath).Int("loaded", loaded).Msg("Finished loading key files")
	return nil
}

func (m *Manager) loadKeyFile(ctx context.Context, filePath string) int {
	content, err := os.ReadFile(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read key file")
		return 0
	}

	var keys map[string]keyFileEntry
	if err := toml.Unmarshal(content, &keys); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse key file")
		return 0
	}

	fileName := filepath.Base(filePath)
	loaded := 0
	for name, entry := range keys {
		if entry.Value == "" {
			m.logger.Warn().Str("file", fileName).Str("key", name).Msg("Skipping key with empty value")
			continue
		}
		description := entry.Description
		if description == "" {
			description = "Loaded from " + fileName
		}
		if err := m.kv.Set(ctx, name, entry.Value, description); err != nil {
			m.logger.Error().Err(err).Str("key", name).Msg("Failed to store key")
			continue
		}
		loaded++
	}
	return loaded
}

// LoadEnvFile loads KEY=value pairs from a .env file into the KV store.
// Comments, blank lines, and quoted values are handled; a missing file is
// skipped silently.
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open .env file")
		return nil
	}
	defer file.Close()

	loaded := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if key == "" || value == "" {
			continue
		}

		if err := m.kv.Set(ctx, key, value, "Loaded from .env file"); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable from .env")
			continue
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Error reading .env file")
	}

	m.logger.Debug().Str("file", filePath).Int("loaded", loaded).Msg("Finished loading .env file")
	return nil
}
