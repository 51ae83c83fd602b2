package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
)

// AuditLog represents a log entry for completion operations
type AuditLog struct {
	ID        string    `json:"id" badgerhold:"key"`
	Timestamp time.Time `json:"timestamp" badgerhold:"index"`
	Mode      string    `json:"mode"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
	QueryText string    `json:"query_text,omitempty"`
}

// AuditLogger defines the interface for completion audit logging
type AuditLogger interface {
	LogCompletion(mode interfaces.LLMMode, provider, model string, success bool, duration time.Duration, err error, queryText string) error
	GetLogs(limit int) ([]AuditLog, error)
	ExportToJSON(w io.Writer) error
	Close() error
}

// BadgerAuditLogger implements AuditLogger on the badger store
type BadgerAuditLogger struct {
	store      *badgerhold.Store
	logQueries bool
	logger     arbor.ILogger
}

// NewBadgerAuditLogger creates a badger-backed audit logger. When logQueries
// is false the question text is omitted from entries.
func NewBadgerAuditLogger(store *badgerhold.Store, logQueries bool, logger arbor.ILogger) *BadgerAuditLogger {
	return &BadgerAuditLogger{
		store:      store,
		logQueries: logQueries,
		logger:     logger,
	}
}

// LogCompletion records a completion call
func (l *BadgerAuditLogger) LogCompletion(mode interfaces.LLMMode, provider, model string, success bool, duration time.Duration, opErr error, queryText string) error {
	entry := AuditLog{
		ID:        common.NewAuditID(),
		Timestamp: time.Now().UTC(),
		Mode:      string(mode),
		Provider:  provider,
		Model:     model,
		Success:   success,
		Duration:  duration.Milliseconds(),
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}
	if l.logQueries {
		entry.QueryText = queryText
	}

	l.logger.Debug().
		Str("provider", provider).
		Str("model", model).
		Str("success", fmt.Sprintf("%v", success)).
		Int64("duration_ms", entry.Duration).
		Msg("Logging completion operation")

	if err := l.store.Insert(entry.ID, entry); err != nil {
		l.logger.Error().
			Err(err).
			Str("provider", provider).
			Msg("Failed to insert audit log entry")
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetLogs retrieves recent audit logs, newest first
func (l *BadgerAuditLogger) GetLogs(limit int) ([]AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []AuditLog
	query := (&badgerhold.Query{}).SortBy("Timestamp").Reverse().Limit(limit)
	if err := l.store.Find(&logs, query); err != nil {
		l.logger.Error().Err(err).Int("limit", limit).Msg("Failed to query audit logs")
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}

	l.logger.Debug().Int("count", len(logs)).Int("limit", limit).Msg("Retrieved audit logs")
	return logs, nil
}

// ExportToJSON exports all audit logs in chronological order
func (l *BadgerAuditLogger) ExportToJSON(w io.Writer) error {
	var logs []AuditLog
	query := (&badgerhold.Query{}).SortBy("Timestamp")
	if err := l.store.Find(&logs, query); err != nil {
		l.logger.Error().Err(err).Msg("Failed to query audit logs for export")
		return fmt.Errorf("failed to query audit logs for export: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(logs); err != nil {
		return fmt.Errorf("failed to encode audit logs to JSON: %w", err)
	}

	l.logger.Info().Int("count", len(logs)).Msg("Exported audit logs to JSON")
	return nil
}

// Close cleans up resources (no-op, store lifetime is owned by the manager)
func (l *BadgerAuditLogger) Close() error {
	return nil
}

// NullAuditLogger is a no-op implementation of AuditLogger used when auditing is disabled
type NullAuditLogger struct{}

// NewNullAuditLogger creates a new null audit logger
func NewNullAuditLogger() *NullAuditLogger {
	return &NullAuditLogger{}
}

// LogCompletion does nothing (no-op)
func (l *NullAuditLogger) LogCompletion(mode interfaces.LLMMode, provider, model string, success bool, duration time.Duration, err error, queryText string) error {
	return nil
}

// GetLogs returns an empty slice (no-op)
func (l *NullAuditLogger) GetLogs(limit int) ([]AuditLog, error) {
	return []AuditLog{}, nil
}

// ExportToJSON writes empty JSON array (no-op)
func (l *NullAuditLogger) ExportToJSON(w io.Writer) error {
	_, err := w.Write([]byte("[]"))
	return err
}

// Close does nothing (no-op)
func (l *NullAuditLogger) Close() error {
	return nil
}
