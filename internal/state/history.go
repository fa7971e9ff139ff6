package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dlange/brdgen/pkg/models"
)

// RunRecord is one persisted pipeline run.
type RunRecord struct {
	ID           string
	Query        string
	Status       models.MessageStatus
	ElapsedSec   float64
	InputTokens  int64
	OutputTokens int64
	CostEstimate float64
	WarningCount int
	StartedAt    time.Time
}

// MessageRecord is one persisted agent message, without its content.
type MessageRecord struct {
	AgentID      string
	Kind         models.AgentKind
	Status       models.MessageStatus
	DurationMS   float64
	ContentBytes int
}

// SaveResult persists a finished run and its per-agent messages. Message
// content is not stored; only sizes and statuses survive the run.
func (db *DB) SaveResult(query string, startedAt time.Time, result models.ExecutionResult) error {
	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, query, status, elapsed_sec, input_tokens,
				output_tokens, cost_estimate, warning_count, started_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, result.ExecutionID, query, string(result.Status), result.ElapsedSec,
			result.TokenSummary.TotalInputTokens, result.TokenSummary.TotalOutputTokens,
			result.TokenSummary.TotalCostEstimate, len(result.Warnings), formatTime(startedAt))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for seq, m := range result.Messages {
			_, err := tx.Exec(`
				INSERT INTO run_messages (run_id, seq, agent_id, kind, status,
					duration_ms, content_bytes)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, result.ExecutionID, seq, m.AgentID, string(m.Kind), string(m.Status),
				m.DurationMS, len(m.MarkdownContent))
			if err != nil {
				return fmt.Errorf("insert run message %d: %w", seq, err)
			}
		}
		return nil
	})
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, query, status, elapsed_sec, input_tokens, output_tokens,
			cost_estimate, warning_count, started_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var status, startedAt string
		if err := rows.Scan(&r.ID, &r.Query, &status, &r.ElapsedSec,
			&r.InputTokens, &r.OutputTokens, &r.CostEstimate,
			&r.WarningCount, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Status = models.MessageStatus(status)
		if t, err := parseTime(startedAt); err == nil {
			r.StartedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RunMessages returns the persisted messages of one run in insertion order.
func (db *DB) RunMessages(runID string) ([]MessageRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT agent_id, kind, status, duration_ms, content_bytes
		FROM run_messages WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run messages: %w", err)
	}
	defer rows.Close()

	var records []MessageRecord
	for rows.Next() {
		var m MessageRecord
		var kind, status string
		if err := rows.Scan(&m.AgentID, &kind, &status, &m.DurationMS, &m.ContentBytes); err != nil {
			return nil, fmt.Errorf("scan run message: %w", err)
		}
		m.Kind = models.AgentKind(kind)
		m.Status = models.MessageStatus(status)
		records = append(records, m)
	}
	return records, rows.Err()
}
