package services

import (
	"context"
	"log"
	"time"

	"patternhub/internal/database"
)

// Event types recorded by the analytics service
const (
	EventSearch   = "search"
	EventGenerate = "generate"
	EventLookup   = "lookup"
)

// AnalyticsService handles minimal usage tracking (non-invasive)
type AnalyticsService struct {
	db *database.DB
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *database.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// UsageEvent is a single recorded catalog operation
type UsageEvent struct {
	EventType   string    `json:"event_type"`
	PatternID   string    `json:"pattern_id,omitempty"`
	Query       string    `json:"query,omitempty"`
	ResultCount int       `json:"result_count"`
	TraceID     string    `json:"trace_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PatternUsage aggregates generate counts per pattern
type PatternUsage struct {
	PatternID string `json:"pattern_id"`
	Count     int    `json:"count"`
}

// Stats is the aggregate usage payload for the stats endpoint
type Stats struct {
	TotalSearches  int            `json:"total_searches"`
	TotalGenerates int            `json:"total_generates"`
	TopPatterns    []PatternUsage `json:"top_patterns"`
}

// Record inserts a usage event. Failures are logged, never surfaced — a
// broken analytics store must not fail a catalog request.
func (s *AnalyticsService) Record(ctx context.Context, ev UsageEvent) {
	if s == nil || s.db == nil {
		return // analytics disabled
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_events (event_type, pattern_id, query, result_count, trace_id)
		VALUES (?, ?, ?, ?, ?)
	`, ev.EventType, ev.PatternID, ev.Query, ev.ResultCount, ev.TraceID)
	if err != nil {
		log.Printf("⚠️  [ANALYTICS] Failed to record %s event: %v", ev.EventType, err)
	}
}

// GetStats aggregates recorded usage for the stats endpoint.
func (s *AnalyticsService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{TopPatterns: []PatternUsage{}}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usage_events WHERE event_type = ?`, EventSearch)
	if err := row.Scan(&stats.TotalSearches); err != nil {
		return nil, err
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usage_events WHERE event_type = ?`, EventGenerate)
	if err := row.Scan(&stats.TotalGenerates); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern_id, COUNT(*) as cnt FROM usage_events
		WHERE event_type = ? AND pattern_id != ''
		GROUP BY pattern_id ORDER BY cnt DESC LIMIT 10
	`, EventGenerate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pu PatternUsage
		if err := rows.Scan(&pu.PatternID, &pu.Count); err != nil {
			return nil, err
		}
		stats.TopPatterns = append(stats.TopPatterns, pu)
	}

	return stats, rows.Err()
}

// Prune deletes events older than the retention window. Returns the number
// of rows removed.
func (s *AnalyticsService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
