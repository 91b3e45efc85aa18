package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// reportStore implements driven.ReportStore.
type reportStore struct {
	store *Store
}

var _ driven.ReportStore = (*reportStore)(nil)

// Save stores or replaces a report. A zero CreatedAt is stamped on the
// stored copy; the caller's report is not modified.
func (s *reportStore) Save(ctx context.Context, in *domain.CorrectionReport) error {
	if in == nil || in.ID == "" {
		return domain.ErrInvalidInput
	}
	report := *in
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reports (id, source_uri, source_fingerprint, grade, applied, rolled_back,
			skipped, incomplete, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_uri = excluded.source_uri,
			source_fingerprint = excluded.source_fingerprint,
			grade = excluded.grade,
			applied = excluded.applied,
			rolled_back = excluded.rolled_back,
			skipped = excluded.skipped,
			incomplete = excluded.incomplete,
			created_at = excluded.created_at,
			body = excluded.body
	`, report.ID, report.SourceURI, report.SourceFingerprint, string(report.FinalQualityGrade),
		len(report.Applied), len(report.RolledBack), len(report.Skipped),
		boolToInt(report.Incomplete), report.CreatedAt.UTC().Format(timeLayout), string(body))

	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
func (s *reportStore) Get(ctx context.Context, id string) (*domain.CorrectionReport, error) {
	var body string
	err := s.store.db.QueryRowContext(ctx, "SELECT body FROM reports WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	var report domain.CorrectionReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("unmarshalling report %s: %w", id, err)
	}
	return &report, nil
}

// List returns report summaries, newest first.
func (s *reportStore) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_uri, grade, applied, rolled_back, skipped, incomplete, created_at
		FROM reports
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ReportSummary{}
	for rows.Next() {
		var sum domain.ReportSummary
		var grade, createdAt string
		var incomplete int
		if err := rows.Scan(&sum.ID, &sum.SourceURI, &grade, &sum.Applied, &sum.RolledBack,
			&sum.Skipped, &incomplete, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		sum.FinalQualityGrade = domain.QualityGrade(grade)
		sum.Incomplete = incomplete != 0
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			sum.CreatedAt = t
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return summaries, nil
}

// Delete removes a report.
func (s *reportStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
