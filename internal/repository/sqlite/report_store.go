package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Upsert(ctx context.Context, snapshot attendance.Snapshot) error {
	payload, err := json.Marshal(snapshot.Report)
	if err != nil {
		return fmt.Errorf("Upsert encode report: %w", err)
	}

	now := toMillis(snapshot.UpdatedAt)
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO daily_attendance_reports(company_id, report_date, report, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(company_id, report_date) DO UPDATE SET
  report = excluded.report,
  updated_at_ms = excluded.updated_at_ms;
`, snapshot.CompanyID, snapshot.Date.Format(dateLayout), string(payload), now, now); err != nil {
		return fmt.Errorf("Upsert daily report: %w", err)
	}
	return nil
}

func (s *ReportStore) GetByDate(ctx context.Context, companyID string, date time.Time) (attendance.Snapshot, error) {
	var (
		snap                 attendance.Snapshot
		reportDate, payload  string
		createdMs, updatedMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT company_id, report_date, report, created_at_ms, updated_at_ms
FROM daily_attendance_reports
WHERE company_id = ? AND report_date = ?;
`, companyID, date.Format(dateLayout)).Scan(&snap.CompanyID, &reportDate, &payload, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.Snapshot{}, attendance.ErrSnapshotNotFound
	}
	if err != nil {
		return attendance.Snapshot{}, fmt.Errorf("GetByDate query: %w", err)
	}

	if snap.Date, err = time.Parse(dateLayout, reportDate); err != nil {
		return attendance.Snapshot{}, fmt.Errorf("GetByDate parse date: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &snap.Report); err != nil {
		return attendance.Snapshot{}, fmt.Errorf("GetByDate decode report: %w", err)
	}
	snap.CreatedAt = fromMillis(createdMs)
	snap.UpdatedAt = fromMillis(updatedMs)
	return snap, nil
}
