package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) attendance.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// Upsert implements attendance.ReportRepository.
func (r *reportRepositoryImpl) Upsert(ctx context.Context, snapshot attendance.Snapshot) error {
	q := GetQuerier(ctx, r.db)

	payload, err := json.Marshal(snapshot.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	query := `
		INSERT INTO daily_attendance_reports (company_id, report_date, report, created_at, updated_at)
		VALUES ($1, $2::date, $3, $4, $4)
		ON CONFLICT (company_id, report_date)
		DO UPDATE SET report = EXCLUDED.report, updated_at = EXCLUDED.updated_at
	`

	now := snapshot.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	if _, err := q.Exec(ctx, query, snapshot.CompanyID, snapshot.Date.Format("2006-01-02"), payload, now); err != nil {
		return fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return nil
}

// GetByDate implements attendance.ReportRepository.
func (r *reportRepositoryImpl) GetByDate(ctx context.Context, companyID string, date time.Time) (attendance.Snapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT company_id::text, report_date, report, created_at, updated_at
		FROM daily_attendance_reports
		WHERE company_id = $1 AND report_date = $2::date
	`

	var (
		s       attendance.Snapshot
		payload []byte
	)
	err := q.QueryRow(ctx, query, companyID, date.Format("2006-01-02")).Scan(
		&s.CompanyID, &s.Date, &payload, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Snapshot{}, attendance.ErrSnapshotNotFound
		}
		return attendance.Snapshot{}, fmt.Errorf("failed to get daily report: %w", err)
	}

	if err := json.Unmarshal(payload, &s.Report); err != nil {
		return attendance.Snapshot{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return s, nil
}
