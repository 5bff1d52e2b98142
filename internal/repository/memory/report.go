package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
)

type ReportRepository struct {
	mu        sync.RWMutex
	snapshots map[string]attendance.Snapshot
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		snapshots: make(map[string]attendance.Snapshot),
	}
}

func snapshotKey(companyID string, date time.Time) string {
	return companyID + "/" + date.Format("2006-01-02")
}

func (r *ReportRepository) Upsert(_ context.Context, snapshot attendance.Snapshot) error {
	key := snapshotKey(snapshot.CompanyID, snapshot.Date)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.snapshots[key]; ok {
		snapshot.CreatedAt = prev.CreatedAt
	}
	r.snapshots[key] = snapshot
	return nil
}

func (r *ReportRepository) GetByDate(_ context.Context, companyID string, date time.Time) (attendance.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[snapshotKey(companyID, date)]
	if !ok {
		return attendance.Snapshot{}, attendance.ErrSnapshotNotFound
	}
	return snapshot, nil
}
