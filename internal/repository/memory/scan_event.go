package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
)

// ScanEventRepository keeps scan events in process memory.
// It is intended for tests and local development.
type ScanEventRepository struct {
	mu     sync.RWMutex
	events []attendance.ScanEvent
}

func NewScanEventRepository() *ScanEventRepository {
	return &ScanEventRepository{}
}

func (r *ScanEventRepository) CreateBatch(_ context.Context, events []attendance.ScanEvent) error {
	if len(events) == 0 {
		return attendance.ErrEmptyBatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *ScanEventRepository) ListByDate(_ context.Context, companyID string, date time.Time, department *string) ([]attendance.ScanEvent, error) {
	day := date.Format("2006-01-02")

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []attendance.ScanEvent
	for _, e := range r.events {
		if e.CompanyID != companyID || e.Date.Format("2006-01-02") != day {
			continue
		}
		if department != nil && e.Department != *department {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b attendance.ScanEvent) int {
		return cmp.Compare(a.Minute, b.Minute)
	})
	return out, nil
}

// Len returns the number of stored events. Test-only helper.
func (r *ScanEventRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
