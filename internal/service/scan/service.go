package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type ScanServiceImpl struct {
	attendance.ScanEventRepository
	now func() time.Time
}

func NewScanService(scanEventRepo attendance.ScanEventRepository) *ScanServiceImpl {
	return &ScanServiceImpl{
		ScanEventRepository: scanEventRepo,
		now:                 time.Now,
	}
}

// IngestScans implements attendance.ScanService.
func (s *ScanServiceImpl) IngestScans(ctx context.Context, req attendance.IngestScansRequest) (attendance.IngestScansResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.IngestScansResponse{}, err
	}

	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return attendance.IngestScansResponse{}, user.ErrInvalidToken
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return attendance.IngestScansResponse{}, user.ErrCompanyIDRequired
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	return s.IngestForCompany(ctx, companyID, date, req.Events)
}

// IngestForCompany validates and stores a raw batch for companyID. Events
// without a date of their own are filed under fallbackDate. Malformed events
// are reported, never stored; the rest are stored in one batch.
func (s *ScanServiceImpl) IngestForCompany(ctx context.Context, companyID string, fallbackDate time.Time, raws []attendance.RawScanEvent) (attendance.IngestScansResponse, error) {
	if companyID == "" {
		return attendance.IngestScansResponse{}, user.ErrCompanyIDRequired
	}

	events, diags := attendance.ParseScanEvents(companyID, fallbackDate, raws)

	now := s.now().UTC()
	for i := range events {
		events[i].ID = uuid.Must(uuid.NewV7()).String()
		events[i].CreatedAt = now
	}

	if len(events) > 0 {
		if err := s.ScanEventRepository.CreateBatch(ctx, events); err != nil {
			return attendance.IngestScansResponse{}, fmt.Errorf("failed to store scan events: %w", err)
		}
	}

	rejected := 0
	for _, d := range diags {
		if d.Code == attendance.DiagnosticMalformedEvent {
			rejected++
		}
	}

	if len(diags) > 0 {
		slog.Warn("Scan batch ingested with diagnostics",
			"company_id", companyID,
			"accepted", len(events),
			"rejected", rejected,
			"diagnostics", len(diags),
		)
	}

	return attendance.IngestScansResponse{
		Accepted:    len(events),
		Rejected:    rejected,
		Diagnostics: attendance.NewDiagnosticResponses(diags),
	}, nil
}

var _ attendance.ScanService = (*ScanServiceImpl)(nil)
