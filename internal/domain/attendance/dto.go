package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
)

const (
	// MaxSummaryRangeDays bounds the range a summary reconciles in one request.
	MaxSummaryRangeDays = 62
	// MaxIngestBatch bounds the number of events accepted in one ingest call.
	MaxIngestBatch = 5000
)

// ========================================
// SCAN EVENT DTOs
// ========================================

// RawScanEvent is a scan as delivered by a reader, before validation.
type RawScanEvent struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	Department    string  `json:"department"`
	Date          string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to the batch date
	Time          string  `json:"time"`           // HH:MM
	Direction     string  `json:"direction"`
	Source        string  `json:"source"`
	ScheduleStart *string `json:"schedule_start,omitempty"` // HH:MM
	ScheduleEnd   *string `json:"schedule_end,omitempty"`   // HH:MM
	LateTolerance *int    `json:"late_tolerance,omitempty"` // minutes
}

func (r *RawScanEvent) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id may only contain letters, digits, '.', '_', ':' and '-'",
		})
	}

	if r.Date != "" {
		if _, valid := validator.IsValidDate(r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if _, valid := validator.IsValidClock(r.Time); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "time",
			Message: "time must be in HH:MM format",
		})
	}

	if !validator.IsInSlice(strings.ToLower(r.Direction), DirectionValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "direction",
			Message: "direction must be one of: entry, exit",
		})
	}

	if !validator.IsInSlice(strings.ToLower(r.Source), SourceValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of: rfid, biometric",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// HasSchedule reports whether the device sent any schedule field.
func (r *RawScanEvent) HasSchedule() bool {
	return r.ScheduleStart != nil || r.ScheduleEnd != nil || r.LateTolerance != nil
}

// Schedule builds the inline schedule. It returns (nil, nil) when no schedule
// field is present and an error when the fields are partial or inconsistent.
func (r *RawScanEvent) Schedule() (*schedule.Schedule, error) {
	if !r.HasSchedule() {
		return nil, nil
	}
	if r.ScheduleStart == nil || r.ScheduleEnd == nil || r.LateTolerance == nil {
		return nil, fmt.Errorf("%w: schedule_start, schedule_end and late_tolerance must be sent together", schedule.ErrInvalidSchedule)
	}
	start, err := utils.ParseClock(*r.ScheduleStart)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule_start: %v", schedule.ErrInvalidSchedule, err)
	}
	end, err := utils.ParseClock(*r.ScheduleEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule_end: %v", schedule.ErrInvalidSchedule, err)
	}
	s := schedule.Schedule{
		StartMinute:          start,
		EndMinute:            end,
		LateToleranceMinutes: *r.LateTolerance,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToScanEvent converts a validated raw event. fallbackDate is used when the
// event carries no date of its own.
func (r *RawScanEvent) ToScanEvent(companyID string, fallbackDate time.Time) (ScanEvent, error) {
	if err := r.Validate(); err != nil {
		return ScanEvent{}, err
	}

	date := fallbackDate
	if r.Date != "" {
		date, _ = validator.IsValidDate(r.Date)
	}
	minute, _ := validator.IsValidClock(r.Time)

	return ScanEvent{
		CompanyID:    companyID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: strings.TrimSpace(r.EmployeeName),
		Department:   strings.TrimSpace(r.Department),
		Date:         date,
		Minute:       minute,
		Direction:    Direction(strings.ToLower(r.Direction)),
		Source:       Source(strings.ToLower(r.Source)),
	}, nil
}

// ParseScanEvents validates a raw feed. Malformed events are dropped with a
// malformed_event diagnostic; an unusable inline schedule keeps the event
// but drops the schedule with a schedule_invalid diagnostic.
func ParseScanEvents(companyID string, fallbackDate time.Time, raws []RawScanEvent) ([]ScanEvent, []Diagnostic) {
	events := make([]ScanEvent, 0, len(raws))
	var diags []Diagnostic

	for i := range raws {
		idx := i
		raw := raws[i]

		evt, err := raw.ToScanEvent(companyID, fallbackDate)
		if err != nil {
			diags = append(diags, Diagnostic{
				Code:       DiagnosticMalformedEvent,
				EmployeeID: raw.EmployeeID,
				EventIndex: &idx,
				Message:    err.Error(),
			})
			continue
		}

		sched, err := raw.Schedule()
		if err != nil {
			diags = append(diags, Diagnostic{
				Code:       DiagnosticScheduleInvalid,
				EmployeeID: raw.EmployeeID,
				EventIndex: &idx,
				Message:    err.Error(),
			})
		}
		evt.Schedule = sched
		events = append(events, evt)
	}

	return events, diags
}

// ========================================
// REQUEST DTOs
// ========================================

type DailyReportRequest struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Source     *string `json:"source,omitempty"`
	Department *string `json:"department,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (r *DailyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Source != nil && !validator.IsInSlice(*r.Source, SourceValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of: rfid, biometric",
		})
	}

	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, late, left_early, unclassified",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ReportDate returns the parsed date. Only valid after Validate succeeded.
func (r *DailyReportRequest) ReportDate() time.Time {
	d, _ := validator.IsValidDate(r.Date)
	return d
}

type SummaryRequest struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Department *string `json:"department,omitempty"`
}

func (r *SummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required in YYYY-MM-DD format",
		})
	}

	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrInvalidDateRange.Error(),
			})
		} else if days := int(end.Sub(start).Hours()/24) + 1; days > MaxSummaryRangeDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: fmt.Sprintf("%s: at most %d days", ErrDateRangeTooLarge, MaxSummaryRangeDays),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Dates lists every date of the range, inclusive. Only valid after Validate succeeded.
func (r *SummaryRequest) Dates() []time.Time {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

type SnapshotRequest struct {
	Date string `json:"date"`
}

func (r *SnapshotRequest) Validate() error {
	if _, valid := validator.IsValidDate(r.Date); !valid {
		return validator.ValidationErrors{{
			Field:   "date",
			Message: "date is required in YYYY-MM-DD format",
		}}
	}
	return nil
}

// ReportDate returns the parsed date. Only valid after Validate succeeded.
func (r *SnapshotRequest) ReportDate() time.Time {
	d, _ := validator.IsValidDate(r.Date)
	return d
}

type IngestScansRequest struct {
	Date   string         `json:"date"` // default date for events without one
	Events []RawScanEvent `json:"events"`
}

func (r *IngestScansRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required in YYYY-MM-DD format",
		})
	}

	if len(r.Events) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "events",
			Message: "events must contain at least one scan",
		})
	} else if len(r.Events) > MaxIngestBatch {
		errs = append(errs, validator.ValidationError{
			Field:   "events",
			Message: fmt.Sprintf("events must not exceed %d scans per batch", MaxIngestBatch),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type RecordResponse struct {
	ID                    string  `json:"id"`
	EmployeeID            string  `json:"employee_id"`
	EmployeeName          string  `json:"employee_name"`
	Department            string  `json:"department"`
	Date                  string  `json:"date"`
	EntryTime             *string `json:"entry_time"`
	ExitTime              *string `json:"exit_time"`
	Status                string  `json:"status"`
	LateMinutes           int     `json:"late_minutes"`
	EarlyDepartureMinutes int     `json:"early_departure_minutes"`
	Source                string  `json:"source,omitempty"`
	IsDoubleBadge         bool    `json:"is_double_badge"`
	IgnoredBadges         int     `json:"ignored_badges"`
	Notes                 string  `json:"notes"`
	ScheduleMissing       bool    `json:"schedule_missing,omitempty"`
	Anomaly               *string `json:"anomaly,omitempty"`
}

type DiagnosticResponse struct {
	Code       string `json:"code"`
	EmployeeID string `json:"employee_id,omitempty"`
	EventIndex *int   `json:"event_index,omitempty"`
	Message    string `json:"message"`
}

type DailyReportResponse struct {
	Date             string               `json:"date"`
	TotalEmployees   int                  `json:"total_employees"`
	Present          int                  `json:"present"`
	Absent           int                  `json:"absent"`
	Late             int                  `json:"late"`
	EarlyDepartures  int                  `json:"early_departures"`
	Unclassified     int                  `json:"unclassified"`
	DoubleBadgeCount int                  `json:"double_badge_count"`
	AverageEntryTime string               `json:"average_entry_time"`
	Records          []RecordResponse     `json:"records"`
	Diagnostics      []DiagnosticResponse `json:"diagnostics"`
}

func NewRecordResponse(r Record) RecordResponse {
	resp := RecordResponse{
		ID:                    r.ID,
		EmployeeID:            r.EmployeeID,
		EmployeeName:          r.EmployeeName,
		Department:            r.Department,
		Date:                  r.Date.Format("2006-01-02"),
		EntryTime:             utils.FormatClockPtr(r.EntryMinute),
		ExitTime:              utils.FormatClockPtr(r.ExitMinute),
		Status:                string(r.Status),
		LateMinutes:           r.LateMinutes,
		EarlyDepartureMinutes: r.EarlyDepartureMinutes,
		Source:                string(r.Source),
		IsDoubleBadge:         r.IsDoubleBadge,
		IgnoredBadges:         r.IgnoredBadges,
		Notes:                 r.Notes,
		ScheduleMissing:       r.ScheduleMissing,
	}
	if r.Anomaly != nil {
		a := string(*r.Anomaly)
		resp.Anomaly = &a
	}
	return resp
}

func NewDiagnosticResponse(d Diagnostic) DiagnosticResponse {
	return DiagnosticResponse{
		Code:       string(d.Code),
		EmployeeID: d.EmployeeID,
		EventIndex: d.EventIndex,
		Message:    d.Message,
	}
}

func NewDiagnosticResponses(diags []Diagnostic) []DiagnosticResponse {
	out := make([]DiagnosticResponse, 0, len(diags))
	for _, d := range diags {
		out = append(out, NewDiagnosticResponse(d))
	}
	return out
}

func NewDailyReportResponse(report DailyReport) DailyReportResponse {
	records := make([]RecordResponse, 0, len(report.Records))
	for _, r := range report.Records {
		records = append(records, NewRecordResponse(r))
	}

	return DailyReportResponse{
		Date:             report.Date.Format("2006-01-02"),
		TotalEmployees:   report.TotalEmployees,
		Present:          report.Present,
		Absent:           report.Absent,
		Late:             report.Late,
		EarlyDepartures:  report.EarlyDepartures,
		Unclassified:     report.Unclassified,
		DoubleBadgeCount: report.DoubleBadgeCount,
		AverageEntryTime: utils.FormatClock(report.AverageEntryMinute),
		Records:          records,
		Diagnostics:      NewDiagnosticResponses(report.Diagnostics),
	}
}

type EmployeeSummaryResponse struct {
	EmployeeID                 string  `json:"employee_id"`
	EmployeeName               string  `json:"employee_name"`
	Department                 string  `json:"department"`
	TotalDays                  int     `json:"total_days"`
	PresentDays                int     `json:"present_days"`
	AbsentDays                 int     `json:"absent_days"`
	LateDays                   int     `json:"late_days"`
	LeftEarlyDays              int     `json:"left_early_days"`
	UnclassifiedDays           int     `json:"unclassified_days"`
	DoubleBadgeDays            int     `json:"double_badge_days"`
	TotalLateMinutes           int     `json:"total_late_minutes"`
	TotalEarlyDepartureMinutes int     `json:"total_early_departure_minutes"`
	AverageEntryTime           *string `json:"average_entry_time"`
	AverageExitTime            *string `json:"average_exit_time"`
}

func NewEmployeeSummaryResponse(s EmployeeSummary) EmployeeSummaryResponse {
	return EmployeeSummaryResponse{
		EmployeeID:                 s.EmployeeID,
		EmployeeName:               s.EmployeeName,
		Department:                 s.Department,
		TotalDays:                  s.TotalDays,
		PresentDays:                s.PresentDays,
		AbsentDays:                 s.AbsentDays,
		LateDays:                   s.LateDays,
		LeftEarlyDays:              s.LeftEarlyDays,
		UnclassifiedDays:           s.UnclassifiedDays,
		DoubleBadgeDays:            s.DoubleBadgeDays,
		TotalLateMinutes:           s.TotalLateMinutes,
		TotalEarlyDepartureMinutes: s.TotalEarlyDepartureMinutes,
		AverageEntryTime:           utils.FormatClockPtr(s.AverageEntryMinute),
		AverageExitTime:            utils.FormatClockPtr(s.AverageExitMinute),
	}
}

type SummaryResponse struct {
	StartDate       string                    `json:"start_date"`
	EndDate         string                    `json:"end_date"`
	Days            int                       `json:"days"`
	Employees       []EmployeeSummaryResponse `json:"employees"`
	DiagnosticCount int                       `json:"diagnostic_count"`
}

type IngestScansResponse struct {
	Accepted    int                  `json:"accepted"`
	Rejected    int                  `json:"rejected"`
	Diagnostics []DiagnosticResponse `json:"diagnostics"`
}

// ExportFile is a rendered report ready to be sent as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
