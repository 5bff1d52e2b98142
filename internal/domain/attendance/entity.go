package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
)

type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
)

var DirectionValues = []string{string(DirectionEntry), string(DirectionExit)}

type Source string

const (
	SourceRFID      Source = "rfid"
	SourceBiometric Source = "biometric"
)

var SourceValues = []string{string(SourceRFID), string(SourceBiometric)}

type Status string

const (
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
	StatusLate      Status = "late"
	StatusLeftEarly Status = "left_early"
	// StatusUnclassified marks a record whose schedule could not be resolved.
	StatusUnclassified Status = "unclassified"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusLeftEarly),
	string(StatusUnclassified),
}

type Anomaly string

const (
	// AnomalyExitWithoutEntry flags an employee who badged out but never in.
	AnomalyExitWithoutEntry Anomaly = "exit_without_entry"
)

// ScanEvent is one badge or fingerprint read, scoped to a reporting date.
type ScanEvent struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	EmployeeName string
	Department   string
	Date         time.Time
	Minute       int // minutes since midnight
	Direction    Direction
	Source       Source
	// Schedule is the schedule the device reported alongside the scan, if any.
	Schedule  *schedule.Schedule
	CreatedAt time.Time
}

// Validate checks the fields the reconciler depends on.
func (e ScanEvent) Validate() error {
	if !validator.IsValidEmployeeID(e.EmployeeID) {
		return fmt.Errorf("%w: %q", ErrInvalidEmployeeID, e.EmployeeID)
	}
	if e.Minute < 0 || e.Minute >= utils.MinutesPerDay {
		return fmt.Errorf("%w: minute %d", ErrInvalidScanTime, e.Minute)
	}
	if !validator.IsInSlice(string(e.Direction), DirectionValues) {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, e.Direction)
	}
	if !validator.IsInSlice(string(e.Source), SourceValues) {
		return fmt.Errorf("%w: %q", ErrInvalidSource, e.Source)
	}
	return nil
}

// Record is the reconciled attendance of one employee for one date.
type Record struct {
	ID                    string
	EmployeeID            string
	EmployeeName          string
	Department            string
	Date                  time.Time
	EntryMinute           *int
	ExitMinute            *int
	Status                Status
	LateMinutes           int
	EarlyDepartureMinutes int
	// Source is empty for roster-synthesized absences.
	Source          Source
	IsDoubleBadge   bool
	IgnoredBadges   int
	Notes           string
	ScheduleMissing bool
	Anomaly         *Anomaly
}

// RecordID is the stable identifier of an employee's record within a day.
func RecordID(employeeID string) string {
	return "rec-" + employeeID
}

// RosterEntry is an employee expected to badge on the report date.
type RosterEntry struct {
	EmployeeID string
	Name       string
	Department string
}

type DiagnosticCode string

const (
	DiagnosticMalformedEvent   DiagnosticCode = "malformed_event"
	DiagnosticScheduleMissing  DiagnosticCode = "schedule_missing"
	DiagnosticScheduleInvalid  DiagnosticCode = "schedule_invalid"
	DiagnosticScheduleConflict DiagnosticCode = "schedule_conflict"
	DiagnosticExitWithoutEntry DiagnosticCode = "exit_without_entry"
	DiagnosticUnknownEmployee  DiagnosticCode = "unknown_employee"
)

// Diagnostic reports a data-quality problem found while reconciling.
// EventIndex points into the input event list when the problem belongs to one event.
type Diagnostic struct {
	Code       DiagnosticCode
	EmployeeID string
	EventIndex *int
	Message    string
}

// DailyReport aggregates every record of one date.
type DailyReport struct {
	Date               time.Time
	TotalEmployees     int
	Present            int
	Absent             int
	Late               int
	EarlyDepartures    int
	Unclassified       int
	DoubleBadgeCount   int
	AverageEntryMinute int // 0 (00:00) when nobody entered
	Records            []Record
	Diagnostics        []Diagnostic
}

// Snapshot is a persisted daily report.
type Snapshot struct {
	CompanyID string
	Date      time.Time
	Report    DailyReportResponse
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmployeeSummary totals one employee's records over a date range.
type EmployeeSummary struct {
	EmployeeID                 string
	EmployeeName               string
	Department                 string
	TotalDays                  int
	PresentDays                int
	AbsentDays                 int
	LateDays                   int
	LeftEarlyDays              int
	UnclassifiedDays           int
	DoubleBadgeDays            int
	TotalLateMinutes           int
	TotalEarlyDepartureMinutes int
	AverageEntryMinute         *int
	AverageExitMinute          *int
}
