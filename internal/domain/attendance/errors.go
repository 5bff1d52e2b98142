package attendance

import "errors"

// Attendance domain errors
var (
	// Invocation errors
	ErrDateRequired      = errors.New("report date is required")
	ErrInvalidDateRange  = errors.New("end_date must not be before start_date")
	ErrDateRangeTooLarge = errors.New("date range is too large")

	// Scan event errors, wrapped into malformed_event diagnostics
	ErrInvalidEmployeeID = errors.New("invalid employee id")
	ErrInvalidScanTime   = errors.New("invalid scan time")
	ErrInvalidDirection  = errors.New("direction must be entry or exit")
	ErrInvalidSource     = errors.New("source must be rfid or biometric")
	ErrEventOutsideDate  = errors.New("event is dated outside the report date")

	// Storage errors
	ErrSnapshotNotFound = errors.New("attendance snapshot not found")
	ErrEmptyBatch       = errors.New("scan batch is empty")
)
