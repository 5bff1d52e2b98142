package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
)

const (
	// EarlyDepartureGraceMinutes is how long before the scheduled end an exit
	// still counts as on time. Unlike the late tolerance it is not per schedule.
	EarlyDepartureGraceMinutes = 15

	NoteSeparator = " | "

	noteUnjustifiedAbsence = "Unjustified absence"
	noteExitWithoutEntry   = "Exit badge without entry"
	noteScheduleMissing    = "Schedule missing"
)

func noteIgnoredBadges(n int) string {
	return fmt.Sprintf("%d badge(s) ignored (double badge)", n)
}

func noteLeftEarly(minutes int) string {
	return fmt.Sprintf("Left early by %d min", minutes)
}

// LateMinutes is how far entry falls past start plus tolerance, never negative.
func LateMinutes(entryMinute int, sched schedule.Schedule) int {
	return max(0, entryMinute-(sched.StartMinute+sched.LateToleranceMinutes))
}

// EarlyDepartureMinutes is how far exit falls before end minus the fixed
// grace, never negative. A missing exit is never early.
func EarlyDepartureMinutes(exitMinute *int, sched schedule.Schedule) int {
	if exitMinute == nil {
		return 0
	}
	return max(0, sched.EndMinute-*exitMinute-EarlyDepartureGraceMinutes)
}

// Classify builds the record of one employee from their accepted scans.
// accepted must be non-empty and belong to a single employee. A nil sched
// yields an unclassified record instead of a guessed status; an employee with
// exits but no entry is absent and flagged as an anomaly.
func Classify(date time.Time, accepted []attendance.ScanEvent, ignored int, sched *schedule.Schedule) attendance.Record {
	entry := firstOf(accepted, attendance.DirectionEntry)
	exit := firstOf(accepted, attendance.DirectionExit)

	ref := accepted[0]
	if entry != nil {
		ref = *entry
	}

	rec := attendance.Record{
		ID:            attendance.RecordID(ref.EmployeeID),
		EmployeeID:    ref.EmployeeID,
		EmployeeName:  ref.EmployeeName,
		Department:    ref.Department,
		Date:          date,
		Source:        ref.Source,
		IsDoubleBadge: ignored > 0,
		IgnoredBadges: ignored,
	}

	var notes []string
	if ignored > 0 {
		notes = append(notes, noteIgnoredBadges(ignored))
	}

	if exit != nil {
		m := exit.Minute
		rec.ExitMinute = &m
	}

	switch {
	case entry == nil:
		anomaly := attendance.AnomalyExitWithoutEntry
		rec.Status = attendance.StatusAbsent
		rec.Anomaly = &anomaly
		notes = append(notes, noteExitWithoutEntry)

	case sched == nil:
		m := entry.Minute
		rec.EntryMinute = &m
		rec.Status = attendance.StatusUnclassified
		rec.ScheduleMissing = true
		notes = append(notes, noteScheduleMissing)

	default:
		m := entry.Minute
		rec.EntryMinute = &m
		rec.LateMinutes = LateMinutes(m, *sched)
		rec.EarlyDepartureMinutes = EarlyDepartureMinutes(rec.ExitMinute, *sched)

		switch {
		case rec.LateMinutes > 0:
			rec.Status = attendance.StatusLate
		case rec.EarlyDepartureMinutes > 0:
			rec.Status = attendance.StatusLeftEarly
		default:
			rec.Status = attendance.StatusPresent
		}

		if rec.EarlyDepartureMinutes > 0 {
			notes = append(notes, noteLeftEarly(rec.EarlyDepartureMinutes))
		}
	}

	rec.Notes = strings.Join(notes, NoteSeparator)
	return rec
}

// SynthesizeAbsent builds the record of a roster employee with no scans.
func SynthesizeAbsent(date time.Time, entry attendance.RosterEntry) attendance.Record {
	return attendance.Record{
		ID:           attendance.RecordID(entry.EmployeeID),
		EmployeeID:   entry.EmployeeID,
		EmployeeName: entry.Name,
		Department:   entry.Department,
		Date:         date,
		Status:       attendance.StatusAbsent,
		Notes:        noteUnjustifiedAbsence,
	}
}
