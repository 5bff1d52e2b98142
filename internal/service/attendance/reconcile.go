package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
)

// DefaultDoubleBadgeWindowMinutes is the suppression window for repeated scans.
const DefaultDoubleBadgeWindowMinutes = 5

type Options struct {
	// DoubleBadgeWindowMinutes defaults to DefaultDoubleBadgeWindowMinutes when <= 0.
	DoubleBadgeWindowMinutes int
}

func (o Options) window() int {
	if o.DoubleBadgeWindowMinutes <= 0 {
		return DefaultDoubleBadgeWindowMinutes
	}
	return o.DoubleBadgeWindowMinutes
}

// ReconcileInput is one company's material for one date. Nothing in it is
// modified by Reconcile.
type ReconcileInput struct {
	Date        time.Time
	Events      []attendance.ScanEvent
	Roster      []attendance.RosterEntry
	Assignments []schedule.Assignment
}

// Reconcile turns a day of scans into a DailyReport.
//
// Records come out in a fixed order: employees with scans in the order they
// first appear in Events, then roster employees without scans in roster order.
// Data-quality problems become diagnostics; the only error is a missing date.
func Reconcile(in ReconcileInput, opts Options) (attendance.DailyReport, error) {
	if in.Date.IsZero() {
		return attendance.DailyReport{}, attendance.ErrDateRequired
	}
	window := opts.window()

	var diags []attendance.Diagnostic

	roster := make(map[string]attendance.RosterEntry, len(in.Roster))
	rosterOrder := make([]string, 0, len(in.Roster))
	for _, r := range in.Roster {
		if _, dup := roster[r.EmployeeID]; dup {
			continue
		}
		roster[r.EmployeeID] = r
		rosterOrder = append(rosterOrder, r.EmployeeID)
	}

	groups := make(map[string][]attendance.ScanEvent)
	var groupOrder []string
	for i, evt := range in.Events {
		if err := checkEvent(evt, in.Date); err != nil {
			idx := i
			diags = append(diags, attendance.Diagnostic{
				Code:       attendance.DiagnosticMalformedEvent,
				EmployeeID: evt.EmployeeID,
				EventIndex: &idx,
				Message:    err.Error(),
			})
			continue
		}
		if _, seen := groups[evt.EmployeeID]; !seen {
			groupOrder = append(groupOrder, evt.EmployeeID)
		}
		groups[evt.EmployeeID] = append(groups[evt.EmployeeID], evt)
	}

	resolver := newScheduleResolver(in.Date, in.Assignments)
	records := make([]attendance.Record, 0, len(groupOrder)+len(rosterOrder))

	for _, empID := range groupOrder {
		events := groups[empID]
		accepted, ignored := Deduplicate(events, window)

		rosterEntry, onRoster := roster[empID]
		department := accepted[0].Department
		if onRoster && rosterEntry.Department != "" {
			department = rosterEntry.Department
		}

		sched, schedDiags := resolver.resolve(empID, department, accepted)
		hasEntry := firstOf(accepted, attendance.DirectionEntry) != nil
		if hasEntry {
			diags = append(diags, schedDiags...)
		}

		rec := Classify(in.Date, accepted, ignored, sched)
		if onRoster {
			if rec.EmployeeName == "" {
				rec.EmployeeName = rosterEntry.Name
			}
			if rec.Department == "" {
				rec.Department = rosterEntry.Department
			}
		} else {
			diags = append(diags, attendance.Diagnostic{
				Code:       attendance.DiagnosticUnknownEmployee,
				EmployeeID: empID,
				Message:    fmt.Sprintf("employee %s badged but is not on the roster", empID),
			})
		}
		if rec.Anomaly != nil {
			diags = append(diags, attendance.Diagnostic{
				Code:       attendance.DiagnosticExitWithoutEntry,
				EmployeeID: empID,
				Message:    fmt.Sprintf("employee %s has exit scans but no entry scan", empID),
			})
		}

		records = append(records, rec)
	}

	for _, empID := range rosterOrder {
		if _, scanned := groups[empID]; scanned {
			continue
		}
		records = append(records, SynthesizeAbsent(in.Date, roster[empID]))
	}

	return Aggregate(in.Date, records, len(rosterOrder), diags), nil
}

func checkEvent(evt attendance.ScanEvent, date time.Time) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	if !evt.Date.IsZero() && evt.Date.Format("2006-01-02") != date.Format("2006-01-02") {
		return fmt.Errorf("%w: %s", attendance.ErrEventOutsideDate, evt.Date.Format("2006-01-02"))
	}
	return nil
}

// scheduleResolver picks the schedule of an employee: the one reported with
// their scans, else an employee assignment, else a department assignment.
type scheduleResolver struct {
	byEmployee   map[string]schedule.Schedule
	byDepartment map[string]schedule.Schedule
}

func newScheduleResolver(date time.Time, assignments []schedule.Assignment) scheduleResolver {
	r := scheduleResolver{
		byEmployee:   make(map[string]schedule.Schedule),
		byDepartment: make(map[string]schedule.Schedule),
	}
	for _, a := range assignments {
		if !a.ActiveOn(date) {
			continue
		}
		switch {
		case a.EmployeeID != nil:
			if _, ok := r.byEmployee[*a.EmployeeID]; !ok {
				r.byEmployee[*a.EmployeeID] = a.Schedule
			}
		case a.Department != nil:
			if _, ok := r.byDepartment[*a.Department]; !ok {
				r.byDepartment[*a.Department] = a.Schedule
			}
		}
	}
	return r
}

func (r scheduleResolver) resolve(empID, department string, accepted []attendance.ScanEvent) (*schedule.Schedule, []attendance.Diagnostic) {
	var diags []attendance.Diagnostic

	if inline := inlineSchedule(accepted); inline != nil {
		for _, evt := range accepted {
			if evt.Schedule != nil && !evt.Schedule.SameWindow(*inline) {
				diags = append(diags, attendance.Diagnostic{
					Code:       attendance.DiagnosticScheduleConflict,
					EmployeeID: empID,
					Message: fmt.Sprintf("scans of %s carry schedules %s and %s; using %s",
						empID, inline, evt.Schedule, inline),
				})
				break
			}
		}
		return r.checked(empID, *inline, diags)
	}

	if s, ok := r.byEmployee[empID]; ok {
		return r.checked(empID, s, diags)
	}
	if s, ok := r.byDepartment[department]; ok && department != "" {
		return r.checked(empID, s, diags)
	}

	diags = append(diags, attendance.Diagnostic{
		Code:       attendance.DiagnosticScheduleMissing,
		EmployeeID: empID,
		Message:    fmt.Sprintf("no schedule found for employee %s", empID),
	})
	return nil, diags
}

func (r scheduleResolver) checked(empID string, s schedule.Schedule, diags []attendance.Diagnostic) (*schedule.Schedule, []attendance.Diagnostic) {
	if err := s.Validate(); err != nil {
		diags = append(diags, attendance.Diagnostic{
			Code:       attendance.DiagnosticScheduleInvalid,
			EmployeeID: empID,
			Message:    err.Error(),
		})
		return nil, diags
	}
	return &s, diags
}

// inlineSchedule prefers the schedule reported with the accepted entry.
func inlineSchedule(accepted []attendance.ScanEvent) *schedule.Schedule {
	if entry := firstOf(accepted, attendance.DirectionEntry); entry != nil && entry.Schedule != nil {
		return entry.Schedule
	}
	for _, evt := range accepted {
		if evt.Schedule != nil {
			return evt.Schedule
		}
	}
	return nil
}
