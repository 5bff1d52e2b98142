package attendance

import (
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/utils"
)

// Summarize totals a series of daily reports per employee. Employees appear in
// the order they are first met across reports.
func Summarize(reports []attendance.DailyReport) []attendance.EmployeeSummary {
	type acc struct {
		summary attendance.EmployeeSummary
		entries []int
		exits   []int
	}

	byEmployee := make(map[string]*acc)
	var order []string

	for _, report := range reports {
		for _, r := range report.Records {
			a, ok := byEmployee[r.EmployeeID]
			if !ok {
				a = &acc{summary: attendance.EmployeeSummary{EmployeeID: r.EmployeeID}}
				byEmployee[r.EmployeeID] = a
				order = append(order, r.EmployeeID)
			}

			s := &a.summary
			if r.EmployeeName != "" {
				s.EmployeeName = r.EmployeeName
			}
			if r.Department != "" {
				s.Department = r.Department
			}

			s.TotalDays++
			switch r.Status {
			case attendance.StatusPresent:
				s.PresentDays++
			case attendance.StatusAbsent:
				s.AbsentDays++
			case attendance.StatusLate:
				s.LateDays++
			case attendance.StatusLeftEarly:
				s.LeftEarlyDays++
			case attendance.StatusUnclassified:
				s.UnclassifiedDays++
			}
			if r.IsDoubleBadge {
				s.DoubleBadgeDays++
			}
			s.TotalLateMinutes += r.LateMinutes
			s.TotalEarlyDepartureMinutes += r.EarlyDepartureMinutes

			if r.EntryMinute != nil {
				a.entries = append(a.entries, *r.EntryMinute)
			}
			if r.ExitMinute != nil {
				a.exits = append(a.exits, *r.ExitMinute)
			}
		}
	}

	out := make([]attendance.EmployeeSummary, 0, len(order))
	for _, id := range order {
		a := byEmployee[id]
		if len(a.entries) > 0 {
			m := utils.MeanClock(a.entries)
			a.summary.AverageEntryMinute = &m
		}
		if len(a.exits) > 0 {
			m := utils.MeanClock(a.exits)
			a.summary.AverageExitMinute = &m
		}
		out = append(out, a.summary)
	}
	return out
}
