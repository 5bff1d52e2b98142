package attendance

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/utils"
)

// Aggregate computes the day-level counts over records. totalEmployees is the
// roster size, not the number of records.
func Aggregate(date time.Time, records []attendance.Record, totalEmployees int, diags []attendance.Diagnostic) attendance.DailyReport {
	report := attendance.DailyReport{
		Date:           date,
		TotalEmployees: totalEmployees,
		Records:        records,
		Diagnostics:    diags,
	}

	var entries []int
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			report.Present++
		case attendance.StatusAbsent:
			report.Absent++
		case attendance.StatusLate:
			report.Late++
		case attendance.StatusLeftEarly:
			report.EarlyDepartures++
		case attendance.StatusUnclassified:
			report.Unclassified++
		}
		if r.IsDoubleBadge {
			report.DoubleBadgeCount++
		}
		if r.EntryMinute != nil {
			entries = append(entries, *r.EntryMinute)
		}
	}
	report.AverageEntryMinute = utils.MeanClock(entries)

	return report
}

// FilterBySource keeps records from source plus every absent record.
// Counts keep describing the whole day.
func FilterBySource(report attendance.DailyReport, source attendance.Source) attendance.DailyReport {
	return filterRecords(report, func(r attendance.Record) bool {
		return r.Source == source || r.Status == attendance.StatusAbsent
	})
}

// FilterByStatus keeps records with the given status. Counts are unchanged.
func FilterByStatus(report attendance.DailyReport, status attendance.Status) attendance.DailyReport {
	return filterRecords(report, func(r attendance.Record) bool {
		return r.Status == status
	})
}

// BiometricReport restricts a report to fingerprint-sourced records and
// recomputes every count over them alone.
func BiometricReport(report attendance.DailyReport) attendance.DailyReport {
	var bio []attendance.Record
	for _, r := range report.Records {
		if r.Source == attendance.SourceBiometric {
			bio = append(bio, r)
		}
	}
	return Aggregate(report.Date, bio, len(bio), report.Diagnostics)
}

func filterRecords(report attendance.DailyReport, keep func(attendance.Record) bool) attendance.DailyReport {
	out := report
	out.Records = slices.DeleteFunc(slices.Clone(report.Records), func(r attendance.Record) bool {
		return !keep(r)
	})
	return out
}
