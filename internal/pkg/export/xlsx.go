package export

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SummarySheet     = "Summary"
	RecordsSheet     = "Records"
	DiagnosticsSheet = "Diagnostics"
)

var recordHeaders = []string{
	"Employee ID", "Employee", "Department", "Source", "Entry", "Exit",
	"Status", "Late (min)", "Early departure (min)", "Ignored badges", "Notes",
}

// DailyReportXLSX renders a daily report as a workbook with a summary sheet,
// one row per record and, when present, the diagnostics.
func DailyReportXLSX(report attendance.DailyReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, report, headerStyle); err != nil {
		return nil, err
	}
	if err := writeRecords(f, report, headerStyle); err != nil {
		return nil, err
	}
	if len(report.Diagnostics) > 0 {
		if err := writeDiagnostics(f, report, headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, report attendance.DailyReportResponse, headerStyle int) error {
	// NewFile starts with "Sheet1"
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	f.SetCellValue(SummarySheet, "A1", "DAILY ATTENDANCE REPORT")
	f.MergeCell(SummarySheet, "A1", "B1")
	f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle)
	f.SetRowHeight(SummarySheet, 1, 25)

	f.SetCellValue(SummarySheet, "A2", "Date")
	f.SetCellValue(SummarySheet, "B2", report.Date)

	f.SetCellValue(SummarySheet, "A4", "Metric")
	f.SetCellValue(SummarySheet, "B4", "Value")
	f.SetCellStyle(SummarySheet, "A4", "B4", headerStyle)

	rows := [][2]interface{}{
		{"Total employees", report.TotalEmployees},
		{"Present", report.Present},
		{"Late", report.Late},
		{"Left early", report.EarlyDepartures},
		{"Absent", report.Absent},
		{"Unclassified", report.Unclassified},
		{"Double badges", report.DoubleBadgeCount},
		{"Average entry time", report.AverageEntryTime},
	}
	for i, data := range rows {
		row := 5 + i
		f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), data[0])
		f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), data[1])
	}

	f.SetColWidth(SummarySheet, "A", "A", 25)
	f.SetColWidth(SummarySheet, "B", "B", 15)
	return nil
}

func writeRecords(f *excelize.File, report attendance.DailyReportResponse, headerStyle int) error {
	if _, err := f.NewSheet(RecordsSheet); err != nil {
		return fmt.Errorf("create records sheet: %w", err)
	}

	for i, h := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(RecordsSheet, cell, h)
		f.SetCellStyle(RecordsSheet, cell, cell, headerStyle)
	}

	for i, r := range report.Records {
		values := []interface{}{
			r.EmployeeID,
			r.EmployeeName,
			r.Department,
			r.Source,
			deref(r.EntryTime),
			deref(r.ExitTime),
			r.Status,
			r.LateMinutes,
			r.EarlyDepartureMinutes,
			r.IgnoredBadges,
			r.Notes,
		}
		if err := f.SetSheetRow(RecordsSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return fmt.Errorf("write record row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(RecordsSheet, "A", "A", 14)
	f.SetColWidth(RecordsSheet, "B", "B", 24)
	f.SetColWidth(RecordsSheet, "C", "G", 12)
	f.SetColWidth(RecordsSheet, "H", "J", 14)
	f.SetColWidth(RecordsSheet, "K", "K", 50)
	return nil
}

func writeDiagnostics(f *excelize.File, report attendance.DailyReportResponse, headerStyle int) error {
	if _, err := f.NewSheet(DiagnosticsSheet); err != nil {
		return fmt.Errorf("create diagnostics sheet: %w", err)
	}

	headers := []interface{}{"Code", "Employee ID", "Event", "Message"}
	if err := f.SetSheetRow(DiagnosticsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write diagnostics header: %w", err)
	}
	f.SetCellStyle(DiagnosticsSheet, "A1", "D1", headerStyle)

	for i, d := range report.Diagnostics {
		var event interface{}
		if d.EventIndex != nil {
			event = *d.EventIndex
		}
		values := []interface{}{d.Code, d.EmployeeID, event, d.Message}
		if err := f.SetSheetRow(DiagnosticsSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return fmt.Errorf("write diagnostic row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(DiagnosticsSheet, "A", "B", 20)
	f.SetColWidth(DiagnosticsSheet, "D", "D", 60)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
