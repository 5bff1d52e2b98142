package attendance

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestRawScanEvent_Validate(t *testing.T) {
	cases := []struct {
		name   string
		raw    RawScanEvent
		fields []string
	}{
		{"valid", RawScanEvent{EmployeeID: "emp-1", Time: "07:58", Direction: "entry", Source: "rfid"}, nil},
		{"case-insensitive enums", RawScanEvent{EmployeeID: "emp-1", Time: "07:58", Direction: "EXIT", Source: "Biometric"}, nil},
		{"missing employee", RawScanEvent{Time: "07:58", Direction: "entry", Source: "rfid"}, []string{"employee_id"}},
		{"bad time", RawScanEvent{EmployeeID: "emp-1", Time: "7h58", Direction: "entry", Source: "rfid"}, []string{"time"}},
		{"bad direction and source", RawScanEvent{EmployeeID: "emp-1", Time: "07:58", Direction: "in", Source: "nfc"}, []string{"direction", "source"}},
		{"bad date", RawScanEvent{EmployeeID: "emp-1", Date: "02/03/2026", Time: "07:58", Direction: "entry", Source: "rfid"}, []string{"date"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.raw.Validate()
			if c.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			m := verrs.ToMap()
			assert.Len(t, m, len(c.fields))
			for _, f := range c.fields {
				assert.Contains(t, m, f)
			}
		})
	}
}

func TestRawScanEvent_Schedule(t *testing.T) {
	none := RawScanEvent{}
	s, err := none.Schedule()
	assert.NoError(t, err)
	assert.Nil(t, s)

	full := RawScanEvent{ScheduleStart: strPtr("08:00"), ScheduleEnd: strPtr("17:00"), LateTolerance: intPtr(15)}
	s, err = full.Schedule()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 480, s.StartMinute)
	assert.Equal(t, 1020, s.EndMinute)
	assert.Equal(t, 15, s.LateToleranceMinutes)

	partial := RawScanEvent{ScheduleStart: strPtr("08:00")}
	_, err = partial.Schedule()
	assert.ErrorIs(t, err, schedule.ErrInvalidSchedule)

	inverted := RawScanEvent{ScheduleStart: strPtr("17:00"), ScheduleEnd: strPtr("08:00"), LateTolerance: intPtr(15)}
	_, err = inverted.Schedule()
	assert.ErrorIs(t, err, schedule.ErrInvalidSchedule)
}

func TestParseScanEvents(t *testing.T) {
	raws := []RawScanEvent{
		{EmployeeID: "emp-1", EmployeeName: " Kofi Mensah ", Department: "IT", Time: "07:58", Direction: "Entry", Source: "RFID",
			ScheduleStart: strPtr("08:00"), ScheduleEnd: strPtr("17:00"), LateTolerance: intPtr(15)},
		{EmployeeID: "emp-1", Time: "noon", Direction: "exit", Source: "rfid"},
		{EmployeeID: "emp-2", Date: "2026-03-01", Time: "23:59", Direction: "exit", Source: "biometric",
			LateTolerance: intPtr(-1)},
	}

	events, diags := ParseScanEvents("c1", day, raws)

	require.Len(t, events, 2)
	assert.Equal(t, "Kofi Mensah", events[0].EmployeeName)
	assert.Equal(t, DirectionEntry, events[0].Direction)
	assert.Equal(t, SourceRFID, events[0].Source)
	assert.Equal(t, 7*60+58, events[0].Minute)
	assert.Equal(t, day, events[0].Date)
	assert.Equal(t, "c1", events[0].CompanyID)
	require.NotNil(t, events[0].Schedule)

	assert.Equal(t, "2026-03-01", events[1].Date.Format("2006-01-02"))
	assert.Nil(t, events[1].Schedule)

	require.Len(t, diags, 2)
	assert.Equal(t, DiagnosticMalformedEvent, diags[0].Code)
	assert.Equal(t, 1, *diags[0].EventIndex)
	assert.Equal(t, DiagnosticScheduleInvalid, diags[1].Code)
	assert.Equal(t, 2, *diags[1].EventIndex)
}

func TestScanEvent_Validate(t *testing.T) {
	ok := ScanEvent{EmployeeID: "emp-1", Minute: 480, Direction: DirectionEntry, Source: SourceRFID}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Minute = 24 * 60
	assert.ErrorIs(t, bad.Validate(), ErrInvalidScanTime)

	bad = ok
	bad.Direction = "in"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDirection)

	bad = ok
	bad.Source = "nfc"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSource)

	bad = ok
	bad.EmployeeID = ""
	assert.ErrorIs(t, bad.Validate(), ErrInvalidEmployeeID)
}

func TestDailyReportRequest_Validate(t *testing.T) {
	r := DailyReportRequest{Date: "2026-03-02", Source: strPtr("rfid"), Status: strPtr("left_early")}
	require.NoError(t, r.Validate())
	assert.Equal(t, day, r.ReportDate())

	bad := DailyReportRequest{Source: strPtr("nfc"), Status: strPtr("holiday")}
	var verrs validator.ValidationErrors
	require.True(t, errors.As(bad.Validate(), &verrs))
	assert.Len(t, verrs.ToMap(), 3)
}

func TestSummaryRequest(t *testing.T) {
	r := SummaryRequest{StartDate: "2026-02-27", EndDate: "2026-03-02"}
	require.NoError(t, r.Validate())
	dates := r.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, "2026-02-27", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2026-03-02", dates[3].Format("2006-01-02"))

	single := SummaryRequest{StartDate: "2026-03-02", EndDate: "2026-03-02"}
	require.NoError(t, single.Validate())
	assert.Len(t, single.Dates(), 1)

	tooLong := SummaryRequest{StartDate: "2026-01-01", EndDate: "2026-03-04"} // 63 days
	assert.Error(t, tooLong.Validate())

	maxRange := SummaryRequest{StartDate: "2026-01-01", EndDate: "2026-03-03"} // 62 days
	assert.NoError(t, maxRange.Validate())
}

func TestIngestScansRequest_Validate(t *testing.T) {
	r := IngestScansRequest{Date: "2026-03-02", Events: []RawScanEvent{{}}}
	assert.NoError(t, r.Validate(), "individual events are checked later")

	empty := IngestScansRequest{Date: "2026-03-02"}
	assert.Error(t, empty.Validate())

	tooMany := IngestScansRequest{Date: "2026-03-02", Events: make([]RawScanEvent, MaxIngestBatch+1)}
	assert.Error(t, tooMany.Validate())
}

func TestNewDailyReportResponse_JSON(t *testing.T) {
	entry, exit := 478, 1025
	anomaly := AnomalyExitWithoutEntry
	idx := 4
	report := DailyReport{
		Date:               day,
		TotalEmployees:     2,
		Present:            1,
		Absent:             1,
		AverageEntryMinute: 478,
		Records: []Record{
			{ID: "rec-emp-1", EmployeeID: "emp-1", Date: day, EntryMinute: &entry, ExitMinute: &exit,
				Status: StatusPresent, Source: SourceRFID, IsDoubleBadge: true, IgnoredBadges: 1},
			{ID: "rec-emp-2", EmployeeID: "emp-2", Date: day, ExitMinute: &exit, Status: StatusAbsent,
				Source: SourceRFID, Anomaly: &anomaly},
		},
		Diagnostics: []Diagnostic{{Code: DiagnosticExitWithoutEntry, EmployeeID: "emp-2", EventIndex: &idx, Message: "x"}},
	}

	b, err := json.Marshal(NewDailyReportResponse(report))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "2026-03-02", got["date"])
	assert.Equal(t, "07:58", got["average_entry_time"])

	records := got["records"].([]interface{})
	first := records[0].(map[string]interface{})
	assert.Equal(t, "07:58", first["entry_time"])
	assert.Equal(t, "17:05", first["exit_time"])
	assert.Equal(t, true, first["is_double_badge"])
	assert.NotContains(t, first, "anomaly")

	second := records[1].(map[string]interface{})
	assert.Nil(t, second["entry_time"])
	assert.Equal(t, "exit_without_entry", second["anomaly"])

	diags := got["diagnostics"].([]interface{})
	assert.Equal(t, float64(4), diags[0].(map[string]interface{})["event_index"])
}

func TestNewDailyReportResponse_EmptyListsAreArrays(t *testing.T) {
	b, err := json.Marshal(NewDailyReportResponse(DailyReport{Date: day}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"records":[]`)
	assert.Contains(t, string(b), `"diagnostics":[]`)
	assert.Contains(t, string(b), `"average_entry_time":"00:00"`)
}
