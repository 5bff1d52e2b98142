package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/fixtures"
	sqlitestore "github.com/cmlabs-hris/attendance-reconciler/internal/repository/sqlite"
	attendanceservice "github.com/cmlabs-hris/attendance-reconciler/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedReferenceDay(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	require.NoError(t, sqlitestore.SeedReferenceDay(ctx, conn))
	// Seeding twice leaves the data untouched.
	require.NoError(t, sqlitestore.SeedReferenceDay(ctx, conn))

	events, err := sqlitestore.NewScanEventStore(conn).ListByDate(ctx, fixtures.ReferenceCompanyID, fixtures.ReferenceDate(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 15)
	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].Minute, events[i].Minute)
	}
	for _, e := range events {
		require.NotNil(t, e.Schedule, e.EmployeeID)
	}

	ids, err := sqlitestore.NewEmployeeStore(conn).ListCompanyIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{fixtures.ReferenceCompanyID}, ids)
}

func TestScanEventStore_ListByDate(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := sqlitestore.NewScanEventStore(conn)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	events := []attendance.ScanEvent{
		{ID: "e1", CompanyID: "c1", EmployeeID: "emp-1", Department: "IT", Date: day, Minute: 9 * 60, Direction: attendance.DirectionEntry, Source: attendance.SourceRFID},
		{ID: "e2", CompanyID: "c1", EmployeeID: "emp-2", Department: "RH", Date: day, Minute: 8 * 60, Direction: attendance.DirectionEntry, Source: attendance.SourceBiometric,
			Schedule: &schedule.Schedule{StartMinute: 480, EndMinute: 1020, LateToleranceMinutes: 15}},
		{ID: "e3", CompanyID: "c1", EmployeeID: "emp-1", Department: "IT", Date: day.AddDate(0, 0, 1), Minute: 8 * 60, Direction: attendance.DirectionEntry, Source: attendance.SourceRFID},
		{ID: "e4", CompanyID: "c2", EmployeeID: "emp-9", Department: "IT", Date: day, Minute: 8 * 60, Direction: attendance.DirectionEntry, Source: attendance.SourceRFID},
	}
	require.NoError(t, store.CreateBatch(ctx, events))

	got, err := store.ListByDate(ctx, "c1", day, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e2", got[0].ID)
	assert.Equal(t, "e1", got[1].ID)
	assert.Nil(t, got[1].Schedule)
	require.NotNil(t, got[0].Schedule)
	assert.Equal(t, 15, got[0].Schedule.LateToleranceMinutes)
	assert.Equal(t, attendance.SourceBiometric, got[0].Source)
	assert.Equal(t, "2026-03-02", got[0].Date.Format("2006-01-02"))

	it := "IT"
	got, err = store.ListByDate(ctx, "c1", day, &it)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	assert.ErrorIs(t, store.CreateBatch(ctx, nil), attendance.ErrEmptyBatch)
}

func TestScanEventStore_CreateBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := sqlitestore.NewScanEventStore(conn)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	ok := attendance.ScanEvent{ID: "dup", CompanyID: "c1", EmployeeID: "emp-1", Date: day, Minute: 480, Direction: attendance.DirectionEntry, Source: attendance.SourceRFID}
	// Second row violates the primary key.
	err := store.CreateBatch(ctx, []attendance.ScanEvent{ok, ok})
	require.Error(t, err)

	got, err := store.ListByDate(ctx, "c1", day, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmployeeStore_ListActive(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := sqlitestore.NewEmployeeStore(conn)

	resigned := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx,
		employee.Employee{ID: "b", CompanyID: "c1", EmployeeCode: "0002", FullName: "B", Department: "IT", EmploymentStatus: employee.EmploymentStatusActive, ResignationDate: &resigned},
		employee.Employee{ID: "a", CompanyID: "c1", EmployeeCode: "0001", FullName: "A", Department: "RH", EmploymentStatus: employee.EmploymentStatusActive},
		employee.Employee{ID: "c", CompanyID: "c1", EmployeeCode: "0003", FullName: "C", Department: "IT", EmploymentStatus: employee.EmploymentStatusInactive},
	))

	got, err := store.ListActive(ctx, "c1", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.True(t, got[0].HireDate.IsZero())
	require.NotNil(t, got[1].ResignationDate)
	assert.True(t, resigned.Equal(*got[1].ResignationDate))

	it := "IT"
	got, err = store.ListActive(ctx, "c1", &it)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	// Renaming through Upsert updates in place.
	require.NoError(t, store.Upsert(ctx, employee.Employee{ID: "a", CompanyID: "c1", EmployeeCode: "0001", FullName: "A. Renamed", Department: "RH", EmploymentStatus: employee.EmploymentStatusActive}))
	got, err = store.ListActive(ctx, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, "A. Renamed", got[0].FullName)
}

func TestScheduleStore_ListAssignments(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := sqlitestore.NewScheduleStore(conn)

	sc := schedule.Schedule{ID: "s1", CompanyID: "c1", Name: "Office", StartMinute: 480, EndMinute: 1020, LateToleranceMinutes: 15}
	require.NoError(t, store.SaveSchedule(ctx, sc))

	it := "IT"
	emp := "emp-6"
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	endFeb := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddAssignments(ctx,
		schedule.Assignment{CompanyID: "c1", ScheduleID: "s1", Department: &it, StartDate: march},
		schedule.Assignment{CompanyID: "c1", ScheduleID: "s1", EmployeeID: &emp, EndDate: &endFeb},
	))

	got, err := store.ListAssignments(ctx, "c1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Department)
	assert.Equal(t, "IT", *got[0].Department)
	assert.Nil(t, got[0].EmployeeID)
	assert.Equal(t, "Office", got[0].Schedule.Name)
	assert.Equal(t, 480, got[0].Schedule.StartMinute)
	assert.NotEmpty(t, got[0].ID)

	got, err = store.ListAssignments(ctx, "c1", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].EmployeeID)
	assert.Equal(t, "emp-6", *got[0].EmployeeID)

	assert.ErrorIs(t, store.AddAssignments(ctx, schedule.Assignment{CompanyID: "c1", ScheduleID: "s1"}), schedule.ErrAssignmentTargetNeeded)
	assert.ErrorIs(t, store.SaveSchedule(ctx, schedule.Schedule{ID: "bad", StartMinute: 600, EndMinute: 500}), schedule.ErrInvalidSchedule)
}

func TestReportStore_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := sqlitestore.NewReportStore(conn)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := store.GetByDate(ctx, "c1", day)
	assert.ErrorIs(t, err, attendance.ErrSnapshotNotFound)

	first := time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, attendance.Snapshot{
		CompanyID: "c1", Date: day, CreatedAt: first, UpdatedAt: first,
		Report: attendance.DailyReportResponse{Date: "2026-03-02", TotalEmployees: 7, Present: 3},
	}))

	second := first.Add(time.Hour)
	require.NoError(t, store.Upsert(ctx, attendance.Snapshot{
		CompanyID: "c1", Date: day, CreatedAt: second, UpdatedAt: second,
		Report: attendance.DailyReportResponse{Date: "2026-03-02", TotalEmployees: 7, Present: 4},
	}))

	got, err := store.GetByDate(ctx, "c1", day)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Report.Present)
	assert.True(t, first.Equal(got.CreatedAt))
	assert.True(t, second.Equal(got.UpdatedAt))
}

func TestSQLiteStores_ReconcileReferenceDay(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	require.NoError(t, sqlitestore.SeedReferenceDay(ctx, conn))

	reports := sqlitestore.NewReportStore(conn)
	svc := attendanceservice.NewAttendanceService(
		sqlitestore.NewScanEventStore(conn),
		reports,
		sqlitestore.NewEmployeeStore(conn),
		sqlitestore.NewScheduleStore(conn),
		attendanceservice.Options{},
	)

	resp, err := svc.SnapshotCompany(ctx, fixtures.ReferenceCompanyID, fixtures.ReferenceDate())
	require.NoError(t, err)
	assert.Equal(t, 7, resp.TotalEmployees)
	assert.Equal(t, 3, resp.Present)
	assert.Equal(t, 2, resp.Late)
	assert.Equal(t, 1, resp.EarlyDepartures)
	assert.Equal(t, 1, resp.Absent)
	assert.Equal(t, 2, resp.DoubleBadgeCount)
	assert.Equal(t, "07:56", resp.AverageEntryTime)

	stored, err := reports.GetByDate(ctx, fixtures.ReferenceCompanyID, fixtures.ReferenceDate())
	require.NoError(t, err)
	assert.Equal(t, resp, stored.Report)
}
