package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reconciler/internal/fixtures"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-reconciler/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceContext(t *testing.T, companyID string) context.Context {
	t.Helper()
	auth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := auth.Encode(map[string]interface{}{
		"user_id":    "reader-01",
		"company_id": companyID,
		"role":       string(user.RoleDevice),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestIngestScans_ReferenceFeed(t *testing.T) {
	repo := memory.NewScanEventRepository()
	svc := NewScanService(repo)
	ctx := deviceContext(t, fixtures.ReferenceCompanyID)

	resp, err := svc.IngestScans(ctx, attendance.IngestScansRequest{
		Date:   "2026-03-02",
		Events: fixtures.GetReferenceScans(),
	})
	require.NoError(t, err)

	assert.Equal(t, 15, resp.Accepted)
	assert.Zero(t, resp.Rejected)
	assert.Empty(t, resp.Diagnostics)

	stored, err := repo.ListByDate(ctx, fixtures.ReferenceCompanyID, fixtures.ReferenceDate(), nil)
	require.NoError(t, err)
	require.Len(t, stored, 15)
	for _, e := range stored {
		assert.True(t, validator.IsValidUUID(e.ID), e.ID)
		assert.Equal(t, fixtures.ReferenceCompanyID, e.CompanyID)
		require.NotNil(t, e.Schedule)
	}
}

func TestIngestScans_MalformedEventsAreRejectedIndividually(t *testing.T) {
	repo := memory.NewScanEventRepository()
	svc := NewScanService(repo)
	ctx := deviceContext(t, "c1")

	tolerance := 15
	badStart := "25:00"
	end := "17:00"
	resp, err := svc.IngestScans(ctx, attendance.IngestScansRequest{
		Date: "2026-03-02",
		Events: []attendance.RawScanEvent{
			{EmployeeID: "emp-1", Time: "08:00", Direction: "entry", Source: "rfid"},
			{EmployeeID: "emp-1", Time: "8h", Direction: "entry", Source: "rfid"},
			{EmployeeID: "emp-2", Time: "08:10", Direction: "in", Source: "rfid"},
			{EmployeeID: "emp-3", Time: "08:10", Direction: "entry", Source: "nfc"},
			{EmployeeID: "emp-4", Time: "08:10", Direction: "entry", Source: "biometric",
				ScheduleStart: &badStart, ScheduleEnd: &end, LateTolerance: &tolerance},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Accepted)
	assert.Equal(t, 3, resp.Rejected)
	require.Len(t, resp.Diagnostics, 4)
	assert.Equal(t, "malformed_event", resp.Diagnostics[0].Code)
	require.NotNil(t, resp.Diagnostics[0].EventIndex)
	assert.Equal(t, 1, *resp.Diagnostics[0].EventIndex)
	assert.Equal(t, "schedule_invalid", resp.Diagnostics[3].Code)
	assert.Equal(t, 2, repo.Len())
}

func TestIngestScans_Validation(t *testing.T) {
	svc := NewScanService(memory.NewScanEventRepository())
	ctx := deviceContext(t, "c1")

	_, err := svc.IngestScans(ctx, attendance.IngestScansRequest{Date: "2026-03-02"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "events")

	_, err = svc.IngestScans(context.Background(), attendance.IngestScansRequest{
		Date:   "2026-03-02",
		Events: fixtures.GetReferenceScans(),
	})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestIngestForCompany_AllMalformedStoresNothing(t *testing.T) {
	repo := memory.NewScanEventRepository()
	svc := NewScanService(repo)

	resp, err := svc.IngestForCompany(context.Background(), "c1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		[]attendance.RawScanEvent{{EmployeeID: "", Time: "08:00", Direction: "entry", Source: "rfid"}})
	require.NoError(t, err)

	assert.Zero(t, resp.Accepted)
	assert.Equal(t, 1, resp.Rejected)
	assert.Zero(t, repo.Len())
}

func TestIngestForCompany_EventDateOverridesFallback(t *testing.T) {
	repo := memory.NewScanEventRepository()
	svc := NewScanService(repo)
	fallback := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.IngestForCompany(context.Background(), "c1", fallback, []attendance.RawScanEvent{
		{EmployeeID: "emp-1", Date: "2026-03-01", Time: "23:58", Direction: "exit", Source: "rfid"},
	})
	require.NoError(t, err)

	events, err := repo.ListByDate(context.Background(), "c1", fallback.AddDate(0, 0, -1), nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
