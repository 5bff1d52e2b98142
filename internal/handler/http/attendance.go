package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/handler/http/response"
)

type AttendanceHandler interface {
	GetDailyReport(w http.ResponseWriter, r *http.Request)
	ExportDailyReport(w http.ResponseWriter, r *http.Request)
	GetBiometricReport(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	SnapshotDailyReport(w http.ResponseWriter, r *http.Request)
	GetSnapshot(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// optionalQuery returns nil for absent or empty query parameters
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func dailyReportRequest(r *http.Request) attendance.DailyReportRequest {
	return attendance.DailyReportRequest{
		Date:       r.URL.Query().Get("date"),
		Source:     optionalQuery(r, "source"),
		Department: optionalQuery(r, "department"),
		Status:     optionalQuery(r, "status"),
	}
}

// GetDailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetDailyReport(r.Context(), dailyReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportDailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportDailyReport(w http.ResponseWriter, r *http.Request) {
	file, err := h.attendanceService.ExportDailyReport(r.Context(), dailyReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.Filename, file.ContentType, file.Content)
}

// GetBiometricReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetBiometricReport(w http.ResponseWriter, r *http.Request) {
	req := attendance.DailyReportRequest{
		Date:       r.URL.Query().Get("date"),
		Department: optionalQuery(r, "department"),
	}

	result, err := h.attendanceService.GetBiometricReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	req := attendance.SummaryRequest{
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		Department: optionalQuery(r, "department"),
	}

	result, err := h.attendanceService.GetSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SnapshotDailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) SnapshotDailyReport(w http.ResponseWriter, r *http.Request) {
	req := attendance.SnapshotRequest{Date: r.URL.Query().Get("date")}

	result, err := h.attendanceService.SnapshotDailyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance snapshot stored", result)
}

// GetSnapshot implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	req := attendance.SnapshotRequest{Date: r.URL.Query().Get("date")}

	result, err := h.attendanceService.GetSnapshot(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
