package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "Token is not scoped to a company")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrDateRequired):
		BadRequest(w, "Report date is required", nil)
	case errors.Is(err, attendance.ErrEmptyBatch):
		BadRequest(w, "Scan batch is empty", nil)
	case errors.Is(err, attendance.ErrSnapshotNotFound):
		NotFound(w, "Attendance snapshot not found")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrInvalidSchedule),
		errors.Is(err, schedule.ErrAssignmentTargetNeeded):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
