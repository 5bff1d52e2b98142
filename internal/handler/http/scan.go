package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/handler/http/response"
)

// maxScanBody caps an ingest request body
const maxScanBody = 8 << 20

type ScanHandler interface {
	Ingest(w http.ResponseWriter, r *http.Request)
}

type scanHandlerImpl struct {
	scanService attendance.ScanService
}

func NewScanHandler(scanService attendance.ScanService) ScanHandler {
	return &scanHandlerImpl{
		scanService: scanService,
	}
}

// Ingest implements ScanHandler.
func (h *scanHandlerImpl) Ingest(w http.ResponseWriter, r *http.Request) {
	var req attendance.IngestScansRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxScanBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode scan batch", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scanService.IngestScans(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Scan events ingested", result)
}
