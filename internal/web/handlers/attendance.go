package handlers

import (
	"net/http"

	"github.com/akranjan/facemark/internal/recognizer"
)

// AttendanceHandler lists today's attendance ledger.
type AttendanceHandler struct {
	client *recognizer.Client
}

func NewAttendanceHandler(client *recognizer.Client) *AttendanceHandler {
	return &AttendanceHandler{client: client}
}

// List returns today's attendance records straight from the backend.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.client.ListAttendance(r.Context())
	if err != nil {
		respondClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"attendance_records": records,
		"total_present":      len(records),
	})
}
