package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/frame"
	"github.com/akranjan/facemark/internal/recognizer"
)

const maxUploadBytes = 64 << 20

// EnrollHandler handles student enrollment submissions.
type EnrollHandler struct {
	client   *recognizer.Client
	programs *config.ProgramsConfig
}

func NewEnrollHandler(client *recognizer.Client, programs *config.ProgramsConfig) *EnrollHandler {
	return &EnrollHandler{client: client, programs: programs}
}

// Enroll accepts the multipart enrollment form, runs the captured frames
// through the buffer's admission policy and forwards them to the backend.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	profile := recognizer.Profile{
		Name:       r.FormValue("name"),
		RollNumber: r.FormValue("roll_number"),
		Year:       r.FormValue("year"),
		Session:    r.FormValue("session"),
	}
	if profile.Name == "" || profile.RollNumber == "" {
		respondError(w, http.StatusBadRequest, "name and roll_number are required")
		return
	}
	if !h.programs.ValidYear(profile.Year) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown year %q", profile.Year))
		return
	}
	if !h.programs.ValidSession(profile.Session) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown session %q", profile.Session))
		return
	}

	buffer := frame.NewBuffer()
	for _, fh := range r.MultipartForm.File["images"] {
		file, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("could not open %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("could not read %s", fh.Filename))
			return
		}

		f, err := frame.FromBytes(data)
		if err != nil {
			if errors.Is(err, frame.ErrMalformedFrame) {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a valid image", fh.Filename))
				return
			}
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := buffer.Capture(f); err != nil {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("at most %d images are allowed", frame.MaxFrames))
			return
		}
	}

	if !buffer.CanSubmit() {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("at least %d images are required", frame.MinFrames))
		return
	}

	result, err := h.client.Enroll(r.Context(), profile, buffer.Frames())
	if err != nil {
		respondClientError(w, err)
		return
	}
	buffer.Reset()

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"student_id": result.StudentID,
		"message":    result.Message,
	})
}
