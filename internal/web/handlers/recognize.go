package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/akranjan/facemark/internal/attendance"
	"github.com/akranjan/facemark/internal/frame"
	"github.com/akranjan/facemark/internal/recognizer"
)

// RecognizeHandler handles attendance capture submissions. Each successful
// recognition runs through the reconciler; the response carries the
// classified lists, the refreshed ledger and the drained notifications.
type RecognizeHandler struct {
	client     *recognizer.Client
	reconciler *attendance.Reconciler
	collector  *attendance.Collector
}

func NewRecognizeHandler(client *recognizer.Client, reconciler *attendance.Reconciler, collector *attendance.Collector) *RecognizeHandler {
	return &RecognizeHandler{
		client:     client,
		reconciler: reconciler,
		collector:  collector,
	}
}

type recognizeRequest struct {
	Image string `json:"image"` // base64 data URI from a canvas capture
}

// Recognize submits one frame and reconciles the result.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFrame(w, r)
	if !ok {
		return
	}

	result, err := h.client.Recognize(r.Context(), f)
	if err != nil {
		// A failed call must not touch the accumulated lists.
		h.collector.Error(fmt.Sprintf("Recognition failed: %v", err))
		h.respondTransportFailure(w, err)
		return
	}

	summary := h.reconciler.Apply(r.Context(), result)

	respondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"newly_recognized": orEmpty(summary.NewlyRecognized),
		"already_present":  orEmpty(summary.AlreadyPresent),
		"no_match":         summary.NoMatch,
		"detected_faces":   result.DetectedFaces,
		"history": map[string]any{
			"recognized":      orEmpty(h.reconciler.RecentRecognized()),
			"already_present": orEmpty(h.reconciler.RecentDuplicates()),
		},
		"attendance":    h.reconciler.Ledger(),
		"notifications": h.collector.Drain(),
	})
}

// Test submits one frame without reconciling, for the professor's test
// surface. History and ledger stay untouched.
func (h *RecognizeHandler) Test(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFrame(w, r)
	if !ok {
		return
	}

	result, err := h.client.Recognize(r.Context(), f)
	if err != nil {
		h.respondTransportFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"candidates":      orEmpty(result.Candidates),
		"already_present": orEmpty(result.AlreadyPresent),
		"detected_faces":  result.DetectedFaces,
		"message":         result.Message,
	})
}

// History returns the accumulated session lists and the cached ledger.
func (h *RecognizeHandler) History(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"recognized":      orEmpty(h.reconciler.RecentRecognized()),
		"already_present": orEmpty(h.reconciler.RecentDuplicates()),
		"attendance":      h.reconciler.Ledger(),
	})
}

// ClearHistory drops the accumulated session lists.
func (h *RecognizeHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.reconciler.Clear()
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// readFrame accepts either a multipart "image" file or a JSON body with a
// base64 data URI, matching what a camera capture UI sends.
func (h *RecognizeHandler) readFrame(w http.ResponseWriter, r *http.Request) (*frame.Frame, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return nil, false
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "image field is required")
			return nil, false
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			respondError(w, http.StatusBadRequest, "could not read image")
			return nil, false
		}
		return h.decodeFrame(w, func() (*frame.Frame, error) { return frame.FromBytes(data) })
	}

	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, false
	}
	return h.decodeFrame(w, func() (*frame.Frame, error) { return frame.FromDataURI(req.Image) })
}

func (h *RecognizeHandler) decodeFrame(w http.ResponseWriter, decode func() (*frame.Frame, error)) (*frame.Frame, bool) {
	f, err := decode()
	if err != nil {
		if errors.Is(err, frame.ErrMalformedFrame) {
			respondError(w, http.StatusBadRequest, "captured frame is not a valid image")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return f, true
}

func (h *RecognizeHandler) respondTransportFailure(w http.ResponseWriter, err error) {
	var verr *recognizer.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Message)
		return
	}
	respondJSON(w, http.StatusBadGateway, map[string]any{
		"error":         err.Error(),
		"notifications": h.collector.Drain(),
	})
}

// orEmpty keeps empty candidate lists as [] instead of null in JSON.
func orEmpty(candidates []recognizer.Candidate) []recognizer.Candidate {
	if candidates == nil {
		return []recognizer.Candidate{}
	}
	return candidates
}
