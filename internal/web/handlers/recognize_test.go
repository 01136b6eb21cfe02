package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akranjan/facemark/internal/attendance"
	"github.com/akranjan/facemark/internal/frame"
	"github.com/akranjan/facemark/internal/recognizer"
)

func newRecognizeHandler(t *testing.T, server *httptest.Server) *RecognizeHandler {
	t.Helper()
	client := newBackendClient(t, server)
	collector := attendance.NewCollector()
	return NewRecognizeHandler(client, attendance.NewReconciler(client, collector), collector)
}

func recognitionBackend(t *testing.T, recognized, already []map[string]any) *httptest.Server {
	t.Helper()
	return setupMockBackend(t, map[string]http.HandlerFunc{
		"/recognize": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success":                  true,
				"recognized_students":      recognized,
				"already_present_students": already,
			})
		},
		"/attendance": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success":            true,
				"attendance_records": []map[string]any{{"roll_number": "R1"}},
				"total_present":      1,
			})
		},
	})
}

func TestRecognize_ClassifiesAndNotifies(t *testing.T) {
	server := recognitionBackend(t,
		[]map[string]any{{"name": "Alice", "roll_number": "R1", "status": "present"}},
		[]map[string]any{{"name": "Bob", "roll_number": "R2"}},
	)
	defer server.Close()
	h := newRecognizeHandler(t, server)

	req := multipartRequest(t, "/recognize", nil, "image", [][]byte{testJPEGBytes(t)})
	rec := httptest.NewRecorder()
	h.Recognize(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		Success         bool                   `json:"success"`
		NewlyRecognized []recognizer.Candidate `json:"newly_recognized"`
		AlreadyPresent  []recognizer.Candidate `json:"already_present"`
		NoMatch         bool                   `json:"no_match"`
		Attendance      []map[string]any       `json:"attendance"`
		Notifications   []map[string]any       `json:"notifications"`
	}
	parseJSONResponse(t, rec, &resp)

	if len(resp.NewlyRecognized) != 1 || resp.NewlyRecognized[0].RollNumber != "R1" {
		t.Errorf("unexpected newly recognized list: %+v", resp.NewlyRecognized)
	}
	if len(resp.AlreadyPresent) != 1 || resp.AlreadyPresent[0].RollNumber != "R2" {
		t.Errorf("unexpected already present list: %+v", resp.AlreadyPresent)
	}
	if len(resp.Notifications) != 2 {
		t.Errorf("expected a success and a warning notification, got %+v", resp.Notifications)
	}
	if len(resp.Attendance) != 1 {
		t.Errorf("expected the refreshed ledger in the response, got %+v", resp.Attendance)
	}
}

func TestRecognize_JSONDataURI(t *testing.T) {
	server := recognitionBackend(t, nil, nil)
	defer server.Close()
	h := newRecognizeHandler(t, server)

	f, err := frame.FromBytes(testJPEGBytes(t))
	if err != nil {
		t.Fatalf("failed to build frame: %v", err)
	}
	body, _ := json.Marshal(map[string]string{"image": f.DataURI()})
	req := httptest.NewRequest(http.MethodPost, "/recognize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.Recognize(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var resp struct {
		NoMatch bool `json:"no_match"`
	}
	parseJSONResponse(t, rec, &resp)
	if !resp.NoMatch {
		t.Error("empty candidate lists must report a no-match outcome")
	}
}

func TestRecognize_MalformedFrame(t *testing.T) {
	server := recognitionBackend(t, nil, nil)
	defer server.Close()
	h := newRecognizeHandler(t, server)

	req := multipartRequest(t, "/recognize", nil, "image", [][]byte{[]byte("junk")})
	rec := httptest.NewRecorder()
	h.Recognize(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestRecognize_TransportFailureKeepsHistory(t *testing.T) {
	server := recognitionBackend(t,
		[]map[string]any{{"name": "Alice", "roll_number": "R1", "status": "present"}}, nil)
	h := newRecognizeHandler(t, server)

	req := multipartRequest(t, "/recognize", nil, "image", [][]byte{testJPEGBytes(t)})
	rec := httptest.NewRecorder()
	h.Recognize(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	// Kill the backend; the accumulated history must survive the failure.
	server.Close()

	req = multipartRequest(t, "/recognize", nil, "image", [][]byte{testJPEGBytes(t)})
	rec = httptest.NewRecorder()
	h.Recognize(rec, req)
	assertStatusCode(t, rec, http.StatusBadGateway)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/recognize/history", nil))
	var resp struct {
		Recognized []recognizer.Candidate `json:"recognized"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Recognized) != 1 {
		t.Errorf("history must be untouched by a transport failure, got %+v", resp.Recognized)
	}
}

func TestClearHistory(t *testing.T) {
	server := recognitionBackend(t,
		[]map[string]any{{"name": "Alice", "roll_number": "R1", "status": "present"}}, nil)
	defer server.Close()
	h := newRecognizeHandler(t, server)

	req := multipartRequest(t, "/recognize", nil, "image", [][]byte{testJPEGBytes(t)})
	rec := httptest.NewRecorder()
	h.Recognize(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	h.ClearHistory(rec, httptest.NewRequest(http.MethodDelete, "/recognize/history", nil))
	assertStatusCode(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/recognize/history", nil))
	var resp struct {
		Recognized []recognizer.Candidate `json:"recognized"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Recognized) != 0 {
		t.Errorf("expected empty history after clear, got %+v", resp.Recognized)
	}
}

func TestTest_DoesNotTouchHistory(t *testing.T) {
	server := recognitionBackend(t,
		[]map[string]any{{"name": "Alice", "roll_number": "R1", "status": "present"}}, nil)
	defer server.Close()
	h := newRecognizeHandler(t, server)

	req := multipartRequest(t, "/recognize/test", nil, "image", [][]byte{testJPEGBytes(t)})
	rec := httptest.NewRecorder()
	h.Test(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/recognize/history", nil))
	var resp struct {
		Recognized []recognizer.Candidate `json:"recognized"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Recognized) != 0 {
		t.Errorf("test recognition must not accumulate history, got %+v", resp.Recognized)
	}
}
