package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/akranjan/facemark/internal/frame"
)

// setupMockBackend creates a mock recognition service from a handler map.
func setupMockBackend(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func testFrame(t *testing.T) *frame.Frame {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	f, err := frame.FromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("failed to build test frame: %v", err)
	}
	return f
}

func TestEnroll_SendsProfileAndFrames(t *testing.T) {
	var gotFields map[string]string
	var gotImages int

	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/register": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Fatalf("failed to parse multipart form: %v", err)
			}
			gotFields = map[string]string{
				"name":        r.FormValue("name"),
				"roll_number": r.FormValue("roll_number"),
				"year":        r.FormValue("year"),
				"session":     r.FormValue("session"),
			}
			gotImages = len(r.MultipartForm.File["images"])
			json.NewEncoder(w).Encode(map[string]any{
				"success":    true,
				"message":    "Student registered successfully",
				"student_id": "stu-1",
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	frames := make([]*frame.Frame, 5)
	for i := range frames {
		frames[i] = testFrame(t)
	}

	result, err := c.Enroll(context.Background(), Profile{
		Name:       "Jana Novak",
		RollNumber: "R42",
		Year:       "2nd Year",
		Session:    "2023-2027",
	}, frames)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	if result.StudentID != "stu-1" {
		t.Errorf("expected student ID 'stu-1', got '%s'", result.StudentID)
	}
	want := map[string]string{
		"name":        "Jana Novak",
		"roll_number": "R42",
		"year":        "2nd Year",
		"session":     "2023-2027",
	}
	if !reflect.DeepEqual(gotFields, want) {
		t.Errorf("expected form fields %v, got %v", want, gotFields)
	}
	if gotImages != 5 {
		t.Errorf("expected 5 image parts, got %d", gotImages)
	}
}

func TestEnroll_ValidationError(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/register": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Student with roll number R42 already exists",
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.Enroll(context.Background(), Profile{Name: "X", RollNumber: "R42"}, []*frame.Frame{testFrame(t)})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Student with roll number R42 already exists" {
		t.Errorf("unexpected validation message: %s", verr.Message)
	}
}

func TestRecognize_ClassifiesCandidates(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/recognize": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"recognized_students": []map[string]any{
					{"name": "Alice", "roll_number": "R1", "similarity_score": 0.91, "status": "present"},
				},
				"already_present_students": []map[string]any{
					{"name": "Bob", "roll_number": "R2", "similarity_score": 0.88},
				},
				"detected_faces":        []map[string]any{{"x": 1, "y": 2, "width": 3, "height": 4}},
				"total_found":           1,
				"total_already_present": 1,
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	result, err := c.Recognize(context.Background(), testFrame(t))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if len(result.Candidates) != 1 || result.Candidates[0].RollNumber != "R1" {
		t.Fatalf("unexpected candidates: %+v", result.Candidates)
	}
	if result.Candidates[0].Status != StatusPresent {
		t.Errorf("expected status present, got %s", result.Candidates[0].Status)
	}
	if len(result.AlreadyPresent) != 1 || result.AlreadyPresent[0].RollNumber != "R2" {
		t.Fatalf("unexpected already present list: %+v", result.AlreadyPresent)
	}
	if result.AlreadyPresent[0].Status != StatusAlreadyPresent {
		t.Errorf("already present candidate should be tagged with the already_present status")
	}
	if len(result.DetectedFaces) != 1 || result.DetectedFaces[0].Width != 3 {
		t.Errorf("unexpected detected faces: %+v", result.DetectedFaces)
	}
}

func TestRecognize_EmptyResultIsNotAnError(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/recognize": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success":                  true,
				"recognized_students":      []any{},
				"already_present_students": []any{},
				"message":                  "No students registered in the system",
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	result, err := c.Recognize(context.Background(), testFrame(t))
	if err != nil {
		t.Fatalf("empty recognition result must not be an error, got %v", err)
	}
	if len(result.Candidates) != 0 || len(result.AlreadyPresent) != 0 {
		t.Errorf("expected empty candidate lists, got %+v", result)
	}
}

func TestRecognize_TransportError(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/recognize": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.Recognize(context.Background(), testFrame(t))

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestRecognize_UnreachableBackend(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = c.Recognize(context.Background(), testFrame(t))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError for unreachable backend, got %v", err)
	}
}

func TestListStudents(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/students": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"students": []map[string]any{
					{"id": "stu-1", "name": "Alice", "roll_number": "R1", "year": "1st Year", "session": "2024-2028"},
				},
				"total_students": 1,
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	students, err := c.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if len(students) != 1 || students[0].RollNumber != "R1" {
		t.Errorf("unexpected students: %+v", students)
	}
}

func TestListAttendance_Idempotent(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/attendance": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"attendance_records": []map[string]any{
					{"student_name": "Alice", "roll_number": "R1", "time": "2026-09-01T09:00:00Z", "similarity_score": 0.9},
				},
				"total_present": 1,
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	first, err := c.ListAttendance(context.Background())
	if err != nil {
		t.Fatalf("first ListAttendance failed: %v", err)
	}
	second, err := c.ListAttendance(context.Background())
	if err != nil {
		t.Fatalf("second ListAttendance failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two consecutive ListAttendance calls differ: %+v vs %+v", first, second)
	}
}

func TestListStudents_FailureEnvelope(t *testing.T) {
	server := setupMockBackend(t, map[string]http.HandlerFunc{
		"/students": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   "database unavailable",
			})
		},
	})
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.ListStudents(context.Background())
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError for non-success envelope, got %v", err)
	}
}
