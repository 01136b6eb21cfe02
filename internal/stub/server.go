// Package stub implements a self-contained development double of the
// recognition service. It honors the backend contract the client speaks:
// multipart register/recognize plus JSON student and attendance listings,
// with a naive embedding matcher standing in for real face recognition.
package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/akranjan/facemark/internal/recognizer"
)

const (
	minRegisterImages = 5
	maxRegisterImages = 10

	maxUploadBytes = 64 << 20
)

// Server is the stub recognition service.
type Server struct {
	store      Store
	router     *chi.Mux
	httpServer *http.Server
	now        func() time.Time
}

// NewServer creates a stub server backed by the given store.
func NewServer(store Store, host string, port int) *Server {
	r := chi.NewRouter()

	s := &Server{
		store:  store,
		router: r,
		now:    time.Now,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Minute))

	r.Get("/health", s.handleHealth)
	r.Post("/register", s.handleRegister)
	r.Post("/recognize", s.handleRecognize)
	r.Post("/detect-faces", s.handleDetectFaces)
	r.Get("/students", s.handleStudents)
	r.Get("/attendance", s.handleAttendance)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	fmt.Printf("Starting stub recognition service on %s\n", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start stub server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down stub server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	profile := recognizer.Profile{
		Name:       r.FormValue("name"),
		RollNumber: r.FormValue("roll_number"),
		Year:       r.FormValue("year"),
		Session:    r.FormValue("session"),
	}
	if profile.Name == "" || profile.RollNumber == "" || profile.Year == "" || profile.Session == "" {
		respondDetail(w, http.StatusBadRequest, "name, roll_number, year and session are required")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) < minRegisterImages || len(files) > maxRegisterImages {
		respondDetail(w, http.StatusBadRequest,
			fmt.Sprintf("please provide between %d and %d images", minRegisterImages, maxRegisterImages))
		return
	}

	embeddings := make([][]float64, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			respondDetail(w, http.StatusBadRequest, fmt.Sprintf("could not read image %s", fh.Filename))
			return
		}
		embedding, err := ComputeEmbedding(data)
		if err != nil {
			respondDetail(w, http.StatusBadRequest, fmt.Sprintf("image %s is not a valid image", fh.Filename))
			return
		}
		embeddings = append(embeddings, embedding)
	}

	student := &StudentRecord{
		ID:           uuid.NewString(),
		Name:         profile.Name,
		RollNumber:   profile.RollNumber,
		Year:         profile.Year,
		Session:      profile.Session,
		RegisteredAt: s.now(),
		Embeddings:   embeddings,
	}
	if err := s.store.CreateStudent(r.Context(), student); err != nil {
		if err == ErrDuplicateRoll {
			respondDetail(w, http.StatusBadRequest,
				fmt.Sprintf("Student with roll number %s already exists", profile.RollNumber))
			return
		}
		respondDetail(w, http.StatusInternalServerError, "could not store student")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("Student %s registered successfully", profile.Name),
		"student_id": student.ID,
	})
}

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, fh, err := r.FormFile("image")
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, fmt.Sprintf("could not read image %s", fh.Filename))
		return
	}

	probe, err := ComputeEmbedding(data)
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "uploaded file is not a valid image")
		return
	}

	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "could not list students")
		return
	}

	faces := []recognizer.FaceBox{wholeImageBox(data)}
	if len(students) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{
			"success":                  true,
			"recognized_students":      []recognizer.Candidate{},
			"already_present_students": []recognizer.Candidate{},
			"detected_faces":           faces,
			"total_found":              0,
			"total_already_present":    0,
			"message":                  "No students registered in the system",
		})
		return
	}

	now := s.now()
	recognized := []recognizer.Candidate{}
	alreadyPresent := []recognizer.Candidate{}
	// Each student matches at most once per image.
	for _, student := range students {
		score := bestSimilarity(student, probe)
		if score < SimilarityThreshold {
			continue
		}

		inserted, err := s.store.MarkAttendance(r.Context(), AttendanceRow{
			StudentID:       student.ID,
			StudentName:     student.Name,
			RollNumber:      student.RollNumber,
			Year:            student.Year,
			Session:         student.Session,
			Time:            now,
			SimilarityScore: score,
		})
		if err != nil {
			respondDetail(w, http.StatusInternalServerError, "could not mark attendance")
			return
		}

		candidate := recognizer.Candidate{
			Name:            student.Name,
			RollNumber:      student.RollNumber,
			Year:            student.Year,
			Session:         student.Session,
			SimilarityScore: score,
			FaceBox:         faces[0],
		}
		if inserted {
			candidate.Status = recognizer.StatusPresent
			recognized = append(recognized, candidate)
		} else {
			candidate.Status = recognizer.StatusAlreadyPresent
			alreadyPresent = append(alreadyPresent, candidate)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":                  true,
		"recognized_students":      recognized,
		"already_present_students": alreadyPresent,
		"detected_faces":           faces,
		"total_found":              len(recognized),
		"total_already_present":    len(alreadyPresent),
	})
}

func (s *Server) handleDetectFaces(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "could not read image")
		return
	}
	if _, err := ComputeEmbedding(data); err != nil {
		respondDetail(w, http.StatusBadRequest, "uploaded file is not a valid image")
		return
	}

	faces := []recognizer.FaceBox{wholeImageBox(data)}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"faces":       faces,
		"total_faces": len(faces),
	})
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "could not list students",
		})
		return
	}

	out := make([]recognizer.Student, len(students))
	for i, student := range students {
		out[i] = recognizer.Student{
			ID:               student.ID,
			Name:             student.Name,
			RollNumber:       student.RollNumber,
			Year:             student.Year,
			Session:          student.Session,
			RegistrationDate: student.RegisteredAt.Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"students":       out,
		"total_students": len(out),
	})
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListAttendance(r.Context(), s.now())
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "could not list attendance",
		})
		return
	}

	out := make([]recognizer.AttendanceRecord, len(rows))
	for i, row := range rows {
		out[i] = recognizer.AttendanceRecord{
			StudentName:     row.StudentName,
			RollNumber:      row.RollNumber,
			Year:            row.Year,
			Session:         row.Session,
			Time:            row.Time.Format(time.RFC3339),
			SimilarityScore: row.SimilarityScore,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"attendance_records": out,
		"total_present":      len(out),
	})
}

// wholeImageBox is the fallback face box covering the full image, used
// because the stub does no real face detection.
func wholeImageBox(data []byte) recognizer.FaceBox {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return recognizer.FaceBox{}
	}
	return recognizer.FaceBox{X: 0, Y: 0, Width: cfg.Width, Height: cfg.Height}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("could not read upload: %w", err)
	}
	return data, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondDetail sends an error response in the backend's detail envelope.
func respondDetail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
