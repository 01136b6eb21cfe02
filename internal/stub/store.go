package stub

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrDuplicateRoll means a student with the same roll number is already
// registered.
var ErrDuplicateRoll = errors.New("roll number already registered")

// StudentRecord is a registered student with their reference embeddings.
type StudentRecord struct {
	ID           string
	Name         string
	RollNumber   string
	Year         string
	Session      string
	RegisteredAt time.Time
	Embeddings   [][]float64
}

// AttendanceRow is one attendance mark. The store enforces at most one row
// per student per calendar day.
type AttendanceRow struct {
	StudentID       string
	StudentName     string
	RollNumber      string
	Year            string
	Session         string
	Time            time.Time
	SimilarityScore float64
}

// Store persists students and attendance marks for the stub service.
type Store interface {
	// CreateStudent inserts a student; returns ErrDuplicateRoll when the
	// roll number is taken.
	CreateStudent(ctx context.Context, student *StudentRecord) error
	// ListStudents returns all registered students, oldest first.
	ListStudents(ctx context.Context) ([]StudentRecord, error)
	// MarkAttendance records a mark. Returns false without inserting when
	// the student already has a row for the same calendar day.
	MarkAttendance(ctx context.Context, row AttendanceRow) (bool, error)
	// ListAttendance returns the marks for one calendar day, oldest first.
	ListAttendance(ctx context.Context, day time.Time) ([]AttendanceRow, error)
}

// MemoryStore is the default in-memory Store.
type MemoryStore struct {
	mu         sync.Mutex
	students   []StudentRecord
	rolls      map[string]bool
	attendance []AttendanceRow
	marked     map[string]bool // studentID + day
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rolls:  make(map[string]bool),
		marked: make(map[string]bool),
	}
}

func (m *MemoryStore) CreateStudent(ctx context.Context, student *StudentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rolls[student.RollNumber] {
		return ErrDuplicateRoll
	}
	m.rolls[student.RollNumber] = true
	m.students = append(m.students, *student)
	return nil
}

func (m *MemoryStore) ListStudents(ctx context.Context) ([]StudentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]StudentRecord, len(m.students))
	copy(out, m.students)
	return out, nil
}

func (m *MemoryStore) MarkAttendance(ctx context.Context, row AttendanceRow) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := row.StudentID + "/" + row.Time.Format("2006-01-02")
	if m.marked[key] {
		return false, nil
	}
	m.marked[key] = true
	m.attendance = append(m.attendance, row)
	return true, nil
}

func (m *MemoryStore) ListAttendance(ctx context.Context, day time.Time) ([]AttendanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	date := day.Format("2006-01-02")
	var out []AttendanceRow
	for _, row := range m.attendance {
		if row.Time.Format("2006-01-02") == date {
			out = append(out, row)
		}
	}
	return out, nil
}
