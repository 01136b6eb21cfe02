package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/akranjan/facemark/internal/stub"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// Store implements stub.Store on top of a PostgreSQL pool.
type Store struct {
	pool *Pool
}

func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) CreateStudent(ctx context.Context, student *stub.StudentRecord) error {
	tx, err := s.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO students (id, name, roll_number, year, session, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, student.ID, student.Name, student.RollNumber, student.Year, student.Session, student.RegisteredAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return stub.ErrDuplicateRoll
		}
		return fmt.Errorf("inserting student: %w", err)
	}

	for _, embedding := range student.Embeddings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO student_embeddings (student_id, embedding) VALUES ($1, $2)
		`, student.ID, pq.Array(embedding))
		if err != nil {
			return fmt.Errorf("inserting embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing student insert: %w", err)
	}
	return nil
}

func (s *Store) ListStudents(ctx context.Context) ([]stub.StudentRecord, error) {
	rows, err := s.pool.db.QueryContext(ctx, `
		SELECT id, name, roll_number, year, session, registered_at
		FROM students ORDER BY registered_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying students: %w", err)
	}
	defer rows.Close()

	var students []stub.StudentRecord
	index := make(map[string]int)
	for rows.Next() {
		var student stub.StudentRecord
		if err := rows.Scan(&student.ID, &student.Name, &student.RollNumber,
			&student.Year, &student.Session, &student.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		index[student.ID] = len(students)
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating students: %w", err)
	}

	embRows, err := s.pool.db.QueryContext(ctx, `
		SELECT student_id, embedding FROM student_embeddings ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer embRows.Close()

	for embRows.Next() {
		var studentID string
		var embedding pq.Float64Array
		if err := embRows.Scan(&studentID, &embedding); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		if i, ok := index[studentID]; ok {
			students[i].Embeddings = append(students[i].Embeddings, embedding)
		}
	}
	if err := embRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return students, nil
}

func (s *Store) MarkAttendance(ctx context.Context, row stub.AttendanceRow) (bool, error) {
	// The unique (student_id, marked_on) constraint carries the one mark
	// per student per day rule; a conflict means already present.
	result, err := s.pool.db.ExecContext(ctx, `
		INSERT INTO attendance (student_id, marked_at, marked_on, similarity_score)
		VALUES ($1, $2, $2::date, $3)
		ON CONFLICT (student_id, marked_on) DO NOTHING
	`, row.StudentID, row.Time, row.SimilarityScore)
	if err != nil {
		return false, fmt.Errorf("inserting attendance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected == 1, nil
}

func (s *Store) ListAttendance(ctx context.Context, day time.Time) ([]stub.AttendanceRow, error) {
	rows, err := s.pool.db.QueryContext(ctx, `
		SELECT a.student_id, s.name, s.roll_number, s.year, s.session, a.marked_at, a.similarity_score
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.marked_on = $1::date
		ORDER BY a.marked_at, a.id
	`, day)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	var out []stub.AttendanceRow
	for rows.Next() {
		var row stub.AttendanceRow
		if err := rows.Scan(&row.StudentID, &row.StudentName, &row.RollNumber,
			&row.Year, &row.Session, &row.Time, &row.SimilarityScore); err != nil {
			return nil, fmt.Errorf("scanning attendance row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance rows: %w", err)
	}
	return out, nil
}
