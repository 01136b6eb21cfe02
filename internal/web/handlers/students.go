package handlers

import (
	"net/http"

	"github.com/akranjan/facemark/internal/names"
	"github.com/akranjan/facemark/internal/recognizer"
)

// StudentsHandler lists registered students.
type StudentsHandler struct {
	client *recognizer.Client
}

func NewStudentsHandler(client *recognizer.Client) *StudentsHandler {
	return &StudentsHandler{client: client}
}

// List returns the registered students, optionally filtered by a
// diacritic-insensitive name or roll-number search.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.client.ListStudents(r.Context())
	if err != nil {
		respondClientError(w, err)
		return
	}

	if query := r.URL.Query().Get("search"); query != "" {
		students = FilterStudents(students, query)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"students":       students,
		"total_students": len(students),
	})
}

// FilterStudents keeps students whose name matches the query ignoring case
// and diacritics, or whose roll number matches it exactly.
func FilterStudents(students []recognizer.Student, query string) []recognizer.Student {
	out := make([]recognizer.Student, 0, len(students))
	for _, s := range students {
		if names.Matches(s.Name, query) || s.RollNumber == query {
			out = append(out, s)
		}
	}
	return out
}
