package recognizer

// CandidateStatus classifies a recognized face within a single call.
type CandidateStatus string

const (
	// StatusPresent means the student was marked present by this call.
	StatusPresent CandidateStatus = "present"
	// StatusAlreadyPresent means the student already had an attendance
	// record for today; the backend did not insert a second one.
	StatusAlreadyPresent CandidateStatus = "already_present"
)

// FaceBox is a detected face bounding box in image coordinates.
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Candidate is one recognized face from a recognition call.
type Candidate struct {
	Name            string          `json:"name"`
	RollNumber      string          `json:"roll_number"`
	Year            string          `json:"year"`
	Session         string          `json:"session"`
	SimilarityScore float64         `json:"similarity_score"`
	Status          CandidateStatus `json:"status"`
	FaceBox         FaceBox         `json:"face_box"`
}

// Student is a registered student record.
type Student struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	RollNumber       string `json:"roll_number"`
	Year             string `json:"year"`
	Session          string `json:"session"`
	RegistrationDate string `json:"registration_date"`
}

// AttendanceRecord is one attendance mark, at most one per student per day.
type AttendanceRecord struct {
	StudentName     string  `json:"student_name"`
	RollNumber      string  `json:"roll_number"`
	Year            string  `json:"year"`
	Session         string  `json:"session"`
	Time            string  `json:"time"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Profile holds the enrollment form fields.
type Profile struct {
	Name       string
	RollNumber string
	Year       string
	Session    string
}

// EnrollResult is the outcome of a successful enrollment.
type EnrollResult struct {
	StudentID string
	Message   string
}

// Result is the outcome of a recognition call. Empty candidate lists are a
// valid "no match" outcome, not an error.
type Result struct {
	Candidates     []Candidate
	AlreadyPresent []Candidate
	DetectedFaces  []FaceBox
	Message        string
}

// registerResponse is the /register envelope.
type registerResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	StudentID string `json:"student_id"`
}

// recognizeResponse is the /recognize envelope.
type recognizeResponse struct {
	Success                bool        `json:"success"`
	RecognizedStudents     []Candidate `json:"recognized_students"`
	AlreadyPresentStudents []Candidate `json:"already_present_students"`
	DetectedFaces          []FaceBox   `json:"detected_faces"`
	TotalFound             int         `json:"total_found"`
	TotalAlreadyPresent    int         `json:"total_already_present"`
	Message                string      `json:"message"`
}

// studentsResponse is the /students envelope.
type studentsResponse struct {
	Success       bool      `json:"success"`
	Students      []Student `json:"students"`
	TotalStudents int       `json:"total_students"`
	Error         string    `json:"error"`
}

// attendanceResponse is the /attendance envelope.
type attendanceResponse struct {
	Success           bool               `json:"success"`
	AttendanceRecords []AttendanceRecord `json:"attendance_records"`
	TotalPresent      int                `json:"total_present"`
	Error             string             `json:"error"`
}
