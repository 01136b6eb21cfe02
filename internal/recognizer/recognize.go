package recognizer

import (
	"context"
	"mime/multipart"

	"github.com/akranjan/facemark/internal/frame"
)

// Recognize submits a single frame and returns the recognized candidates.
// A Result with no candidates is a valid "no match" outcome.
func (c *Client) Recognize(ctx context.Context, f *frame.Frame) (*Result, error) {
	resp, err := doPostMultipart[recognizeResponse](c, ctx, "recognize", func(w *multipart.Writer) error {
		return addFramePart(w, "image", f.Payload("attendance.jpg"))
	})
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, transportErrf("recognize", "backend reported failure: %s", resp.Message)
	}

	// already_present_students carry no status field on the wire; tag them
	// so downstream classification sees a uniform candidate list.
	already := make([]Candidate, len(resp.AlreadyPresentStudents))
	for i, cand := range resp.AlreadyPresentStudents {
		cand.Status = StatusAlreadyPresent
		already[i] = cand
	}

	return &Result{
		Candidates:     resp.RecognizedStudents,
		AlreadyPresent: already,
		DetectedFaces:  resp.DetectedFaces,
		Message:        resp.Message,
	}, nil
}
