package recognizer

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/akranjan/facemark/internal/frame"
)

// Enroll registers a new student from the given profile and reference frames.
// The caller is responsible for the [MinFrames, MaxFrames] bound; the backend
// enforces it again and answers with a ValidationError when violated.
func (c *Client) Enroll(ctx context.Context, profile Profile, frames []*frame.Frame) (*EnrollResult, error) {
	resp, err := doPostMultipart[registerResponse](c, ctx, "register", func(w *multipart.Writer) error {
		fields := map[string]string{
			"name":        profile.Name,
			"roll_number": profile.RollNumber,
			"year":        profile.Year,
			"session":     profile.Session,
		}
		for field, value := range fields {
			if err := w.WriteField(field, value); err != nil {
				return fmt.Errorf("could not write field %s: %w", field, err)
			}
		}
		for i, f := range frames {
			if err := addFramePart(w, "images", f.Payload(fmt.Sprintf("image_%d.jpg", i))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, transportErrf("register", "backend reported failure: %s", resp.Message)
	}

	return &EnrollResult{StudentID: resp.StudentID, Message: resp.Message}, nil
}
