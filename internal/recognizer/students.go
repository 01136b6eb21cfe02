package recognizer

import "context"

// ListStudents returns all registered students.
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	resp, err := doGetJSON[studentsResponse](c, ctx, "students")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, transportErrf("students", "backend reported failure: %s", resp.Error)
	}
	return resp.Students, nil
}
