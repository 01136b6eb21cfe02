package recognizer

import "context"

// ListAttendance returns today's attendance ledger. The day boundary is
// determined by the server; the client never computes the ledger locally.
func (c *Client) ListAttendance(ctx context.Context) ([]AttendanceRecord, error) {
	resp, err := doGetJSON[attendanceResponse](c, ctx, "attendance")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, transportErrf("attendance", "backend reported failure: %s", resp.Error)
	}
	return resp.AttendanceRecords, nil
}
