package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/akranjan/facemark/internal/frame"
)

// doGetJSON performs a GET request and unmarshals the JSON response into the
// result type. The endpoint is the path after the base URL (e.g., "students").
func doGetJSON[T any](c *Client, ctx context.Context, endpoint string) (*T, error) {
	url := c.resolveURL(endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not create request: %w", err))
	}

	resp, err := http.DefaultClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transportErrf(endpoint, "request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not read response body: %w", err))
	}

	c.captureResponse(endpoint, body)

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not unmarshal response: %w", err))
	}

	return &result, nil
}

// doPostMultipart performs a multipart POST built by the form callback and
// unmarshals the JSON response. A 400 response is converted to a
// ValidationError carrying the backend's detail message; any other
// non-200 status or network failure becomes a TransportError.
func doPostMultipart[T any](c *Client, ctx context.Context, endpoint string, form func(w *multipart.Writer) error) (*T, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := form(writer); err != nil {
		return nil, fmt.Errorf("could not build multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close multipart writer: %w", err)
	}

	url := c.resolveURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not create request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not read response body: %w", err))
	}

	if resp.StatusCode == http.StatusBadRequest {
		return nil, &ValidationError{Message: detailMessage(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transportErrf(endpoint, "request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	c.captureResponse(endpoint, respBody)

	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, transportErr(endpoint, fmt.Errorf("could not unmarshal response: %w", err))
	}

	return &result, nil
}

// addFramePart writes a frame payload as a file part with its own content type.
func addFramePart(writer *multipart.Writer, field string, p frame.Payload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, p.Filename))
	h.Set("Content-Type", p.ContentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(p.Bytes); err != nil {
		return fmt.Errorf("could not write frame data: %w", err)
	}
	return nil
}

// detailMessage extracts the error detail from a JSON error body, falling
// back to the raw body text.
func detailMessage(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Detail != "":
			return parsed.Detail
		case parsed.Message != "":
			return parsed.Message
		case parsed.Error != "":
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
