package frame

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrMalformedFrame indicates that captured frame data could not be
// interpreted as an image. The frame should be dropped and retaken.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is a single captured still image. The raw bytes are kept exactly
// as captured so the uploaded payload reconstructs the original blob.
type Frame struct {
	data   []byte
	format string // jpeg, png, gif, bmp or webp
}

// Payload is a frame prepared for multipart transport.
type Payload struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

// FromBytes validates raw image bytes and wraps them in a Frame.
func FromBytes(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrMalformedFrame)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return &Frame{data: data, format: format}, nil
}

// FromDataURI decodes a base64 data URI (as produced by a browser canvas
// screenshot, "data:image/jpeg;base64,...") into a Frame.
func FromDataURI(uri string) (*Frame, error) {
	_, encoded, found := strings.Cut(uri, ",")
	if !found {
		return nil, fmt.Errorf("%w: missing data URI separator", ErrMalformedFrame)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 data: %v", ErrMalformedFrame, err)
	}
	return FromBytes(data)
}

// FromFile reads an image file into a Frame.
func FromFile(path string) (*Frame, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided file path for capture
	if err != nil {
		return nil, fmt.Errorf("could not read frame file: %w", err)
	}
	return FromBytes(data)
}

// Bytes returns the raw image bytes exactly as captured.
func (f *Frame) Bytes() []byte {
	return f.data
}

// Format returns the detected image format (jpeg, png, ...).
func (f *Frame) Format() string {
	return f.format
}

// ContentType returns the MIME type for the frame's format.
func (f *Frame) ContentType() string {
	switch f.format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// DataURI re-encodes the frame as a base64 data URI.
func (f *Frame) DataURI() string {
	return "data:" + f.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(f.data)
}

// Payload wraps the frame for multipart transport under a synthetic filename.
// The payload bytes are the captured bytes, untouched.
func (f *Frame) Payload(filename string) Payload {
	return Payload{
		Bytes:       f.data,
		ContentType: f.ContentType(),
		Filename:    filename,
	}
}
