package frame

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// testJPEG encodes a small solid-color image as JPEG bytes.
func testJPEG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytes_JPEG(t *testing.T) {
	data := testJPEG(t, color.White)

	f, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if f.Format() != "jpeg" {
		t.Errorf("expected format 'jpeg', got '%s'", f.Format())
	}
	if f.ContentType() != "image/jpeg" {
		t.Errorf("expected content type 'image/jpeg', got '%s'", f.ContentType())
	}
	if !bytes.Equal(f.Bytes(), data) {
		t.Error("frame bytes do not match input bytes")
	}
}

func TestFromBytes_PNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}

	f, err := FromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if f.ContentType() != "image/png" {
		t.Errorf("expected content type 'image/png', got '%s'", f.ContentType())
	}
}

func TestFromBytes_Malformed(t *testing.T) {
	_, err := FromBytes([]byte("definitely not an image"))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame, got %v", err)
	}

	_, err = FromBytes(nil)
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame for empty data, got %v", err)
	}
}

func TestFromDataURI_RoundTrip(t *testing.T) {
	data := testJPEG(t, color.Black)
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)

	f, err := FromDataURI(uri)
	if err != nil {
		t.Fatalf("FromDataURI failed: %v", err)
	}
	if !bytes.Equal(f.Bytes(), data) {
		t.Error("decoded bytes do not reproduce the original byte sequence")
	}

	// Re-encoding must reproduce the URI exactly.
	if f.DataURI() != uri {
		t.Error("DataURI round trip does not match the original URI")
	}
}

func TestFromDataURI_Malformed(t *testing.T) {
	cases := []struct {
		name string
		uri  string
	}{
		{"no separator", "data:image/jpeg;base64"},
		{"invalid base64", "data:image/jpeg;base64,!!!not-base64!!!"},
		{"valid base64, not an image", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromDataURI(tc.uri); !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("expected ErrMalformedFrame, got %v", err)
			}
		})
	}
}

func TestPayload(t *testing.T) {
	data := testJPEG(t, color.White)
	f, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}

	p := f.Payload("image_0.jpg")
	if p.Filename != "image_0.jpg" {
		t.Errorf("expected filename 'image_0.jpg', got '%s'", p.Filename)
	}
	if p.ContentType != "image/jpeg" {
		t.Errorf("expected content type 'image/jpeg', got '%s'", p.ContentType)
	}
	if !bytes.Equal(p.Bytes, data) {
		t.Error("payload bytes do not match the captured frame")
	}
}
