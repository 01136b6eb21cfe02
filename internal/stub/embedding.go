package stub

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// The stub matcher flattens a scaled grayscale image into a vector and
// compares vectors by cosine similarity. It is a development fixture with
// predictable behavior, not a face recognition algorithm.
const (
	embeddingSide = 64

	// SimilarityThreshold is the minimum cosine similarity for a match.
	SimilarityThreshold = 0.70
)

// ComputeEmbedding decodes an image and flattens it into a normalized
// grayscale vector of embeddingSide*embeddingSide values.
func ComputeEmbedding(imageData []byte) ([]float64, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, embeddingSide, embeddingSide))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	embedding := make([]float64, embeddingSide*embeddingSide)
	for y := 0; y < embeddingSide; y++ {
		for x := 0; x < embeddingSide; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			embedding[y*embeddingSide+x] = luma / 255.0
		}
	}
	return embedding, nil
}

// CosineSimilarity returns the cosine similarity of two vectors, clamped to
// [-1, 1]. Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return similarity
}

// bestSimilarity returns the best score of a probe against a student's
// reference embeddings.
func bestSimilarity(student StudentRecord, probe []float64) float64 {
	best := 0.0
	for _, ref := range student.Embeddings {
		if score := CosineSimilarity(ref, probe); score > best {
			best = score
		}
	}
	return best
}
