// internal/reqctx/reqctx.go

// Package reqctx threads a per-extraction id through the pipeline so log
// lines from concurrent extractions can be correlated.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

type key int

const extractionKey key = 0

// ExtractionContext identifies one extraction run.
type ExtractionContext struct {
	ExtractionID string
	StartTime    time.Time
}

// WithExtraction attaches a fresh extraction id to ctx.
func WithExtraction(ctx context.Context) context.Context {
	return context.WithValue(ctx, extractionKey, &ExtractionContext{
		ExtractionID: generateID(),
		StartTime:    time.Now(),
	})
}

// FromContext returns the extraction context, or a placeholder when the
// caller did not attach one.
func FromContext(ctx context.Context) *ExtractionContext {
	if ec, ok := ctx.Value(extractionKey).(*ExtractionContext); ok {
		return ec
	}
	return &ExtractionContext{ExtractionID: "unknown", StartTime: time.Now()}
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
