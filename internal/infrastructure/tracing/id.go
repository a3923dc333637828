package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TraceID is a 16-byte unique identifier shared by every span in a trace.
type TraceID [16]byte

// SpanID is an 8-byte unique identifier for a single span.
type SpanID [8]byte

// String returns the hex representation of TraceID.
func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

// String returns the hex representation of SpanID.
func (s SpanID) String() string {
	return hex.EncodeToString(s[:])
}

// IsZero returns true if the TraceID is all zeros (not initialized).
func (t TraceID) IsZero() bool {
	for _, b := range t {
		if b != 0 {
			return false
		}
	}
	return true
}

// IsZero returns true if the SpanID is all zeros (not initialized).
func (s SpanID) IsZero() bool {
	for _, b := range s {
		if b != 0 {
			return false
		}
	}
	return true
}

// NewTraceID generates a new random TraceID.
func NewTraceID() TraceID {
	var t TraceID
	rand.Read(t[:])
	return t
}

// NewSpanID generates a new random SpanID.
func NewSpanID() SpanID {
	var s SpanID
	rand.Read(s[:])
	return s
}

// ParseTraceID parses a 32-character hex string into a TraceID.
func ParseTraceID(s string) (TraceID, error) {
	var t TraceID
	if len(s) != 32 {
		return t, fmt.Errorf("invalid trace ID length: expected 32, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return t, fmt.Errorf("invalid trace ID hex: %w", err)
	}
	copy(t[:], b)
	return t, nil
}

// ParseSpanID parses a 16-character hex string into a SpanID.
func ParseSpanID(s string) (SpanID, error) {
	var sp SpanID
	if len(s) != 16 {
		return sp, fmt.Errorf("invalid span ID length: expected 16, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return sp, fmt.Errorf("invalid span ID hex: %w", err)
	}
	copy(sp[:], b)
	return sp, nil
}
