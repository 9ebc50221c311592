package core

import (
	"time"

	"github.com/google/uuid"
)

// Status describes where a source item is in its ingestion lifecycle.
type Status string

const (
	// StatusQueued means the item has been discovered but not yet processed.
	StatusQueued Status = "queued"
	// StatusProcessing means a worker currently owns the item.
	StatusProcessing Status = "processing"
	// StatusCompleted means the item was fully ingested.
	StatusCompleted Status = "completed"
	// StatusError means the item failed and is eligible for resume.
	StatusError Status = "error"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Terminal reports whether the status is a terminal outcome for a run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ManifestEntry records the durable ingestion state of a single source item.
// The Key is a normalized file path or canonical URL and uniquely identifies
// the item. An entry with StatusCompleted and a checksum matching the current
// content is treated as already done.
type ManifestEntry struct {
	Key         string            `json:"key"`
	Checksum    string            `json:"checksum"`
	Status      Status            `json:"status"`
	Error       string            `json:"error,omitempty"`
	ChunksCount int               `json:"chunks_count"`
	Title       string            `json:"title,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Chunk is a bounded, overlapping text span derived from a source item.
// For a fixed chunk size and overlap the chunk sequence of a given input
// text is fully deterministic.
type Chunk struct {
	SourceID string
	Index    int
	Text     string
}

// Length returns the chunk text length in bytes.
func (c Chunk) Length() int {
	return len(c.Text)
}

// PointPayload is the metadata stored alongside a vector in the index.
type PointPayload struct {
	SourceID   string
	ChunkIndex int
	Text       string
	ChunkTotal int
	Title      string
	IngestedAt time.Time
}

// VectorPoint is one embedded chunk ready for upsert into the vector index.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

// pointNamespace is the fixed UUID namespace for deterministic point IDs.
var pointNamespace = uuid.MustParse("9c0f2e0a-6f2d-4c57-9f6e-08f4a52b7d11")

// PointID derives a deterministic vector point ID from a source item and
// chunk index. Reprocessing the same source/chunk always produces the same
// ID, so the vector index overwrites instead of duplicating on re-ingestion.
func PointID(sourceID string, index int) string {
	name := make([]byte, 0, len(sourceID)+12)
	name = append(name, sourceID...)
	name = append(name, '#')
	name = appendInt(name, index)
	return uuid.NewSHA1(pointNamespace, name).String()
}

func appendInt(b []byte, n int) []byte {
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	if n >= 10 {
		b = appendInt(b, n/10)
	}
	return append(b, byte('0'+n%10))
}

// OperationStatus describes the aggregate state of a bulk ingestion run.
type OperationStatus string

const (
	// OperationStarting means the run is enumerating sources.
	OperationStarting OperationStatus = "starting"
	// OperationProcessing means items are flowing through the pipeline.
	OperationProcessing OperationStatus = "processing"
	// OperationCompleted means the run finished, possibly with item errors.
	OperationCompleted OperationStatus = "completed"
	// OperationFailed means a run-level error stopped the operation.
	OperationFailed OperationStatus = "failed"
)

// Operation is the ephemeral descriptor of one bulk ingestion run. It is not
// persisted; the manifest can reconstruct equivalent aggregates at any time.
type Operation struct {
	ID          string          `json:"operation_id"`
	Status      OperationStatus `json:"status"`
	Total       int             `json:"total"`
	Completed   int             `json:"completed"`
	Skipped     int             `json:"skipped"`
	Errors      int             `json:"errors"`
	ChunksTotal int             `json:"chunks_total"`
	Error       string          `json:"error,omitempty"`
}

// Finished reports whether all discovered items reached a terminal outcome.
func (o *Operation) Finished() bool {
	return o.Completed+o.Skipped+o.Errors >= o.Total
}

// ManifestStats aggregates manifest entry counts by status.
type ManifestStats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Errors      int `json:"errors"`
	Pending     int `json:"pending"`
	ChunksTotal int `json:"chunks_total"`
}
