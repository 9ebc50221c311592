// Package index defines the external vector index contract used by the
// ingestion pipeline. Similarity search and ranking belong to the index
// service and are out of scope here; the pipeline only creates collections
// and upserts points.
package index
