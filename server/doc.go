// Package server exposes the ingestion pipeline over HTTP: starting and
// resuming bulk runs, manifest statistics, and live per-operation progress
// streamed as server-sent events.
package server
