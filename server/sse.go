package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/ingest"
)

// handleEvents streams an operation's progress as server-sent events. The
// first event is always "open" carrying the current snapshot; afterwards
// the subscriber sees "progress" and finally "done". Events published
// before the subscriber connected are not replayed. Comment lines are sent
// as heartbeats to keep proxies from closing the idle connection.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	// Subscribe before reading the snapshot. A done published in between
	// either arrives on the channel or is already reflected in the snapshot,
	// so the terminal replay below cannot miss it.
	events, cancel := s.pipeline.Broadcaster().Subscribe(id)
	defer cancel()

	op, err := s.pipeline.Operations().Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, ingest.Event{Kind: ingest.EventOpen, Operation: op}); err != nil {
		return
	}
	flusher.Flush()

	// A finished operation gets its terminal state replayed as done, since
	// no further events will arrive.
	if op.Status == core.OperationCompleted || op.Status == core.OperationFailed {
		if err := writeSSE(w, ingest.Event{Kind: ingest.EventDone, Operation: op}); err == nil {
			flusher.Flush()
		}
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
			if event.Kind == ingest.EventDone {
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE emits one event in wire format: an event line, a data line with
// the JSON payload, and a blank separator.
func writeSSE(w http.ResponseWriter, event ingest.Event) error {
	data, err := json.Marshal(event.Operation)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
	return err
}
