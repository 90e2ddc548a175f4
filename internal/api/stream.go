package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// serveStream writes every snapshot from updates as a server-sent event until the client goes away
// or the stream closes.
func serveStream[T any](h *Handler, w http.ResponseWriter, r *http.Request, updates <-chan T, render func(T) interface{}) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Warn("clear stream write deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.log.Warn("stream flush unsupported", "path", r.URL.Path, "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(render(snapshot))
			if err != nil {
				h.log.Error("encode stream snapshot", "path", r.URL.Path, "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
