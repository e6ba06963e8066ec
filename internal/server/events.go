// internal/server/events.go
package server

import (
	"encoding/json"
	"net/http"
	"time"
)

const heartbeatInterval = 30 * time.Second

// handleEvents streams an owner's prospect change events as server-sent
// events. Consoles treat each event as a full snapshot: a missed event is
// recovered by the next one or by a list re-fetch, so at-least-once with
// versions is enough.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, err := s.events.Subscribe(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			// Comment line keeps idle proxies from closing the stream.
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("failed to encode prospect event", map[string]interface{}{
					"prospectId": ev.ProspectID,
					"error":      err.Error(),
				})
				continue
			}
			if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
