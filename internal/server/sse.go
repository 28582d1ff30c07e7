package server

import (
	"net/http"
	"time"

	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/events"
)

// handleEvents streams editor events as Server-Sent Events. Repeated
// ?topic= parameters filter by NATS-style pattern; none means all topics.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.broker == nil {
		writeError(w, r, errs.New(errs.ErrCodeUnsupported, "event stream is not enabled"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, errs.New(errs.ErrCodeUnsupported, "streaming not supported"))
		return
	}

	patterns := r.URL.Query()["topic"]
	if len(patterns) == 0 {
		patterns = []string{events.TopicAll}
	}
	ch, cancel, err := s.broker.Subscribe(r.Context(), patterns...)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.ErrCodeUnsupported, err, "subscribe"))
		return
	}
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := events.WriteSSE(w, ev); err != nil {
				s.logger.Debug("sse write failed", "err", err)
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
