package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appscore-lab/internal/streaming"
	"appscore-lab/pkg/logger"
)

const (
	eventBuffer    = 32
	eventHeartbeat = 15 * time.Second
)

// EventSource hands out local event subscriptions
type EventSource interface {
	Subscribe(buffer int) (<-chan *streaming.Event, func())
}

// EventsHandler streams report events to HTTP clients as server-sent events
type EventsHandler struct {
	source    EventSource
	heartbeat time.Duration
	logger    *logger.Logger
}

// NewEventsHandler creates a new events handler; source may be nil
func NewEventsHandler(source EventSource, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		source:    source,
		heartbeat: eventHeartbeat,
		logger:    log.WithComponent("events-handler"),
	}
}

// Stream handles GET /events. The optional package query parameter limits
// the stream to one app.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		respondError(w, http.StatusServiceUnavailable, "event streaming is not configured")
		return
	}

	rc := http.NewResponseController(w)
	// the server write timeout would cut the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && err != http.ErrNotSupported {
		h.logger.Debug().Err(err).Msg("could not clear write deadline")
	}

	events, unsubscribe := h.source.Subscribe(eventBuffer)
	defer unsubscribe()

	pkg := r.URL.Query().Get("package")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.logger.Warn().Err(err).Msg("event stream not supported by response writer")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		case event, ok := <-events:
			if !ok {
				return
			}
			if pkg != "" && event.Package != pkg {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to encode event")
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
