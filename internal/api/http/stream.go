package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mapa-lotes/lotmap-backend/internal/changefeed"
)

// StreamHandler re-broadcasts change notifications to browsers over
// Server-Sent Events, so a connected UI learns that its view went
// stale the same way this service does.
type StreamHandler struct {
	bus changefeed.Bus
}

func NewStreamHandler(bus changefeed.Bus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

func (h *StreamHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/stream", h.stream)
}

func (h *StreamHandler) stream(c *gin.Context) {
	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	events := make(chan changefeed.Event, 16)
	sub, err := h.bus.Subscribe(ctx, func(ev changefeed.Event) {
		select {
		case events <- ev:
		default:
			// Slow client; dropping is fine, any one event already
			// means "refetch everything".
		}
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "subscribe failed"})
		return
	}
	defer sub.Close()

	fmt.Fprint(c.Writer, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	// Keep-alive pings
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev := <-events:
			data, _ := json.Marshal(ev)
			fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
