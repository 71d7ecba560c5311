package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	// The API is origin-agnostic; browser clients are served from a separate
	// frontend host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// OrderEvents streams change events for a single order over a websocket.
func (h *Handler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	h.streamEvents(w, r, chi.URLParam(r, "id"))
}

// AdminEvents streams every order and payment change event over a websocket.
func (h *Handler) AdminEvents(w http.ResponseWriter, r *http.Request) {
	h.streamEvents(w, r, "")
}

func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request, orderID string) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		return
	}
	defer func() { _ = conn.Close() }()

	sub := h.hub.Subscribe(orderID)
	defer sub.Close()

	lg := zctx.From(r.Context()).With(zap.String("order_id", orderID))
	lg.Debug("Event stream opened")

	// The server set a read deadline on the raw connection before the upgrade
	// hijacked it; clear it or the stream dies when it fires.
	_ = conn.NetConn().SetDeadline(time.Time{})

	// Reads are discarded, but the read pump is what notices a gone peer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, ev.Encode()); err != nil {
				lg.Debug("Event stream write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
