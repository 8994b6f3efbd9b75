package web

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/commitgate/internal/findings"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalOrigin(origin)
	},
}

// event is pushed to dashboards over /api/events.
type event struct {
	Type   string           `json:"type"`
	Data   *findings.Report `json:"data,omitempty"`
	Status string           `json:"status,omitempty"`
}

// hub fans events out to connected dashboards.
type hub struct {
	logger *log.Logger

	mu      sync.Mutex
	clients map[chan event]struct{}
	closed  bool
}

func newHub(logger *log.Logger) *hub {
	return &hub{logger: logger, clients: map[chan event]struct{}{}}
}

func (h *hub) subscribe() (chan event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan event, 8)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *hub) unsubscribe(ch chan event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// broadcast drops the event for clients whose buffer is full.
func (h *hub) broadcast(e event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) serve(current func() *findings.Report) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ch, ok := h.subscribe()
		if !ok {
			_ = conn.WriteJSON(event{Type: "status", Status: "stopped"})
			return
		}
		defer h.unsubscribe(ch)

		if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			h.logger.Printf("[web] events: set read deadline: %v", err)
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		readerDone := make(chan struct{})
		go func() {
			defer close(readerDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		write := func(e event) bool {
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return false
			}
			return conn.WriteJSON(e) == nil
		}

		if report := current(); report != nil {
			if !write(event{Type: "snapshot", Data: report}) {
				return
			}
		}

		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-readerDone:
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				if !write(e) {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

func isLocalOrigin(origin string) bool {
	for _, host := range []string{"http://localhost", "http://127.0.0.1"} {
		if origin == host || strings.HasPrefix(origin, host+":") {
			return true
		}
	}
	return false
}
