// Package surface pushes display updates to kiosk browsers over websockets.
//
// The Hub remembers the latest header, ticker, frame and slide step so that
// a surface connecting mid-tenure immediately shows the current state.
package surface

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/metrics"
)

// Hub maintains the set of active connections and broadcasts messages
type Hub struct {
	// Registered connections
	connections map[*connection]bool

	// Register requests from the connections
	register chan *connection

	// Unregister requests from connections
	unregister chan *connection

	// Outbound messages for every connection
	broadcast chan outbound

	// Latest message per type, replayed to new connections
	latest map[v1alpha1.ControlMessageType][]byte

	count  atomic.Int64
	done   chan struct{}
	clock  func() time.Time
	logger *slog.Logger
}

type outbound struct {
	kind v1alpha1.ControlMessageType
	data []byte
}

// replayOrder is the order the latest state is sent to a new connection
var replayOrder = []v1alpha1.ControlMessageType{
	v1alpha1.ControlMessageHeader,
	v1alpha1.ControlMessageTicker,
	v1alpha1.ControlMessageFrame,
	v1alpha1.ControlMessageSlide,
}

// NewHub creates a hub; it must be started with Run
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		broadcast:   make(chan outbound, 64),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		connections: make(map[*connection]bool),
		latest:      make(map[v1alpha1.ControlMessageType][]byte),
		done:        make(chan struct{}),
		clock:       time.Now,
		logger:      logger,
	}
}

// Run serves connections until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.connections {
			delete(h.connections, c)
			close(c.send)
		}
		h.updateCount()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.connections[c] = true
			h.updateCount()
			h.replay(c)
			h.logger.Info("surface connected",
				"connectionId", c.id,
				"remoteAddr", c.remoteAddr,
				"connections", len(h.connections),
			)
		case c := <-h.unregister:
			if _, ok := h.connections[c]; ok {
				delete(h.connections, c)
				close(c.send)
				h.updateCount()
				h.logger.Info("surface disconnected",
					"connectionId", c.id,
					"connections", len(h.connections),
				)
			}
		case m := <-h.broadcast:
			h.remember(m)
			for c := range h.connections {
				select {
				case c.send <- m.data:
				default:
					h.logger.Warn("dropping slow surface", "connectionId", c.id)
					close(c.send)
					delete(h.connections, c)
					h.updateCount()
				}
			}
		}
	}
}

func (h *Hub) remember(m outbound) {
	h.latest[m.kind] = m.data
	if m.kind == v1alpha1.ControlMessageFrame {
		delete(h.latest, v1alpha1.ControlMessageSlide)
	}
}

func (h *Hub) replay(c *connection) {
	for _, kind := range replayOrder {
		data, ok := h.latest[kind]
		if !ok {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.connections)))
	metrics.SurfaceConnections.Set(float64(len(h.connections)))
}

// Connections returns the number of connected surfaces
func (h *Hub) Connections() int {
	return int(h.count.Load())
}

// ShowFrame replaces the main display area on every surface
func (h *Hub) ShowFrame(f v1alpha1.Frame) {
	msg := v1alpha1.NewControlMessage(v1alpha1.ControlMessageFrame, h.clock())
	msg.Frame = &f
	h.publish(msg)
}

// ShowSlide moves the current slideshow to another image
func (h *Hub) ShowSlide(s v1alpha1.SlideStep) {
	msg := v1alpha1.NewControlMessage(v1alpha1.ControlMessageSlide, h.clock())
	msg.Slide = &s
	h.publish(msg)
}

// ShowTicker replaces the announcement banner
func (h *Hub) ShowTicker(t v1alpha1.TickerView) {
	msg := v1alpha1.NewControlMessage(v1alpha1.ControlMessageTicker, h.clock())
	msg.Ticker = &t
	h.publish(msg)
}

// ShowHeader replaces the header weather readout
func (h *Hub) ShowHeader(hv v1alpha1.HeaderView) {
	msg := v1alpha1.NewControlMessage(v1alpha1.ControlMessageHeader, h.clock())
	msg.Header = &hv
	h.publish(msg)
}

func (h *Hub) publish(msg v1alpha1.ControlMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal control message",
			"error", err,
			"type", msg.Type,
		)
		return
	}

	select {
	case h.broadcast <- outbound{kind: msg.Type, data: data}:
	case <-h.done:
	}
}

// ServeWs upgrades a kiosk browser connection
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			"error", err,
			"remoteAddr", r.RemoteAddr,
		)
		return
	}

	c := &connection{
		id:         uuid.New(),
		remoteAddr: r.RemoteAddr,
		send:       make(chan []byte, 256),
		ws:         ws,
		hub:        h,
		logger:     h.logger,
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = ws.Close()
		return
	}

	go c.writePump()
	c.readPump()
}
