// Package ws exposes a read-only debug endpoint: a websocket that
// periodically streams world statistics (loaded/dirty chunk counts,
// edit counter, world digest) to a local diagnostics page. It never
// mutates the world and carries no gameplay traffic.
package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// StatsFunc snapshots whatever the debug stream should publish. It is
// called on the server's timer goroutine, so implementations must be
// safe to call concurrently with the simulation (the driver wraps it in
// its frame-loop mailbox).
type StatsFunc func() any

type Server struct {
	stats    StatsFunc
	interval time.Duration
	log      *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(stats StatsFunc, interval time.Duration, logger *log.Logger) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		stats:    stats,
		interval: interval,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Drain client frames so pings and close frames are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for range ticker.C {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(s.stats()); err != nil {
				if s.log != nil {
					s.log.Printf("debug ws: %v", err)
				}
				return
			}
		}
	}
}
