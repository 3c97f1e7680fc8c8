package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	livePushInterval = 5 * time.Second
	liveWriteTimeout = 5 * time.Second
)

var liveUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(r.Host), strings.TrimSpace(u.Host))
	},
}

// handleLive streams the latest batch report to the client on an interval
// until the client disconnects. Requires a running monitor.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.live == nil {
		writeError(w, http.StatusServiceUnavailable, "live feed unavailable: no monitor running")
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveLiveConnection(conn)
}

func (s *Server) serveLiveConnection(conn *websocket.Conn) {
	defer conn.Close()

	if err := s.pushLatest(conn); err != nil {
		return
	}

	ticker := time.NewTicker(livePushInterval)
	defer ticker.Stop()

	// Drain reads so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := s.pushLatest(conn); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) pushLatest(conn *websocket.Conn) error {
	rep, ok := s.live.Latest()
	if !ok {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(rep)
}
