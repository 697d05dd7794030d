package daemon

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"lectio/internal/api"
	"lectio/internal/logging"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = (eventsPongWait * 9) / 10
	eventsReadLimit  = 512
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin admits clients that send no Origin (CLI tools, native apps) and
// browser pages served from the API's own host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// handleEvents streams liturgy snapshots over a websocket: the current state
// on connect, then every transition.
func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Debug("events upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := s.svc.WatchLiturgy()
	defer cancel()

	closed := make(chan struct{})
	go discardReads(conn, closed)

	if err := s.writeEvent(conn, api.NewLiturgyEvent(s.svc.LiturgySnapshot(), s.now())); err != nil {
		return
	}

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	done := s.streamContext().Done()
	for {
		select {
		case <-done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(eventsWriteWait))
			return
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, api.NewLiturgyEvent(snap, s.now())); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *apiServer) writeEvent(conn *websocket.Conn, event api.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
	if err := conn.WriteJSON(event); err != nil {
		s.log().Debug("event write failed", logging.Error(err))
		return err
	}
	return nil
}

func (s *apiServer) streamContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCtx
}

// discardReads keeps pong handling alive and reports when the peer goes away.
func discardReads(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(eventsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
