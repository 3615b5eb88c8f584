package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

// handleWebSocket upgrades the connection and streams engine lifecycle
// notifications (template loads, renders, directive errors, cleanups)
// as JSON until the client disconnects.
func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err = conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// checkOrigin validates the Origin header against the configured server
// address plus the usual loopback forms. Requests without an origin are
// rejected.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	allowed := []string{
		fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		fmt.Sprintf("localhost:%d", s.cfg.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", s.cfg.Server.Port),
	}
	allowed = append(allowed, s.cfg.Server.AllowedOrigins...)

	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	return false
}
