package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iliyamo/airport-checkin/internal/config"
)

// Gateway upgrades HTTP requests to websocket sessions.
type Gateway struct {
	registry *Registry
	coord    Coordinator
	cfg      config.SessionConfig
	upgrader websocket.Upgrader

	mu      sync.Mutex
	closing bool
	live    map[*Session]struct{}
	wg      sync.WaitGroup
}

// NewGateway returns a Gateway registering sessions in reg.  When
// cfg.AllowedOrigins is empty any origin is accepted.
func NewGateway(reg *Registry, coord Coordinator, cfg config.SessionConfig) *Gateway {
	g := &Gateway{registry: reg, coord: coord, cfg: cfg, live: make(map[*Session]struct{})}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range g.cfg.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// ServeHTTP blocks for the lifetime of the session.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		log.Printf("session: upgrade failed: %v", err)
		return
	}

	g.mu.Lock()
	if g.closing {
		g.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	s := NewSession(conn, g.registry, g.coord, g.cfg)
	g.live[s] = struct{}{}
	g.wg.Add(1)
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.live, s)
		g.mu.Unlock()
		g.wg.Done()
	}()
	s.Run()
}

// Shutdown refuses new sessions, closes every open one with a normal
// closure frame and waits until their goroutines have stopped or ctx is
// done.  http.Server.Shutdown does not track hijacked websocket
// connections, so callers run both.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	open := make([]*Session, 0, len(g.live))
	for s := range g.live {
		open = append(open, s)
	}
	g.mu.Unlock()

	log.Printf("session: closing %d open sessions", len(open))
	for _, s := range open {
		s.Close()
	}

	drained := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
