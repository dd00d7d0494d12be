// Package realtime pushes committed check-in changes to websocket clients.
// A Registry tracks live sessions and the flights they watch, a
// Broadcaster fans events out in commit order and a Session serves one
// websocket connection.
package realtime

import (
	"errors"
	"sort"
	"sync"
)

// AllFlights is the subscription key of status boards that watch every
// flight.
const AllFlights = "*"

// ErrUnknownSession is returned when subscribing an unregistered session.
var ErrUnknownSession = errors.New("unknown session")

// Client is anything that can receive pushed frames.  Send must not block;
// a client that cannot keep up returns an error.
type Client interface {
	ID() string
	Send(frame []byte) error
}

// Registry is safe for concurrent use.  Readers get snapshots, so a
// session may unregister while a broadcast to it is in progress.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Client
	groups   map[string]map[string]struct{} // flight -> session ids
	member   map[string]map[string]struct{} // session id -> flights
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Client),
		groups:   make(map[string]map[string]struct{}),
		member:   make(map[string]map[string]struct{}),
	}
}

// Register adds a session.  Registering an id twice replaces the client.
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[c.ID()] = c
	if r.member[c.ID()] == nil {
		r.member[c.ID()] = make(map[string]struct{})
	}
}

// Unregister removes a session and all of its subscriptions.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for flight := range r.member[id] {
		r.leaveLocked(id, flight)
	}
	delete(r.member, id)
	delete(r.sessions, id)
}

// Subscribe adds the session to a flight group.  Subscribing twice is a
// no-op.
func (r *Registry) Subscribe(id, flight string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrUnknownSession
	}
	g := r.groups[flight]
	if g == nil {
		g = make(map[string]struct{})
		r.groups[flight] = g
	}
	g[id] = struct{}{}
	r.member[id][flight] = struct{}{}
	return nil
}

// Unsubscribe removes the session from a flight group.  Unknown sessions
// and flights are ignored.
func (r *Registry) Unsubscribe(id, flight string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(id, flight)
	if m := r.member[id]; m != nil {
		delete(m, flight)
	}
}

func (r *Registry) leaveLocked(id, flight string) {
	g := r.groups[flight]
	if g == nil {
		return
	}
	delete(g, id)
	if len(g) == 0 {
		delete(r.groups, flight)
	}
}

// Subscribers returns the sessions subscribed to flight or to AllFlights,
// each at most once.  The slice is a snapshot.
func (r *Registry) Subscribers(flight string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.groups[flight]) + len(r.groups[AllFlights])
	seen := make(map[string]struct{}, n)
	out := make([]Client, 0, n)
	for _, key := range []string{flight, AllFlights} {
		for id := range r.groups[key] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if c, ok := r.sessions[id]; ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Subscriptions lists the flights a session watches, sorted.
func (r *Registry) Subscriptions(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.member[id]))
	for f := range r.member[id] {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GroupSize returns the number of sessions subscribed to exactly flight.
func (r *Registry) GroupSize(flight string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[flight])
}
