package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airport-checkin/internal/config"
	"github.com/iliyamo/airport-checkin/internal/model"
	"github.com/iliyamo/airport-checkin/internal/repository"
	"github.com/iliyamo/airport-checkin/internal/seatstore"
	"github.com/iliyamo/airport-checkin/internal/service"
)

type frame struct {
	Type         string        `json:"type"`
	RequestID    string        `json:"request_id"`
	Request      string        `json:"request"`
	Reason       string        `json:"reason"`
	FlightNumber string        `json:"flight_number"`
	SeatNumber   string        `json:"seat_number"`
	Status       string        `json:"status"`
	Seq          uint64        `json:"seq"`
	Flight       *model.Flight `json:"flight"`
	Seat         *model.Seat   `json:"seat"`
}

type testServer struct {
	srv      *httptest.Server
	gateway  *Gateway
	registry *Registry
	store    *seatstore.Store
}

func newTestServer(t *testing.T, cfg config.SessionConfig) *testServer {
	t.Helper()
	repo := repository.NewSeededMemoryRepo()
	store := seatstore.New(repo)
	require.NoError(t, store.Load(context.Background(), repo))
	reg := NewRegistry()
	coord := service.NewCoordinator(service.Options{
		Store:      store,
		Passengers: repo,
		Records:    repo,
		Notifier:   NewBroadcaster(reg),
	})
	gw := NewGateway(reg, coord, cfg)
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, gateway: gw, registry: reg, store: store}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, req Request) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
}

// readUntil returns the first frame of the given type, skipping others.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == typ {
			return f
		}
	}
}

func TestSessionSubscribeAndReceiveSeatAssigned(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	watcher := ts.dial(t)
	desk := ts.dial(t)

	send(t, watcher, Request{Type: RequestSubscribe, RequestID: "s1", FlightNumber: "MN123"})
	rep := readUntil(t, watcher, ReplySuccess)
	assert.Equal(t, "s1", rep.RequestID)
	assert.Equal(t, RequestSubscribe, rep.Request)
	require.NotNil(t, rep.Flight)
	assert.Equal(t, "MN123", rep.Flight.FlightNumber)

	send(t, desk, Request{Type: RequestReserveSeat, RequestID: "r1", FlightNumber: "MN123", SeatNumber: "1A", PassportNumber: "AA12345"})
	ok := readUntil(t, desk, ReplySuccess)
	assert.Equal(t, "r1", ok.RequestID)
	require.NotNil(t, ok.Seat)
	assert.True(t, ok.Seat.Occupied)

	ev := readUntil(t, watcher, string(EventSeatAssigned))
	assert.Equal(t, "1A", ev.SeatNumber)
	assert.Equal(t, uint64(1), ev.Seq)
	done := readUntil(t, watcher, string(EventCheckInCompleted))
	assert.Equal(t, uint64(1), done.Seq)

	seat, err := ts.store.GetSeat(1, "1A")
	require.NoError(t, err)
	assert.True(t, seat.Occupied)
}

func TestSessionSeatOccupiedReply(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	conn := ts.dial(t)

	send(t, conn, Request{Type: RequestReserveSeat, RequestID: "1", FlightID: 1, SeatNumber: "1A", PassportNumber: "AA12345"})
	readUntil(t, conn, ReplySuccess)
	send(t, conn, Request{Type: RequestReserveSeat, RequestID: "2", FlightID: 1, SeatNumber: "1A", PassportNumber: "BB99999"})
	rep := readUntil(t, conn, ReplyError)
	assert.Equal(t, "2", rep.RequestID)
	assert.Equal(t, service.ReasonSeatOccupied, rep.Reason)
}

func TestSessionMalformedMessageKeepsSessionOpen(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	conn := ts.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	rep := readUntil(t, conn, ReplyError)
	assert.Equal(t, service.ReasonInvalidMessage, rep.Reason)

	send(t, conn, Request{Type: "dance", RequestID: "x"})
	rep = readUntil(t, conn, ReplyError)
	assert.Equal(t, service.ReasonInvalidMessage, rep.Reason)
	assert.Equal(t, "x", rep.RequestID)

	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "NOPE1"})
	rep = readUntil(t, conn, ReplyError)
	assert.Equal(t, service.ReasonFlightNotFound, rep.Reason)

	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
	readUntil(t, conn, ReplySuccess)
}

func TestSessionFlightStatusBroadcast(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	board := ts.dial(t)
	agent := ts.dial(t)

	send(t, board, Request{Type: RequestSubscribe, FlightNumber: AllFlights})
	readUntil(t, board, ReplySuccess)

	send(t, agent, Request{Type: RequestUpdateFlightStatus, FlightNumber: "MN123", Status: "Delayed"})
	rep := readUntil(t, agent, ReplySuccess)
	require.NotNil(t, rep.Flight)
	assert.Equal(t, model.FlightStatusDelayed, rep.Flight.Status)

	ev := readUntil(t, board, string(EventFlightStatusChanged))
	assert.Equal(t, "MN123", ev.FlightNumber)
	assert.Equal(t, "Delayed", ev.Status)

	send(t, agent, Request{Type: RequestUpdateFlightStatus, FlightNumber: "MN123", Status: "Lost"})
	bad := readUntil(t, agent, ReplyError)
	assert.Equal(t, service.ReasonInvalidStatus, bad.Reason)
}

func TestSessionUnsubscribeStopsDelivery(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	conn := ts.dial(t)

	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
	readUntil(t, conn, ReplySuccess)
	send(t, conn, Request{Type: RequestUnsubscribe, RequestID: "u", FlightNumber: "MN123"})
	rep := readUntil(t, conn, ReplySuccess)
	assert.Equal(t, "u", rep.RequestID)
	assert.Equal(t, 0, ts.registry.GroupSize("MN123"))

	// own reservation still gets a reply, but no pushed events
	send(t, conn, Request{Type: RequestReserveSeat, RequestID: "r", FlightNumber: "MN123", SeatNumber: "2A", PassportNumber: "AA12345"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, ReplySuccess, f.Type)
	assert.Equal(t, "r", f.RequestID)
}

func TestSessionUnsubscribeIsIdempotent(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	conn := ts.dial(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"never subscribed", Request{Type: RequestUnsubscribe, RequestID: "a", FlightNumber: "MN123"}},
		{"again", Request{Type: RequestUnsubscribe, RequestID: "b", FlightNumber: "MN123"}},
		{"unknown flight number", Request{Type: RequestUnsubscribe, RequestID: "c", FlightNumber: "NOPE1"}},
		{"unknown flight id", Request{Type: RequestUnsubscribe, RequestID: "d", FlightID: 99}},
		{"wildcard", Request{Type: RequestUnsubscribe, RequestID: "e", FlightNumber: AllFlights}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.req)
			var f frame
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
			require.NoError(t, conn.ReadJSON(&f))
			assert.Equal(t, ReplySuccess, f.Type)
			assert.Equal(t, tt.req.RequestID, f.RequestID)
		})
	}

	send(t, conn, Request{Type: RequestUnsubscribe, RequestID: "f"})
	rep := readUntil(t, conn, ReplyError)
	assert.Equal(t, service.ReasonInvalidRequest, rep.Reason)
	assert.Equal(t, 1, ts.registry.Count())
}

func TestSessionLargeMalformedFrameKeepsSessionOpen(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	conn := ts.dial(t)

	junk := []byte("{" + strings.Repeat("x", 5<<10))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, junk))
	rep := readUntil(t, conn, ReplyError)
	assert.Equal(t, service.ReasonInvalidMessage, rep.Reason)
	assert.Equal(t, 1, ts.registry.Count())

	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
	readUntil(t, conn, ReplySuccess)
}

func TestGatewayShutdownClosesSessions(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	a := ts.dial(t)
	b := ts.dial(t)
	for _, c := range []*websocket.Conn{a, b} {
		send(t, c, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
		readUntil(t, c, ReplySuccess)
	}
	require.Equal(t, 2, ts.registry.Count())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ts.gateway.Shutdown(ctx))
	assert.Equal(t, 0, ts.registry.Count())
	assert.Equal(t, 0, ts.registry.GroupSize("MN123"))

	for _, c := range []*websocket.Conn{a, b} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := c.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	}

	late := ts.dial(t)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Equal(t, 0, ts.registry.Count())
}

func TestSessionRateLimited(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.MessageRate = 0.001
	cfg.MessageBurst = 1
	ts := newTestServer(t, cfg)
	conn := ts.dial(t)

	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
	readUntil(t, conn, ReplySuccess)
	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
	rep := readUntil(t, conn, ReplyError)
	assert.Equal(t, service.ReasonRateLimited, rep.Reason)
}

func TestSessionDisconnectUnregisters(t *testing.T) {
	ts := newTestServer(t, config.DefaultSessionConfig())
	conn := ts.dial(t)
	send(t, conn, Request{Type: RequestSubscribe, FlightNumber: "MN123"})
	readUntil(t, conn, ReplySuccess)
	assert.Equal(t, 1, ts.registry.Count())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return ts.registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, ts.registry.GroupSize("MN123"))
}

func TestSlowClientIsClosed(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.SendBuffer = 1
	reg := NewRegistry()
	s := NewSession(nil, reg, nil, cfg)
	reg.Register(s)

	require.NoError(t, s.Send([]byte("one")))
	assert.ErrorIs(t, s.Send([]byte("two")), ErrSlowClient)
	select {
	case <-s.Done():
	default:
		t.Fatal("session should be closed")
	}
	assert.ErrorIs(t, s.Send([]byte("three")), ErrSessionClosed)
	assert.Equal(t, 0, reg.Count())
}
