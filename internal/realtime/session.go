package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/iliyamo/airport-checkin/internal/config"
	"github.com/iliyamo/airport-checkin/internal/model"
	"github.com/iliyamo/airport-checkin/internal/service"
)

var (
	// ErrSessionClosed is returned by Send after the session ended.
	ErrSessionClosed = errors.New("session closed")
	// ErrSlowClient is returned by Send when the outbound queue is full.
	// The session is closed as a consequence.
	ErrSlowClient = errors.New("client send buffer full")
)

// Coordinator is the subset of the check-in service a session drives.
type Coordinator interface {
	AssignSeat(ctx context.Context, flightID uint64, seatNumber, passportNumber string) (*service.Assignment, error)
	UpdateFlightStatus(ctx context.Context, flightID uint64, status model.FlightStatus) (model.Flight, error)
	Flight(flightID uint64) (model.Flight, error)
	FlightByNumber(number string) (model.Flight, error)
}

// Session serves one websocket connection.  A reader goroutine decodes and
// dispatches requests one at a time; a writer goroutine drains the send
// queue and keeps the connection alive with pings.
type Session struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	registry *Registry
	coord    Coordinator
	limiter  *rate.Limiter
	cfg      config.SessionConfig
}

// NewSession wraps an upgraded connection.  Call Run to start serving.
func NewSession(conn *websocket.Conn, reg *Registry, coord Coordinator, cfg config.SessionConfig) *Session {
	cfg = cfg.Normalized()
	return &Session{
		id:       uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, cfg.SendBuffer),
		done:     make(chan struct{}),
		registry: reg,
		coord:    coord,
		limiter:  rate.NewLimiter(rate.Limit(cfg.MessageRate), cfg.MessageBurst),
		cfg:      cfg,
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Send queues a frame without blocking.
func (s *Session) Send(frame []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- frame:
		return nil
	default:
		log.Printf("session: %s cannot keep up; closing", s.id)
		s.Close()
		return ErrSlowClient
	}
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close ends the session.  It unregisters from the registry and lets the
// writer shut the connection down.  Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.registry.Unregister(s.id)
		log.Printf("session: %s closed", s.id)
	})
}

// Run registers the session and serves it until the connection fails.
// It returns once both pumps have stopped.
func (s *Session) Run() {
	s.registry.Register(s)
	select {
	case <-s.done:
		// closed before it was registered
		s.registry.Unregister(s.id)
	default:
	}
	log.Printf("session: %s connected from %s", s.id, s.conn.RemoteAddr())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump()
	}()
	s.readPump()
	wg.Wait()
}

func (s *Session) readPump() {
	defer s.Close()
	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session: %s read: %v", s.id, err)
			}
			return
		}
		s.handle(data)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("session: %s write: %v", s.id, err)
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.cfg.WriteWait))
			return
		}
	}
}

// handle decodes and answers one request.  Bad input never ends the
// session.
func (s *Session) handle(data []byte) {
	if !s.limiter.Allow() {
		s.reply(Reply{Type: ReplyError, Reason: service.ReasonRateLimited, Message: "too many requests"})
		return
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("session: %s malformed message: %v", s.id, err)
		s.reply(Reply{Type: ReplyError, Reason: service.ReasonInvalidMessage, Message: "message is not valid JSON"})
		return
	}

	var rep Reply
	switch req.Type {
	case RequestSubscribe:
		rep = s.subscribe(req)
	case RequestUnsubscribe:
		rep = s.unsubscribe(req)
	case RequestReserveSeat:
		rep = s.reserveSeat(req)
	case RequestUpdateFlightStatus:
		rep = s.updateStatus(req)
	default:
		log.Printf("session: %s unknown request type %q", s.id, req.Type)
		rep = Reply{Type: ReplyError, Reason: service.ReasonInvalidMessage, Message: fmt.Sprintf("unknown request type %q", req.Type)}
	}
	rep.RequestID = req.RequestID
	rep.Request = req.Type
	s.reply(rep)
}

func (s *Session) reply(r Reply) {
	r.Timestamp = nowMillis()
	frame, err := json.Marshal(r)
	if err != nil {
		log.Printf("session: %s marshal reply: %v", s.id, err)
		return
	}
	_ = s.Send(frame)
}

func (s *Session) subscribe(req Request) Reply {
	if strings.TrimSpace(req.FlightNumber) == AllFlights {
		if err := s.registry.Subscribe(s.id, AllFlights); err != nil {
			return failure(err)
		}
		return Reply{Type: ReplySuccess, Message: "subscribed to all flights"}
	}
	f, err := s.flight(req)
	if err != nil {
		return failure(err)
	}
	if err := s.registry.Subscribe(s.id, f.FlightNumber); err != nil {
		return failure(err)
	}
	return Reply{Type: ReplySuccess, Flight: &f}
}

// unsubscribe succeeds even for flights the session never watched or that
// do not exist.
func (s *Session) unsubscribe(req Request) Reply {
	key := strings.TrimSpace(req.FlightNumber)
	if key == "" && req.FlightID == 0 {
		return failure(fmt.Errorf("%w: flight_id or flight_number is required", service.ErrInvalidInput))
	}
	if key != AllFlights {
		f, err := s.flight(req)
		if err != nil {
			return Reply{Type: ReplySuccess, Message: "not subscribed"}
		}
		key = f.FlightNumber
	}
	s.registry.Unsubscribe(s.id, key)
	return Reply{Type: ReplySuccess}
}

func (s *Session) reserveSeat(req Request) Reply {
	f, err := s.flight(req)
	if err != nil {
		return failure(err)
	}
	res, err := s.coord.AssignSeat(context.Background(), f.ID, req.SeatNumber, req.PassportNumber)
	if err != nil {
		return failure(err)
	}
	return Reply{Type: ReplySuccess, Flight: &res.Flight, Seat: &res.Seat, BoardingPass: &res.BoardingPass}
}

func (s *Session) updateStatus(req Request) Reply {
	f, err := s.flight(req)
	if err != nil {
		return failure(err)
	}
	status, err := model.ParseFlightStatus(req.Status)
	if err != nil {
		return failure(fmt.Errorf("%w: %v", service.ErrInvalidStatus, err))
	}
	updated, err := s.coord.UpdateFlightStatus(context.Background(), f.ID, status)
	if err != nil {
		return failure(err)
	}
	return Reply{Type: ReplySuccess, Flight: &updated}
}

func (s *Session) flight(req Request) (model.Flight, error) {
	switch {
	case req.FlightID != 0:
		return s.coord.Flight(req.FlightID)
	case strings.TrimSpace(req.FlightNumber) != "":
		return s.coord.FlightByNumber(strings.TrimSpace(req.FlightNumber))
	}
	return model.Flight{}, fmt.Errorf("%w: flight_id or flight_number is required", service.ErrInvalidInput)
}

func failure(err error) Reply {
	return Reply{Type: ReplyError, Reason: service.Reason(err), Message: err.Error()}
}
