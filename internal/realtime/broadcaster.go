package realtime

import (
	"encoding/json"
	"log"
	"sort"
	"sync"

	"github.com/iliyamo/airport-checkin/internal/model"
)

// maxPending bounds how many out-of-order commits a flight may hold back.
// Past it the sequencer skips the missing commit rather than stall.
const maxPending = 1024

// Broadcaster delivers events to the registry's subscribers.  Events of
// one flight are delivered in commit sequence order even when publishers
// race: a commit that arrives early is held until its predecessors have
// been delivered.  Delivery never blocks on a slow client.
type Broadcaster struct {
	registry *Registry
	now      func() int64

	mu     sync.Mutex
	queues map[uint64]*flightQueue
}

type flightQueue struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64][]Event
}

// NewBroadcaster returns a Broadcaster delivering to r's sessions.
func NewBroadcaster(r *Registry) *Broadcaster {
	return &Broadcaster{registry: r, now: nowMillis, queues: make(map[uint64]*flightQueue)}
}

// NotifyCheckIn announces a committed seat assignment as a seat_assigned
// event followed by a check_in_completed event.
func (b *Broadcaster) NotifyCheckIn(seq uint64, flight model.Flight, seatNumber, passportNumber string) {
	ts := b.now()
	b.Publish(seq,
		Event{Type: EventSeatAssigned, FlightID: flight.ID, FlightNumber: flight.FlightNumber, SeatNumber: seatNumber, Timestamp: ts},
		Event{Type: EventCheckInCompleted, FlightID: flight.ID, FlightNumber: flight.FlightNumber, SeatNumber: seatNumber, PassportNumber: passportNumber, Timestamp: ts},
	)
}

// NotifyFlightStatusChanged announces a committed status change.
func (b *Broadcaster) NotifyFlightStatusChanged(seq uint64, flight model.Flight) {
	b.Publish(seq, Event{
		Type:         EventFlightStatusChanged,
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
		Status:       flight.Status,
		Timestamp:    b.now(),
	})
}

// Publish hands the events of one commit to the sequencer.  All events
// must belong to the same flight.  seq 0 bypasses ordering and delivers
// at once.
func (b *Broadcaster) Publish(seq uint64, events ...Event) {
	if len(events) == 0 {
		return
	}
	for i := range events {
		events[i].Seq = seq
	}
	if seq == 0 {
		b.deliver(events)
		return
	}

	q := b.queue(events[0].FlightID)
	q.mu.Lock()
	defer q.mu.Unlock()
	if seq < q.next {
		log.Printf("broadcast: flight %d seq %d already delivered; dropping", events[0].FlightID, seq)
		return
	}
	q.pending[seq] = events
	if len(q.pending) > maxPending {
		skip := lowest(q.pending)
		log.Printf("broadcast: flight %d seq %d never arrived; skipping to %d", events[0].FlightID, q.next, skip)
		q.next = skip
	}
	// delivering under q.mu keeps concurrent publishers in order
	for {
		evs, ok := q.pending[q.next]
		if !ok {
			return
		}
		delete(q.pending, q.next)
		q.next++
		b.deliver(evs)
	}
}

func (b *Broadcaster) queue(flightID uint64) *flightQueue {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[flightID]
	if !ok {
		q = &flightQueue{next: 1, pending: make(map[uint64][]Event)}
		b.queues[flightID] = q
	}
	return q
}

func (b *Broadcaster) deliver(events []Event) {
	subs := b.registry.Subscribers(events[0].FlightNumber)
	if len(subs) == 0 {
		return
	}
	for _, ev := range events {
		frame, err := json.Marshal(ev)
		if err != nil {
			log.Printf("broadcast: marshal %s: %v", ev.Type, err)
			continue
		}
		for _, c := range subs {
			if err := c.Send(frame); err != nil {
				log.Printf("broadcast: %s to session %s failed: %v", ev.Type, c.ID(), err)
			}
		}
	}
}

func lowest(m map[uint64][]Event) uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys[0]
}
