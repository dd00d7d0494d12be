package queue

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends check-in events to RabbitMQ.  Each publish opens its own
// connection so a broker outage never leaves a broken channel behind.
// Errors are logged and returned to allow callers to ignore failures
// without interrupting the main request flow.
type Publisher struct {
    url string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishCheckInCompleted publishes ev to the checkin.completed queue.
// Messages are marked as persistent.
func (p *Publisher) PublishCheckInCompleted(ctx context.Context, ev CheckInCompletedEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        CheckInCompletedQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    pub, err := newPublishing(ev, time.Now())
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    if err := ch.PublishWithContext(ctx,
        "",                    // default exchange
        CheckInCompletedQueue, // routing key = queue name
        false,                 // mandatory
        false,                 // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

func newPublishing(ev CheckInCompletedEvent, now time.Time) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    now.UTC(),
        Type:         "checkin.completed",
        Body:         body,
    }, nil
}
