package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/gaming-lounge-booking/internal/metrics"
)

// ErrBufferFull is returned when the outgoing buffer has no room; the event
// is dropped.
var ErrBufferFull = errors.New("event buffer full")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publisher closed")

const (
	defaultBuffer      = 256
	defaultDialTimeout = 2 * time.Second
	defaultSendTimeout = 5 * time.Second
)

type outgoing struct {
	key  string
	body []byte
	at   time.Time
}

// Publisher sends JSON events to a durable topic exchange.  Publish only
// enqueues; one background goroutine owns the broker connection, dials it
// lazily with a short timeout and re-dials after a failure.  A broker outage
// costs the events sent while it lasts and never the caller's time.
type Publisher struct {
	url         string
	exchange    string
	log         zerolog.Logger
	dialTimeout time.Duration
	sendTimeout time.Duration
	send        func(ctx context.Context, m outgoing) error

	mu     sync.RWMutex
	closed bool
	queue  chan outgoing
	done   chan struct{}

	// owned by the run goroutine
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for exchange at url and starts its
// sender.  No connection is made until the first event.
func NewPublisher(url, exchange string, log zerolog.Logger) *Publisher {
	return newPublisher(url, exchange, log, defaultBuffer, nil)
}

func newPublisher(url, exchange string, log zerolog.Logger, buffer int, send func(context.Context, outgoing) error) *Publisher {
	p := &Publisher{
		url:         url,
		exchange:    exchange,
		log:         log,
		dialTimeout: defaultDialTimeout,
		sendTimeout: defaultSendTimeout,
		queue:       make(chan outgoing, buffer),
		done:        make(chan struct{}),
	}
	p.send = send
	if p.send == nil {
		p.send = p.publishAMQP
	}
	go p.run()
	return p
}

// Publish marshals v and queues it under routing key key.  It never waits
// for the broker.
func (p *Publisher) Publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- outgoing{key: key, body: body, at: time.Now().UTC()}:
		return nil
	default:
		metrics.EventsPublished.WithLabelValues(key, "dropped").Inc()
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	defer p.closeConn()
	for m := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.sendTimeout)
		err := p.send(ctx, m)
		cancel()
		if err != nil {
			metrics.EventsPublished.WithLabelValues(m.key, "error").Inc()
			p.log.Warn().Err(err).Str("key", m.key).Msg("publish event failed")
			continue
		}
		metrics.EventsPublished.WithLabelValues(m.key, "ok").Inc()
	}
}

func (p *Publisher) publishAMQP(ctx context.Context, m outgoing) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, m.key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    m.at,
		Type:         m.key,
		Body:         m.body,
	})
	if err != nil {
		p.closeConn()
	}
	return err
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeConn()
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, p.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func declareExchange(ch *amqp.Channel, name string) error {
	if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	return nil
}

// Close stops accepting events, flushes the buffer and releases the broker
// connection.  It waits at most until ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) closeConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
