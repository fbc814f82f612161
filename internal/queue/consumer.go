package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AuditConsumer binds a durable queue to every routing key on the events
// exchange and appends one line per event to a log file.
type AuditConsumer struct {
	URL      string
	Exchange string
	Queue    string
	LogPath  string
	Log      zerolog.Logger
}

// Run consumes until ctx is cancelled, re-dialling with exponential backoff
// (capped at 30s) whenever the broker goes away.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("audit consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("audit consumer: loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("audit consumer: set QoS failed")
	}
	if err := declareExchange(ch, c.Exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(c.Queue, "#", c.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.append(d.RoutingKey, d.Body); err != nil {
				c.Log.Error().Err(err).Str("key", d.RoutingKey).Msg("audit consumer: handle message failed")
				_ = d.Nack(false, false) // drop, requeueing a bad message would spin
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *AuditConsumer) append(key string, body []byte) error {
	line, err := FormatAuditLine(key, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAuditLine renders one event as a single human-readable line.
func FormatAuditLine(key string, body []byte) (string, error) {
	switch key {
	case KeyReservationCreated, KeyReservationCancelled, KeyReservationCompleted:
		var ev ReservationEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", key, err)
		}
		line := fmt.Sprintf("[%s] %s | reservation_id=%d | user_id=%d | station_id=%d | start=%s | end=%s | status=%s | total=%s",
			ev.OccurredAt.Format(time.RFC3339), key, ev.ReservationID, ev.UserID, ev.StationID,
			ev.StartTime.Format(time.RFC3339), ev.EndTime.Format(time.RFC3339), ev.Status, ev.TotalPrice.StringFixed(2))
		if ev.PointsDebited > 0 {
			line += fmt.Sprintf(" | points_debited=%d", ev.PointsDebited)
		}
		if ev.PointsAwarded > 0 {
			line += fmt.Sprintf(" | points_awarded=%d", ev.PointsAwarded)
		}
		return line + "\n", nil
	case KeyTournamentRegistered:
		var ev TournamentRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", key, err)
		}
		return fmt.Sprintf("[%s] %s | registration_id=%d | tournament_id=%d | user_id=%d | fee=%s | participants=%d\n",
			ev.OccurredAt.Format(time.RFC3339), key, ev.RegistrationID, ev.TournamentID, ev.UserID,
			ev.PaymentAmount.StringFixed(2), ev.Participants), nil
	}
	return "", fmt.Errorf("unknown routing key %q", key)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
