package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu   sync.Mutex
	keys []string
}

func (s *sink) send(_ context.Context, m outgoing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, m.key)
	return nil
}

func TestPublishFlushesOnClose(t *testing.T) {
	s := &sink{}
	p := newPublisher("amqp://unused", "lounge.events", zerolog.Nop(), 8, s.send)

	require.NoError(t, p.Publish(context.Background(), KeyReservationCreated, map[string]int{"id": 1}))
	require.NoError(t, p.Publish(context.Background(), KeyReservationCancelled, map[string]int{"id": 1}))
	require.NoError(t, p.Close(context.Background()))

	assert.Equal(t, []string{KeyReservationCreated, KeyReservationCancelled}, s.keys)
	assert.ErrorIs(t, p.Publish(context.Background(), KeyReservationCreated, nil), ErrClosed)
}

func TestPublishDoesNotWaitForStalledBroker(t *testing.T) {
	release := make(chan struct{})
	stalled := func(ctx context.Context, _ outgoing) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return ctx.Err()
	}
	p := newPublisher("amqp://unused", "lounge.events", zerolog.Nop(), 1, stalled)
	defer func() {
		close(release)
		_ = p.Close(context.Background())
	}()

	// first event is taken by the sender and stalls, second fills the buffer
	require.NoError(t, p.Publish(context.Background(), KeyReservationCreated, 1))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, time.Millisecond)
	start := time.Now()
	require.NoError(t, p.Publish(context.Background(), KeyReservationCreated, 2))

	err := p.Publish(context.Background(), KeyReservationCreated, 3)
	assert.ErrorIs(t, err, ErrBufferFull)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPublishRejectsUnmarshalable(t *testing.T) {
	p := newPublisher("amqp://unused", "lounge.events", zerolog.Nop(), 1, (&sink{}).send)
	defer p.Close(context.Background())
	assert.Error(t, p.Publish(context.Background(), KeyReservationCreated, make(chan int)))
}
