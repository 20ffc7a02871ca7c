package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// subscriber holds a channel and its send timeout configuration.
type subscriber[T any] struct {
	id       uint64
	ch       chan<- T
	timeout  *time.Duration // nil means non-blocking
	inactive atomic.Bool
	dropped  atomic.Int32
}

func (s *subscriber[T]) send(msg T) {
	if s.inactive.Load() {
		s.dropped.Add(1)
		return
	}
	var err error
	if s.timeout != nil {
		err = SendWithTimeout(s.ch, msg, *s.timeout)
	} else {
		err = SendNonBlock(s.ch, msg)
	}
	if err != nil {
		// closed channels go inactive, full ones just count drops
		s.dropped.Add(1)
		if errors.Is(err, ErrChannelClosed) {
			s.inactive.Store(true)
		}
	}
}

// Broadcaster broadcasts messages from a single input channel to multiple subscriber channels.
// It owns the input channel and handles graceful shutdown via context cancellation.
//
// Subscribers may join and leave at any time, before or after Run. A message
// reaches the subscribers registered when it is broadcast.
//
// Messages are sent to subscribers using the configured send strategy:
// - Non-blocking (default): Messages are dropped if channel is full
// - With timeout: Messages are dropped if send times out
//
// On context cancellation, the input channel is closed and all remaining messages
// are drained to subscribers before shutdown completes.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers []*subscriber[T]
	nextID      uint64

	input   chan T
	started atomic.Bool
	wg      sync.WaitGroup
}

// NewBroadcaster creates a new Broadcaster for messages of type T.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe adds a channel to receive broadcasted messages in non-blocking mode.
// If the channel is full, messages will be dropped for that subscriber.
// The returned func removes the subscription; it never closes ch.
func (b *Broadcaster[T]) Subscribe(ch chan<- T) (func(), error) {
	if ch == nil {
		return nil, fmt.Errorf("subscriber channel cannot be nil")
	}

	return b.add(ch, nil), nil
}

// SubscribeWithTimeout adds a channel to receive broadcasted messages with a send timeout.
// If the send times out, messages will be dropped for that subscriber.
func (b *Broadcaster[T]) SubscribeWithTimeout(ch chan<- T, timeout time.Duration) (func(), error) {
	if ch == nil {
		return nil, fmt.Errorf("subscriber channel cannot be nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("send timeout must be positive, got %s", timeout)
	}

	return b.add(ch, &timeout), nil
}

func (b *Broadcaster[T]) add(ch chan<- T, timeout *time.Duration) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, &subscriber[T]{
		id:      id,
		ch:      ch,
		timeout: timeout,
	})

	var once sync.Once

	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Broadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub.id == id {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Run starts the broadcaster and returns the input channel for sending messages.
//
// The returned channel is owned by Broadcaster and will be closed on context cancellation.
// After closure, all remaining messages are drained to subscribers.
//
// Returns error if already started.
func (b *Broadcaster[T]) Run(ctx context.Context, buffer int) (chan<- T, error) {
	if !b.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("broadcaster already started")
	}

	if buffer < 0 {
		buffer = 0
	}
	b.input = make(chan T, buffer)

	b.wg.Go(func() {
		for msg := range b.input {
			b.mu.RLock()
			for _, sub := range b.subscribers {
				sub.send(msg)
			}
			b.mu.RUnlock()
		}
	})

	// Shutdown handler: close input and wait for drain to complete
	go func() {
		<-ctx.Done()
		close(b.input)
		b.wg.Wait()
	}()

	return b.input, nil
}

// Wait blocks until the broadcaster has drained after context cancellation.
// Multiple goroutines can safely call Wait().
func (b *Broadcaster[T]) Wait() {
	b.wg.Wait()
}

// SubscriberStats reports delivery health for one subscriber.
type SubscriberStats struct {
	Dropped  int
	Inactive bool
}

// Stats returns per-subscriber stats in subscription order.
func (b *Broadcaster[T]) Stats() []SubscriberStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := make([]SubscriberStats, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		stats = append(stats, SubscriberStats{
			Dropped:  int(sub.dropped.Load()),
			Inactive: sub.inactive.Load(),
		})
	}

	return stats
}

// Len returns the number of current subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}
