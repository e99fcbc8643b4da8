// Package mailbox provides an unbounded, ordered hand-off between a producer
// that must never block and a single consumer reading from a channel.
package mailbox

import "sync"

// Mailbox queues values pushed by any goroutine and delivers them in order on
// C. After Stop returns, C is closed and nothing further is delivered.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool

	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}
	out    chan T
	once   sync.Once
}

// New starts the delivery goroutine.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		out:    make(chan T),
	}
	go m.run()
	return m
}

// C is the delivery channel.
func (m *Mailbox[T]) C() <-chan T {
	return m.out
}

// Push enqueues v. It reports false once the mailbox is stopped.
func (m *Mailbox[T]) Push(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, v)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return true
}

// Len is the number of values not yet delivered.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Stop discards pending values, closes C and waits for the delivery goroutine
// to exit. Safe to call more than once and from the consumer goroutine.
func (m *Mailbox[T]) Stop() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.queue = nil
		m.mu.Unlock()
		close(m.done)
	})
	<-m.exited
}

func (m *Mailbox[T]) run() {
	defer close(m.exited)
	defer close(m.out)
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			select {
			case <-m.wake:
				continue
			case <-m.done:
				return
			}
		}
		v := m.queue[0]
		var zero T
		m.queue[0] = zero
		m.queue = m.queue[1:]
		m.mu.Unlock()

		select {
		case m.out <- v:
		case <-m.done:
			return
		}
	}
}
