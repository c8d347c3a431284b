package engine

import "sync"

// envelopeQueue is an unbounded FIFO of inbound envelopes.
//
// Transports enqueue from their own goroutines while Run dequeues. A
// buffered signal channel lets Run wait for work and for ctx at once.
type envelopeQueue struct {
	mu        sync.Mutex
	envelopes []Envelope
	closed    bool
	signal    chan struct{} // buffered, size 1
}

func newEnvelopeQueue() *envelopeQueue {
	return &envelopeQueue{
		envelopes: make([]Envelope, 0, 16),
		signal:    make(chan struct{}, 1),
	}
}

// Enqueue appends e. Returns false once the queue is closed.
func (q *envelopeQueue) Enqueue(e Envelope) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.envelopes = append(q.envelopes, e)

	// buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front envelope without blocking.
func (q *envelopeQueue) TryDequeue() (Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.envelopes) == 0 {
		return Envelope{}, false
	}

	e := q.envelopes[0]
	// clear the slot so the backing array does not pin message text
	q.envelopes[0] = Envelope{}
	if len(q.envelopes) == 1 {
		q.envelopes = q.envelopes[:0]
	} else {
		q.envelopes = q.envelopes[1:]
	}
	return e, true
}

// Wait returns a channel that fires when envelopes may be available, and
// is closed by Close.
func (q *envelopeQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued envelopes.
func (q *envelopeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.envelopes)
}

// Close rejects further envelopes and wakes the waiter.
func (q *envelopeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
