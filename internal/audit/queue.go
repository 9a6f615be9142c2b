package audit

import (
	"context"
	"errors"
)

// Queue is a Store that hands records to a Worker over a buffered channel
// instead of writing them inline, keeping slow sinks off the request path.
type Queue struct {
	inbox chan Record
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{inbox: make(chan Record, size)}
}

// Append enqueues without blocking. A full buffer drops the record, which
// the publisher reports as a sink failure; best-effort logging never stalls
// a prediction.
func (q *Queue) Append(_ context.Context, rec Record) error {
	select {
	case q.inbox <- rec:
		return nil
	default:
		return errors.New("audit queue full")
	}
}

// Inbox is the channel a Worker drains.
func (q *Queue) Inbox() <-chan Record {
	return q.inbox
}
