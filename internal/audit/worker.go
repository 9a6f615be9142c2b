package audit

import "context"

// Worker consumes inference records from a channel and hands them to a
// publisher. It keeps background persistence off the request path without
// wiring queue implementations into scoring code.
type Worker struct {
	publisher *Publisher
	inbox     <-chan Record
}

func NewWorker(publisher *Publisher, inbox <-chan Record) *Worker {
	return &Worker{publisher: publisher, inbox: inbox}
}

// Run drains the inbox until the context is cancelled. Remaining buffered
// records are flushed before returning so shutdown does not drop them.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case rec := <-w.inbox:
					w.publisher.Emit(context.WithoutCancel(ctx), rec)
				default:
					return ctx.Err()
				}
			}
		case rec := <-w.inbox:
			w.publisher.Emit(ctx, rec)
		}
	}
}
