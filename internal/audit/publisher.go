package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher fans an inference record out to every configured sink. Sink
// failures are logged and swallowed: losing a log line must never fail the
// prediction that produced it.
type Publisher struct {
	sinks  []Store
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger, sinks ...Store) *Publisher {
	return &Publisher{sinks: sinks, logger: logger}
}

// Emit records one scored request in every sink, best effort.
func (p *Publisher) Emit(ctx context.Context, rec Record) {
	if p == nil {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	for _, sink := range p.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Append(ctx, rec); err != nil {
			p.logger.WarnContext(ctx, "audit sink append failed",
				"error", err,
				"request_type", rec.RequestType,
				"request_id", rec.RequestID,
			)
		}
	}
}
