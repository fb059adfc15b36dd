package audit

import (
	"context"
	"log/slog"
)

// Publisher streams stored entries to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, entry *Entry) error
}

// Worker drains the recorder's outbox and publishes each entry. Publishing happens
// after the entry is stored, so a publish failure only loses the stream copy.
type Worker struct {
	publisher Publisher
	inbox     <-chan *Entry
	logger    *slog.Logger
}

func NewWorker(publisher Publisher, inbox <-chan *Entry, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// Run publishes entries until ctx is cancelled or the inbox is closed. Entries
// still buffered at cancellation are drained with a detached context.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return nil
		case entry, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.publish(ctx, entry)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case entry, ok := <-w.inbox:
			if !ok {
				return
			}
			w.publish(ctx, entry)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, entry *Entry) {
	if err := w.publisher.Publish(ctx, entry); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to publish audit entry",
			"audit_entry_id", entry.ID.String(),
			"error", err,
		)
	}
}
