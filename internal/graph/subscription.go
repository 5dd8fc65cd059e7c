package graph

import (
	"context"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/pubsub"
)

// Per-subscriber event buffer. Events beyond it are dropped (at-most-once).
const subscriptionBuffer = 16

// TransactionCreated streams the session user's newly created transactions.
// Events published before the subscription registered are never delivered.
func (r *Resolver) TransactionCreated(ctx context.Context) <-chan *TransactionResolver {
	return r.subscribe(ctx, pubsub.TopicTransactionCreated)
}

// TransactionDeleted streams the session user's deleted transactions.
func (r *Resolver) TransactionDeleted(ctx context.Context) <-chan *TransactionResolver {
	return r.subscribe(ctx, pubsub.TopicTransactionDeleted)
}

func (r *Resolver) subscribe(ctx context.Context, topic string) <-chan *TransactionResolver {
	out := make(chan *TransactionResolver)

	user := auth.UserFromContext(ctx)
	if user == nil {
		r.log.Warnf("Rejected unauthenticated subscription to %s", topic)
		close(out)
		return out
	}

	sub := r.bus.Subscribe(topic, subscriptionBuffer)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-sub.C:
				if !ok {
					return
				}
				tx, ok := payload.(*models.Transaction)
				if !ok || tx.UserID != user.ID {
					// Events are scoped to their owner's connections.
					continue
				}
				select {
				case out <- &TransactionResolver{tx: tx, svc: r.svc}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
