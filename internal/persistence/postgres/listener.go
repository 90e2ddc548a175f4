package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workouttracker/internal/platform/logger"
	"example.com/workouttracker/internal/stream"
)

// Listener forwards change notifications committed by any process sharing the database to
// a local notifier, so watchers see writes they did not make themselves.
type Listener struct {
	pool         *pgxpool.Pool
	notifier     *stream.Notifier
	log          *logger.Logger
	retryBackoff time.Duration
}

// NewListener constructs a Listener.
func NewListener(pool *pgxpool.Pool, notifier *stream.Notifier, log *logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{pool: pool, notifier: notifier, log: log, retryBackoff: 2 * time.Second}
}

// Run listens until ctx is cancelled, reconnecting after connection failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("change listener disconnected", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retryBackoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}
	l.log.Info("listening for changes", "channel", ChangeChannel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		l.notifier.Notify(n.Payload)
	}
}
