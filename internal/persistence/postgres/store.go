// Package postgres provides Postgres-backed repositories for exercises, templates and sessions.
// Every write commits its rows, an outbox event and a change notification in one transaction.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/events"
	"example.com/workouttracker/internal/observability"
	"example.com/workouttracker/internal/platform/logger"
	"example.com/workouttracker/internal/stream"
)

// ChangeChannel is the LISTEN/NOTIFY channel carrying the topic of every committed write.
const ChangeChannel = "workout_changes"

//go:embed schema.sql
var schema string

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Store is the shared handle the repositories are built on.
type Store struct {
	pool     *pgxpool.Pool
	notifier *stream.Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewStore constructs a Store. Local writes are announced on notifier as soon as they commit.
func NewStore(pool *pgxpool.Pool, notifier *stream.Notifier, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	if notifier == nil {
		notifier = stream.NewNotifier()
	}
	return &Store{pool: pool, notifier: notifier, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// outboxEvent is one row queued for the dispatcher.
type outboxEvent struct {
	eventType   string
	aggregateID string
	payload     any
}

// write runs fn in a transaction, appends the outbox events fn returns and signals topic.
func (s *Store) write(ctx context.Context, topic string, fn func(tx pgx.Tx) ([]outboxEvent, error)) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	pending, err := fn(tx)
	if err != nil {
		return err
	}
	for _, ev := range pending {
		if err = insertOutbox(ctx, tx, ev); err != nil {
			return err
		}
	}
	if _, err = tx.Exec(ctx, "SELECT pg_notify($1, $2)", ChangeChannel, topic); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}

	observability.RecordWrite(topic, s.now())
	s.notifier.Notify(topic)
	return nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, ev outboxEvent) error {
	route, ok := events.Catalog[ev.eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", ev.eventType)
	}
	body, err := json.Marshal(ev.payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = tx.Exec(ctx, stmt, route.AggregateType, ev.aggregateID, ev.eventType, route.Topic, ev.aggregateID, body)
	return err
}

// translate maps driver errors onto domain sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", what, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
