package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMaxAttempts is how many failed deliveries an event gets before it is parked.
const DefaultMaxAttempts = 10

// PostgresStore reads the outbox table written by the postgres repositories.
type PostgresStore struct {
	pool        *pgxpool.Pool
	maxAttempts int
}

// NewPostgresStore constructs a PostgresStore. Events that failed maxAttempts times are no
// longer claimed and stay in the table with their last error.
func NewPostgresStore(pool *pgxpool.Pool, maxAttempts int) *PostgresStore {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &PostgresStore{pool: pool, maxAttempts: maxAttempts}
}

// Claim locks up to limit unpublished events in insertion order and marks them claimed. Claims
// older than five minutes are treated as abandoned.
func (s *PostgresStore) Claim(ctx context.Context, limit int) (messages []Message, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const query = `SELECT event_id, aggregate_type, aggregate_id, event_type, topic, partition_key, payload, attempts
        FROM outbox
        WHERE published_at IS NULL AND attempts < $2
          AND (claimed_at IS NULL OR claimed_at < NOW() - INTERVAL '5 minutes')
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, limit, s.maxAttempts)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Topic, &msg.PartitionKey, &msg.Payload, &msg.Attempts); err != nil {
			rows.Close()
			return nil, err
		}
		messages = append(messages, msg)
		ids = append(ids, msg.EventID)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, tx.Rollback(ctx)
	}
	if _, err = tx.Exec(ctx, `UPDATE outbox SET claimed_at = NOW() WHERE event_id = ANY($1)`, ids); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkPublished records successful delivery.
func (s *PostgresStore) MarkPublished(ctx context.Context, ids []int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE event_id = ANY($1)`, ids)
	return err
}

// MarkFailed releases the claim so the events are retried on a later poll.
func (s *PostgresStore) MarkFailed(ctx context.Context, ids []int64, reason string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE outbox SET claimed_at = NULL, attempts = attempts + 1, last_error = $2 WHERE event_id = ANY($1)`,
		ids, reason)
	return err
}
