package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qdashboard/qdashboard/internal/model"
)

type PollerRepository struct {
	pool *pgxpool.Pool
}

func NewPollerRepository(pool *pgxpool.Pool) *PollerRepository {
	return &PollerRepository{pool: pool}
}

func (r *PollerRepository) Get(ctx context.Context) (*model.PollerState, error) {
	var s model.PollerState
	var conn string
	err := r.pool.QueryRow(ctx,
		`SELECT is_running, connection, tick_cycles, stats_cycles,
			tick_failures, stats_failures, last_tick_at, last_stats_at,
			last_error, updated_at
		FROM poller_state WHERE id = 1`,
	).Scan(
		&s.IsRunning, &conn, &s.TickCycles, &s.StatsCycles,
		&s.TickFailures, &s.StatsFailures, &s.LastTickAt, &s.LastStatsAt,
		&s.LastError, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	s.Connection = model.ConnectionState(conn)
	return &s, nil
}

func (r *PollerRepository) Save(ctx context.Context, s *model.PollerState) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE poller_state SET
			is_running = $1,
			connection = $2,
			tick_cycles = $3,
			stats_cycles = $4,
			tick_failures = $5,
			stats_failures = $6,
			last_tick_at = $7,
			last_stats_at = $8,
			last_error = $9,
			updated_at = $10
		WHERE id = 1`,
		s.IsRunning, string(s.Connection), s.TickCycles, s.StatsCycles,
		s.TickFailures, s.StatsFailures, s.LastTickAt, s.LastStatsAt,
		s.LastError, time.Now(),
	)
	return err
}

func (r *PollerRepository) SetRunning(ctx context.Context, running bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE poller_state SET is_running = $1, updated_at = $2 WHERE id = 1`,
		running, time.Now(),
	)
	return err
}

func (r *PollerRepository) SetError(ctx context.Context, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE poller_state SET last_error = $1, updated_at = $2 WHERE id = 1`,
		errMsg, time.Now(),
	)
	return err
}
