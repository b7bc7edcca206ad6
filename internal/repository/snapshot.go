package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qdashboard/qdashboard/internal/model"
)

type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

const tickColumns = `id, tick, epoch, duration, initial_tick, observed_at,
	health_overall, health_tick, health_epoch, health_duration, recorded_at`

const statsColumns = `id, active_addresses, market_cap, price, epoch_tick_quality,
	circulating_supply, burned_qus, observed_at, epoch, current_tick,
	ticks_in_current_epoch, empty_ticks_in_current_epoch, recorded_at`

func (r *SnapshotRepository) InsertTick(ctx context.Context, t *model.TickSnapshot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tick_snapshots
			(tick, epoch, duration, initial_tick, observed_at,
			 health_overall, health_tick, health_epoch, health_duration)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.Tick, t.Epoch, t.Duration, t.InitialTick, t.Timestamp,
		t.Health.Overall, t.Health.TickStatus, t.Health.EpochStatus, t.Health.DurationStatus,
	)
	return err
}

func (r *SnapshotRepository) InsertStats(ctx context.Context, s *model.StatsSnapshot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stats_snapshots
			(active_addresses, market_cap, price, epoch_tick_quality,
			 circulating_supply, burned_qus, observed_at, epoch, current_tick,
			 ticks_in_current_epoch, empty_ticks_in_current_epoch)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ActiveAddresses, s.MarketCap, s.Price, s.EpochTickQuality,
		s.CirculatingSupply, s.BurnedQus, s.Timestamp, s.Epoch, s.CurrentTick,
		s.TicksInCurrentEpoch, s.EmptyTicksInCurrentEpoch,
	)
	return err
}

func (r *SnapshotRepository) GetTick(ctx context.Context, id int64) (*model.ArchivedTick, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tickColumns+` FROM tick_snapshots WHERE id = $1`, id)
	t, err := scanTick(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// ListTicks returns one page of archived ticks, newest first. epoch <= 0
// means every epoch.
func (r *SnapshotRepository) ListTicks(ctx context.Context, page, perPage int, epoch int64) ([]model.ArchivedTick, int, error) {
	where, args := epochFilter(epoch)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tick_snapshots`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + tickColumns + ` FROM tick_snapshots` + where +
		` ORDER BY recorded_at DESC, id DESC` +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	ticks, err := collectTicks(rows)
	return ticks, total, err
}

// ExportTicks returns every archived tick for epoch (or all epochs), oldest
// first.
func (r *SnapshotRepository) ExportTicks(ctx context.Context, epoch int64) ([]model.ArchivedTick, error) {
	where, args := epochFilter(epoch)
	rows, err := r.pool.Query(ctx,
		`SELECT `+tickColumns+` FROM tick_snapshots`+where+` ORDER BY recorded_at, id`, args...)
	if err != nil {
		return nil, err
	}
	return collectTicks(rows)
}

func (r *SnapshotRepository) ListStats(ctx context.Context, page, perPage int) ([]model.ArchivedStats, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stats_snapshots`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+statsColumns+` FROM stats_snapshots
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.ArchivedStats
	for rows.Next() {
		var s model.ArchivedStats
		if err := rows.Scan(
			&s.ID, &s.ActiveAddresses, &s.MarketCap, &s.Price, &s.EpochTickQuality,
			&s.CirculatingSupply, &s.BurnedQus, &s.Timestamp, &s.Epoch, &s.CurrentTick,
			&s.TicksInCurrentEpoch, &s.EmptyTicksInCurrentEpoch, &s.RecordedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func epochFilter(epoch int64) (string, []any) {
	if epoch <= 0 {
		return "", nil
	}
	return ` WHERE epoch = $1`, []any{epoch}
}

func scanTick(row pgx.Row) (model.ArchivedTick, error) {
	var t model.ArchivedTick
	err := row.Scan(
		&t.ID, &t.Tick, &t.Epoch, &t.Duration, &t.InitialTick, &t.Timestamp,
		&t.Health.Overall, &t.Health.TickStatus, &t.Health.EpochStatus, &t.Health.DurationStatus,
		&t.RecordedAt,
	)
	return t, err
}

func collectTicks(rows pgx.Rows) ([]model.ArchivedTick, error) {
	defer rows.Close()
	var out []model.ArchivedTick
	for rows.Next() {
		t, err := scanTick(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
