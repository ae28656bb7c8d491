package repository

import (
	"context"
	"time"

	models "github.com/RoGogDBD/vitals-monitor/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres — журнал эмиссий и снимок последних значений в PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// SaveEmission дописывает эмиссию в журнал.
func (p *Postgres) SaveEmission(ctx context.Context, m models.Metric) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return InsertEmission(ctx, p.pool, m)
}

// Sync сохраняет последние значения из storage.
func (p *Postgres) Sync(ctx context.Context, storage Storage) error {
	return SyncToDB(ctx, storage, p.pool)
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}
