package checks

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kmd/mea/health"
)

// Postgres checks database reachability by pinging a small pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres check for dsn. Connections are opened
// lazily, so an unreachable database surfaces in Check rather than here.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		// The parse error may echo the DSN, which can hold credentials.
		return nil, ErrInvalidDSN
	}
	cfg.MaxConns = 2
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("checks: creating postgres pool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Check pings the database.
func (p *Postgres) Check(ctx context.Context) health.Result {
	if err := p.pool.Ping(ctx); err != nil {
		return health.Unhealthy("postgres ping failed", fmt.Errorf("%w: %w", ErrUnreachable, err))
	}

	stat := p.pool.Stat()
	return health.Healthy("").WithData(map[string]any{
		"totalConns":    stat.TotalConns(),
		"idleConns":     stat.IdleConns(),
		"acquiredConns": stat.AcquiredConns(),
	})
}

// Close closes the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
