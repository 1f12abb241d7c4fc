package store

import (
	"context"
	"fmt"

	"github.com/Fatihur/api-baru/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresTenantRepository implements TenantRepository for PostgreSQL
type PostgresTenantRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresTenantRepository creates a new PostgreSQL tenant repository
func NewPostgresTenantRepository(
	host string,
	port int,
	database, user, password string,
	maxConns, minConns int,
	logger *zap.Logger,
) (TenantRepository, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s pool_max_conns=%d pool_min_conns=%d",
		host, port, database, user, password, maxConns, minConns,
	)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresTenantRepository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Load reads the full tenant record set
func (r *PostgresTenantRepository) Load(ctx context.Context) (map[string]*model.TenantRecord, error) {
	query := `
		SELECT token, name, created_at, last_used, request_count, active
		FROM tenants
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	tenants := map[string]*model.TenantRecord{}
	for rows.Next() {
		var t model.TenantRecord
		if err := rows.Scan(&t.Token, &t.Name, &t.CreatedAt, &t.LastUsed, &t.RequestCount, &t.Active); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants[t.Token] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tenants: %w", err)
	}

	return tenants, nil
}

// Save writes the full tenant record set in one transaction: every record
// is upserted and rows absent from the snapshot are pruned.
func (r *PostgresTenantRepository) Save(ctx context.Context, tenants map[string]*model.TenantRecord) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO tenants (token, name, created_at, last_used, request_count, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token) DO UPDATE
		SET name = $2, last_used = $4, request_count = $5, active = $6
	`

	tokens := make([]string, 0, len(tenants))
	for token, t := range tenants {
		tokens = append(tokens, token)
		if _, err := tx.Exec(ctx, upsert,
			t.Token,
			t.Name,
			t.CreatedAt,
			t.LastUsed,
			t.RequestCount,
			t.Active,
		); err != nil {
			return fmt.Errorf("failed to upsert tenant: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tenants WHERE NOT (token = ANY($1))`, tokens); err != nil {
		return fmt.Errorf("failed to prune deleted tenants: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tenant snapshot: %w", err)
	}

	r.logger.Debug("Tenant snapshot saved", zap.Int("tenants", len(tenants)))
	return nil
}

// Ping checks the database connection
func (r *PostgresTenantRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool
func (r *PostgresTenantRepository) Close() {
	r.pool.Close()
}
