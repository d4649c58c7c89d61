package metrics

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SQLPoolStats reports database/sql pool usage. A nil db reports zeros.
func SQLPoolStats(db *sql.DB) map[string]any {
	if db == nil {
		return map[string]any{}
	}
	s := db.Stats()
	return map[string]any{
		"open_connections":     s.OpenConnections,
		"in_use":               s.InUse,
		"idle":                 s.Idle,
		"max_open_connections": s.MaxOpenConnections,
		"wait_count":           s.WaitCount,
		"wait_duration_ms":     s.WaitDuration.Milliseconds(),
	}
}

func PgxPoolStats(pool *pgxpool.Pool) map[string]any {
	if pool == nil {
		return map[string]any{}
	}
	s := pool.Stat()
	return map[string]any{
		"total_conns":    s.TotalConns(),
		"acquired_conns": s.AcquiredConns(),
		"idle_conns":     s.IdleConns(),
		"max_conns":      s.MaxConns(),
	}
}

func RedisPoolStats(client *redis.Client) map[string]any {
	if client == nil {
		return map[string]any{}
	}
	s := client.PoolStats()
	return map[string]any{
		"hits":        s.Hits,
		"misses":      s.Misses,
		"timeouts":    s.Timeouts,
		"total_conns": s.TotalConns,
		"idle_conns":  s.IdleConns,
	}
}
