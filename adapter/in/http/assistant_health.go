package http

import (
	"context"
	"time"

	"assistant_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// HealthDeps are all optional.
type HealthDeps struct {
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	Latency *metrics.RouteLatency
}

type HealthHandler struct {
	deps HealthDeps
}

func NewHealthHandler(deps HealthDeps) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Register(app fiber.Router) {
	app.Get("/health", h.Health)
	app.Get("/health/ready", h.Ready)
	app.Get("/health/metrics", h.Metrics)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.deps.DB != nil {
		if err := h.deps.DB.Ping(ctx); err != nil {
			checks["postgres"] = "unhealthy"
			allHealthy = false
		} else {
			checks["postgres"] = "healthy"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	if h.deps.Redis != nil {
		if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy"
			allHealthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status, code := "ready", fiber.StatusOK
	if !allHealthy {
		status, code = "not ready", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Metrics reports latency per route and connection pool usage.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	routes := fiber.Map{}
	if h.deps.Latency != nil {
		for route, stats := range h.deps.Latency.Snapshot() {
			routes[route] = stats.ToMap()
		}
	}

	pools := fiber.Map{
		"pgx":   metrics.PgxPoolStats(h.deps.DB),
		"redis": metrics.RedisPoolStats(h.deps.Redis),
	}
	if h.deps.SQLDB != nil {
		pools["sql"] = metrics.SQLPoolStats(h.deps.SQLDB.DB)
	}

	return c.JSON(fiber.Map{
		"routes": routes,
		"pools":  pools,
	})
}
