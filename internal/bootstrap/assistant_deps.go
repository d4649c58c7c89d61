package bootstrap

import (
	"context"
	"time"

	"assistant_server/adapter/out/messaging"
	"assistant_server/adapter/out/persistence"
	"assistant_server/adapter/out/provider"
	"assistant_server/adapter/out/supabase"
	"assistant_server/config"
	"assistant_server/core/agent"
	"assistant_server/core/agent/llm"
	"assistant_server/core/port/out"
	"assistant_server/core/service/calendar"
	"assistant_server/infra/database"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/logger"
	"assistant_server/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Dependencies is everything the HTTP layer is built from.
type Dependencies struct {
	Config *config.Config

	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client

	Accounts    out.AccountRepository
	AccountSink out.AccountWriter
	States      out.OAuthStateStore
	SMS         out.SMSSender
	Calendar    *provider.GoogleCalendarAdapter
	Latency     *metrics.RouteLatency
	Router      *agent.Router
}

func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{
		Config:  cfg,
		Latency: metrics.NewRouteLatency(500),
	}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if err := deps.initAccountStore(ctx, &cleanups); err != nil {
		cleanup()
		return nil, nil, err
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, OAuth state will not be verified")
		} else {
			deps.Redis = client
			deps.States = persistence.NewRedisOAuthStateStore(client)
			cleanups = append(cleanups, func() { _ = client.Close() })
		}
	}

	deps.SMS = messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	if !cfg.TwilioConfigured() {
		logger.Warn("Twilio credentials missing, missed-call replies will fail")
	}

	deps.Calendar = provider.NewGoogleCalendarAdapter(provider.GoogleCalendarConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	if !cfg.GoogleConfigured() {
		logger.Warn("Google OAuth client missing, calendar calls will fail")
	}

	deps.Router = deps.buildRouter()
	return deps, cleanup, nil
}

// initAccountStore prefers a direct Postgres connection and falls back to
// the Supabase REST API.
func (d *Dependencies) initAccountStore(ctx context.Context, cleanups *[]func()) error {
	cfg := d.Config
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgres(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return apperr.ConfigError("postgres connection failed").WithError(err)
		}
		d.DB = pool
		*cleanups = append(*cleanups, pool.Close)

		sqlDB, err := database.NewSQLX(ctx, cfg.DatabaseURL)
		if err != nil {
			return apperr.ConfigError("sqlx connection failed").WithError(err)
		}
		d.SQLDB = sqlDB
		*cleanups = append(*cleanups, func() { _ = sqlDB.Close() })

		adapter := persistence.NewAccountAdapter(sqlDB)
		d.Accounts, d.AccountSink = adapter, adapter
		logger.Info("Account store: postgres")
		return nil
	}

	adapter := supabase.NewAccountAdapter(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	d.Accounts, d.AccountSink = adapter, adapter
	logger.Info("Account store: supabase rest")
	return nil
}

func (d *Dependencies) buildRouter() *agent.Router {
	cfg := d.Config
	client := llm.NewClientWithConfig(llm.ClientConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.GeneralModel,
	})

	return agent.NewRouter(agent.RouterConfig{
		Keywords:      cfg.CalendarKeywords,
		DefaultUserID: cfg.DefaultUser(),
		Connector:     calendar.NewConnector(d.Accounts, d.Calendar),
		Classifier:    agent.NewClassifier(client, cfg.IntentModel),
		Scheduler:     agent.NewSchedulingAgent(client, cfg.ExtractModel, time.UTC),
		Lookup:        agent.NewLookupAgent(cfg.LookupWindowDays, cfg.LookupMaxResults),
		General:       agent.NewGeneralAgent(client, cfg.GeneralModel),
		Latency:       d.Latency,
	})
}
