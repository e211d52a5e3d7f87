package di

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/handler/ws"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/alphavantage"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/yahoo"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/scheduler"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

// ProvideCache creates the shared cache: layered memory+Redis for the redis backend,
// in-process memory otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, func(), error) {
	if cfg.Store.Backend != config.StoreRedis {
		c := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		return c, func() { _ = c.Close() }, nil
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Store.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Store.Redis.Password),
		pkgcache.WithRedisDB(cfg.Store.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Store.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	c := pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize))
	return c, func() { _ = c.Close() }, nil
}

// ProvideKVStore creates the watchlist/alert persistence backend.
func ProvideKVStore(cfg *config.Config, cache pkgcache.Service) (repository.KVStore, func(), error) {
	if cfg.Store.Backend == config.StoreSQLite {
		kv, err := internalrepo.NewSQLiteKV(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		return kv, func() { _ = kv.Close() }, nil
	}
	if cfg.Store.Backend == config.StoreRedis {
		// the cache owns the connection and is closed by its own cleanup
		return internalrepo.NewCacheKV(cache, "store"), func() {}, nil
	}
	mem := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(0))
	return internalrepo.NewCacheKV(mem, "store"), func() { _ = mem.Close() }, nil
}

func ProvideWatchlistStore(kv repository.KVStore, l *applogger.Logger) repository.WatchlistRepository {
	return internalrepo.NewWatchlistStore(kv, l)
}

func ProvideAlertStore(kv repository.KVStore, l *applogger.Logger) repository.AlertRepository {
	return internalrepo.NewAlertStore(kv, l)
}

// ProvideSeriesProvider picks the upstream named in provider.name.
func ProvideSeriesProvider(cfg *config.Config, l *applogger.Logger) repository.SeriesProvider {
	p := cfg.Provider
	if p.Name == config.ProviderAlphaVantage {
		client := xhttp.NewClient(xhttp.WithTimeout(p.Timeout))
		return alphavantage.New(alphavantage.Config{
			APIKey:     p.AlphaVantage.APIKey,
			BaseURL:    p.AlphaVantage.BaseURL,
			OutputSize: p.AlphaVantage.OutputSize,
		}, client, l)
	}
	client := xhttp.NewClient(xhttp.WithTimeout(p.Timeout), xhttp.WithUserAgent(p.Yahoo.UserAgent))
	return yahoo.New(yahoo.Config{BaseURL: p.Yahoo.BaseURL, UserAgent: p.Yahoo.UserAgent}, client, l)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideClickHouseClient creates a ClickHouse client with the history schema, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	ch := cfg.ClickHouse
	if !ch.Enabled {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, true),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.PointHistorySchema(ch.Database+"."+ch.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvidePointHistory returns the ClickHouse history, or a nil interface when ClickHouse is disabled.
func ProvidePointHistory(cfg *config.Config, client *pkgch.Client, l *applogger.Logger) repository.PointHistory {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHousePointHistory(client, cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table, l)
}

func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideAlertPublisher fans rising edges out to the websocket hub and, when enabled, Kafka.
func ProvideAlertPublisher(hub *ws.Hub, producer *pkgkafka.Producer, l *applogger.Logger) repository.AlertPublisher {
	pubs := []repository.AlertPublisher{hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaAlertPublisher(producer))
	}
	return internalrepo.NewMultiPublisher(l, pubs...)
}

func ProvideSeriesService(
	cfg *config.Config,
	provider repository.SeriesProvider,
	alerts repository.AlertRepository,
	cache pkgcache.Service,
	history repository.PointHistory,
	publisher repository.AlertPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SeriesService {
	opts := []usecase.SeriesOption{
		usecase.WithSeriesCache(internalrepo.NewSeriesCache(cache, l), cfg.Cache.SeriesTTL),
		usecase.WithAlertPublisher(publisher),
		usecase.WithMetrics(m),
		usecase.WithProviderLimiter(ratelimit.New(cfg.RateLimit.ProviderCapacity, cfg.RateLimit.ProviderRefill)),
	}
	if history != nil {
		opts = append(opts, usecase.WithPointHistory(history))
	}
	return usecase.NewSeriesService(provider, alerts, l, opts...)
}

func ProvideDashboard(series *usecase.SeriesService, alerts repository.AlertRepository, l *applogger.Logger) *usecase.Dashboard {
	return usecase.NewDashboard(series, alerts, l)
}

// ProvideRefreshJob uses the shared cache as the overlap lock.
func ProvideRefreshJob(
	cfg *config.Config,
	series *usecase.SeriesService,
	watchlist repository.WatchlistRepository,
	alerts repository.AlertRepository,
	cache pkgcache.Service,
	l *applogger.Logger,
) *usecase.RefreshJob {
	return usecase.NewRefreshJob(series, watchlist, alerts, cache, usecase.RefreshConfig{
		Range:    cfg.Refresh.Range,
		Interval: cfg.Refresh.Interval,
		LockTTL:  cfg.Refresh.Timeout,
	}, l)
}

// ProvideScheduler registers the refresh job when refresh is enabled.
func ProvideScheduler(cfg *config.Config, job *usecase.RefreshJob, l *applogger.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(l, cfg.Refresh.Timeout)
	if !cfg.Refresh.Enabled {
		return s, nil
	}
	if err := s.Register("refresh", cfg.Refresh.Cron, func(ctx context.Context) error {
		_, err := job.Run(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideHandlers collects every route group served by the HTTP server.
func ProvideHandlers(
	cfg *config.Config,
	series *usecase.SeriesService,
	dashboard *usecase.Dashboard,
	history repository.PointHistory,
	watchlist repository.WatchlistRepository,
	alerts repository.AlertRepository,
	kv repository.KVStore,
	provider repository.SeriesProvider,
	hub *ws.Hub,
	l *applogger.Logger,
) []xhttp.Handler {
	limiter := ratelimit.New(cfg.RateLimit.ClientCapacity, cfg.RateLimit.ClientRefill)
	return []xhttp.Handler{
		api.NewStocksHandler(series, dashboard, history, limiter, l),
		api.NewWatchlistHandler(watchlist, l),
		api.NewAlertsHandler(alerts, l),
		api.NewHealthHandler(kv, provider),
		hub,
	}
}

// ProvideHTTPServer creates the echo server from the server section.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	return xhttp.NewServer(l, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS.Enabled, cfg.Server.CORS.Origins...),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.SlowThreshold),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	job *usecase.RefreshJob,
	hub *ws.Hub,
) *server.App {
	return server.New(cfg, l, httpServer, sched, job, hub)
}
