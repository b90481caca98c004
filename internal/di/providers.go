package di

import (
	"context"
	"fmt"
	"time"

	"SimuTrade/internal/domain/repository"
	"SimuTrade/internal/handler/api"
	"SimuTrade/internal/ledger"
	mid "SimuTrade/internal/middleware"
	internalrepo "SimuTrade/internal/repository"
	"SimuTrade/internal/service/binance"
	"SimuTrade/internal/service/coingecko"
	"SimuTrade/internal/service/marketdata"
	"SimuTrade/internal/signal"
	"SimuTrade/internal/usecase"
	"SimuTrade/pkg/cache"
	pkgch "SimuTrade/pkg/clickhouse"
	"SimuTrade/pkg/config"
	xhttp "SimuTrade/pkg/http"
	pkgkafka "SimuTrade/pkg/kafka"
	"SimuTrade/pkg/logger"
	"SimuTrade/pkg/metrics"
	"SimuTrade/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared upstream HTTP client.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
}

// ProvideCandleSource builds the ordered source chain: Binance klines
// first, CoinGecko as fallback, optionally fronted by a cache.
func ProvideCandleSource(cfg *config.Config, m repository.Metrics, log *logger.Logger, hc *xhttp.Client) repository.OHLCSource {
	sources := []repository.OHLCSource{
		binance.NewRestClient(cfg.Sources.Binance.RestURL, hc),
		coingecko.New(cfg.Sources.CoinGecko.URL, cfg.Sources.CoinGecko.Days, hc),
	}
	chain := marketdata.NewChain(sources, m, log)

	if !cfg.Cache.Enabled {
		return chain
	}

	var svc cache.Service
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
	)
	if err != nil {
		log.Warn("redis unavailable, using in-process cache", logger.Error(err))
		svc = cache.NewMemoryCache()
	} else {
		svc = cache.NewLayeredCache(redisCache)
	}
	return marketdata.NewCachedSource(chain, svc, cfg.Cache.TTL, log)
}

// ProvidePriceStream creates the Binance trade WebSocket stream.
func ProvidePriceStream(cfg *config.Config) repository.PriceStream {
	return binance.NewStream(
		cfg.Sources.Binance.WsURL,
		cfg.Symbol,
		cfg.Sources.Binance.ReconnectDelay,
		cfg.Sources.Binance.PingInterval,
	)
}

// ProvideClickHouseClient connects to ClickHouse when it is the archive
// backend; otherwise no client is created.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Archive.Backend != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.TickSchema(cfg.ClickHouse.Database+".ticks")); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer connects to Kafka when it is the archive backend.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Archive.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTickProcessor routes ticks to the configured archive backend.
func ProvideTickProcessor(producer *pkgkafka.Producer, chClient *pkgch.Client, m repository.Metrics, cfg *config.Config) *usecase.TickProcessor {
	var kafkaArch, chArch repository.Archiver
	if producer != nil {
		kafkaArch = internalrepo.NewKafkaArchiver(producer, cfg.Kafka.Topic)
	}
	if chClient != nil {
		chArch = internalrepo.NewClickHouseArchiver(chClient.DB(), cfg.ClickHouse.Database+".ticks")
	}
	return usecase.NewTickProcessor(kafkaArch, chArch, m, cfg.Archive.Backend)
}

// ProvidePriceCollector creates the live price collector. The tick
// pipeline is only attached when an archive backend is configured.
func ProvidePriceCollector(
	stream repository.PriceStream,
	processor *usecase.TickProcessor,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.PriceCollector {
	var pipe *mid.TickPipeline
	if cfg.Archive.Backend == "kafka" || cfg.Archive.Backend == "clickhouse" {
		pipe = mid.NewTickPipeline(processor, m,
			mid.WithMaxRPS(50),
			mid.WithBatching(cfg.Archive.BatchSize, cfg.Archive.BatchTimeout),
		)
	}
	return usecase.NewPriceCollector(stream, pipe, m, log)
}

// ProvideFuser creates the decision fuser from configured thresholds.
func ProvideFuser(cfg *config.Config) *signal.Fuser {
	th := signal.Thresholds{
		RSILow:  cfg.Engine.Thresholds.RSILow,
		RSIHigh: cfg.Engine.Thresholds.RSIHigh,
		KDJLow:  cfg.Engine.Thresholds.KDJLow,
		KDJHigh: cfg.Engine.Thresholds.KDJHigh,
	}
	if th == (signal.Thresholds{}) {
		th = signal.DefaultThresholds()
	}
	return signal.NewFuser(th)
}

// ProvideLedger creates the prediction ledger from the settlement policy.
func ProvideLedger(cfg *config.Config) *ledger.Ledger {
	rates := make(map[repository.Timeframe]float64, len(cfg.Engine.ProfitRates))
	for tf, r := range cfg.Engine.ProfitRates {
		rates[repository.Timeframe(tf)] = r
	}
	return ledger.New(cfg.Engine.BaseStake, rates)
}

// ProvideAnalyzer creates the per-cycle analyzer.
func ProvideAnalyzer(source repository.OHLCSource, fuser *signal.Fuser, m repository.Metrics, log *logger.Logger, cfg *config.Config) *usecase.Analyzer {
	return usecase.NewAnalyzer(source, fuser, m, log, usecase.AnalyzerConfig{
		Symbol:     cfg.Symbol,
		Interval:   cfg.Sources.Binance.Interval,
		WindowSize: cfg.Engine.WindowSize,
		RSIPeriod:  cfg.Engine.Indicators.RSIPeriod,
		BollPeriod: cfg.Engine.Indicators.BollPeriod,
		BollK:      cfg.Engine.Indicators.BollK,
		KDJPeriod:  cfg.Engine.Indicators.KDJPeriod,
	})
}

// ProvideDriver creates the engine driver.
func ProvideDriver(
	analyzer *usecase.Analyzer,
	lg *ledger.Ledger,
	collector *usecase.PriceCollector,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.Driver {
	return usecase.NewDriver(analyzer, lg, collector, m, log, usecase.DriverConfig{
		Timeframe:          repository.NormalizeTimeframe(cfg.Engine.Timeframe),
		AnalysisInterval:   cfg.Engine.AnalysisInterval,
		SettlementInterval: cfg.Engine.SettlementInterval,
	})
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(log *logger.Logger, driver *usecase.Driver) xhttp.Handler {
	return api.NewPredictionsEchoHandler(log, driver)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.PriceCollector,
	driver *usecase.Driver,
	processor *usecase.TickProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, collector, driver, processor, chClient, handler)
}
