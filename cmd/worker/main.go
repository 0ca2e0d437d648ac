package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/infra/config"
	"github.com/pek0hara/video-frame-capture/internal/infra/email"
	"github.com/pek0hara/video-frame-capture/internal/infra/ffmpeg"
	"github.com/pek0hara/video-frame-capture/internal/infra/fsgate"
	"github.com/pek0hara/video-frame-capture/internal/infra/metrics"
	miniostorage "github.com/pek0hara/video-frame-capture/internal/infra/minio"
	"github.com/pek0hara/video-frame-capture/internal/infra/postgres"
	"github.com/pek0hara/video-frame-capture/internal/infra/rabbitmq"
	"github.com/pek0hara/video-frame-capture/internal/infra/tracing"
	"github.com/pek0hara/video-frame-capture/internal/infra/twitch"
	"github.com/pek0hara/video-frame-capture/internal/infra/ytdlp"
	"github.com/pek0hara/video-frame-capture/internal/usecase"
	"github.com/pek0hara/video-frame-capture/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting video-frame-capture worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Object storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:      cfg.MinIOEndpoint,
		AccessKey:     cfg.MinIOAccessKey,
		SecretKey:     cfg.MinIOSecretKey,
		UseSSL:        cfg.MinIOUseSSL,
		UploadBucket:  cfg.MinIOUploadBucket,
		ArchiveBucket: cfg.MinIOArchiveBucket,
		MediaBucket:   cfg.MinIOMediaBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	ledger := postgres.NewProcessedLedger(pool)
	engine := ffmpeg.NewEngine(cfg.FFmpegPath, log)
	prober := ffmpeg.NewProber(cfg.FFprobePath)
	archiver := ffmpeg.NewArchiver()
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	extractor := usecase.NewExtractFramesUseCase(engine, prober, storage.MediaLibrary(), fsgate.New(), log)

	uc := usecase.NewProcessVideoUseCase(
		repo, storage, extractor, archiver,
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessVideoConfig{
			TempDir:    cfg.TempDir,
			MaxRetries: cfg.MaxRetries,
		},
	)

	// Catalog poller
	if cfg.CatalogPollEnabled {
		catalog := twitch.NewCatalog(cfg.TwitchClientID, cfg.TwitchAppToken)
		selector := twitch.NewSelector(catalog, ledger, cfg.TwitchLogin, log)
		downloader := ytdlp.NewDownloader(cfg.YtDlpPath, log)
		extractPub := rabbitmq.NewExtractionPublisher(pub)

		poller := usecase.NewPollCatalogUseCase(
			selector, downloader, storage, extractPub, ledger, log,
			usecase.PollCatalogConfig{
				Login:    cfg.TwitchLogin,
				Interval: cfg.FrameInterval,
				TempDir:  cfg.TempDir,
			},
		)
		go poller.Run(ctx, time.Duration(cfg.CatalogPollMinutes)*time.Minute)
		log.Info("catalog poller enabled", zap.String("login", cfg.TwitchLogin))
	}

	// Metrics server
	metricsSrv := metrics.Start(cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQExtractQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("video-frame-capture worker started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("video-frame-capture worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
