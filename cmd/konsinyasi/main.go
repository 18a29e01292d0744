package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/vbonduro/konsinyasi/internal/auth"
	"github.com/vbonduro/konsinyasi/internal/config"
	"github.com/vbonduro/konsinyasi/internal/db"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
	"github.com/vbonduro/konsinyasi/internal/feed/redisrelay"
	"github.com/vbonduro/konsinyasi/internal/journey"
	"github.com/vbonduro/konsinyasi/internal/logging"
	"github.com/vbonduro/konsinyasi/internal/photostore"
	"github.com/vbonduro/konsinyasi/internal/photostore/local"
	"github.com/vbonduro/konsinyasi/internal/photostore/s3store"
	"github.com/vbonduro/konsinyasi/internal/service"
	"github.com/vbonduro/konsinyasi/internal/state"
	"github.com/vbonduro/konsinyasi/internal/store"
	"github.com/vbonduro/konsinyasi/internal/timeutil"
	"github.com/vbonduro/konsinyasi/internal/web"
	"github.com/vbonduro/konsinyasi/internal/web/templates"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	hub := feed.NewHub(store.NewSnapshotter(database))
	startRelay(ctx, cfg, hub, logger)

	photos, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("JWT_SECRET not set; sessions will not survive a restart")
	}
	issuer := auth.NewIssuer(secret, cfg.SessionTTL)

	adminService := service.NewAdminService(store.NewConfigStore(database), issuer, logger)
	if err := adminService.Bootstrap(ctx, cfg.AdminDefaultPassword); err != nil {
		logger.Error("failed to bootstrap admin", "error", err)
		return
	}

	appState, err := state.New(ctx, hub, timeutil.LoadLocation(cfg.Timezone))
	if err != nil {
		logger.Error("failed to start state store", "error", err)
		return
	}
	defer appState.Close()

	server := web.NewServer(web.Services{
		Dropoffs: service.NewTransactionService(store.NewDropoffStore(database), domain.CollectionDropoffs, hub, logger),
		Returns:  service.NewTransactionService(store.NewReturnStore(database), domain.CollectionReturns, hub, logger),
		Catalog: service.NewCatalogService(
			store.NewProductStore(database),
			store.NewPartnerStore(database),
			store.NewEmployeeStore(database),
			hub, logger,
		),
		Admin:   adminService,
		Journey: journey.NewManager(store.NewAttendanceStore(database), photos, hub),
		State:   appState,
		Feed:    hub,
		Issuer:  issuer,
	}, web.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Templates:      templates.FS,
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(cfg.ListenAddr) }()

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}

// startRelay connects the hub to Redis when REDIS_ADDR is set. Without it,
// or when Redis is unreachable, changes only reach this instance.
func startRelay(ctx context.Context, cfg *config.Config, hub *feed.Hub, logger *slog.Logger) {
	if cfg.RedisAddr == "" {
		return
	}
	client, err := redisrelay.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("running without change relay", "error", err)
		return
	}

	relay := redisrelay.New(client, hub, redisrelay.DefaultChannel)
	hub.SetPublisher(relay)
	go func() {
		defer func() { _ = client.Close() }()
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("change relay stopped", "error", err)
		}
	}()
	logger.Info("change relay connected", "addr", cfg.RedisAddr)
}

func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required when PHOTO_BACKEND=s3")
		}
		client, err := s3store.NewClient(ctx, s3store.ClientConfig{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using s3 photo store", "bucket", cfg.S3Bucket)
		return s3store.NewS3PhotoStore(client, cfg.S3Bucket, cfg.S3KeyPrefix), nil
	default:
		logger.Info("using local photo store", "path", cfg.PhotoPath)
		return local.NewLocalPhotoStore(cfg.PhotoPath)
	}
}
