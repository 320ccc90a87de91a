package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	httpapi "github.com/quotehub/quotehub/internal/api/http"
	appApproval "github.com/quotehub/quotehub/internal/application/approval"
	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	appAuth "github.com/quotehub/quotehub/internal/application/auth"
	appBroadcast "github.com/quotehub/quotehub/internal/application/broadcast"
	appDraft "github.com/quotehub/quotehub/internal/application/draft"
	appQuote "github.com/quotehub/quotehub/internal/application/quote"
	appSync "github.com/quotehub/quotehub/internal/application/sync"
	"github.com/quotehub/quotehub/internal/config"
	domainDraft "github.com/quotehub/quotehub/internal/domain/draft"
	"github.com/quotehub/quotehub/internal/domain/event"
	"github.com/quotehub/quotehub/internal/domain/pricing"
	"github.com/quotehub/quotehub/internal/infrastructure/awsqueue"
	"github.com/quotehub/quotehub/internal/infrastructure/blobstore"
	"github.com/quotehub/quotehub/internal/infrastructure/dynamo"
	"github.com/quotehub/quotehub/internal/infrastructure/memory"
	"github.com/quotehub/quotehub/internal/infrastructure/postgres"
	"github.com/quotehub/quotehub/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	broadcastRepo := postgres.NewBroadcastRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	guardRepo := postgres.NewGuardRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()
	defer sseHub.Stop()

	attachments, err := blobstore.NewDiskStore(cfg.AttachmentDir)
	if err != nil {
		log.Fatalf("attachment store error: %v", err)
	}

	var publisher event.Publisher = event.NopPublisher{}
	var draftStore domainDraft.Store = memory.NewDraftStore()
	if cfg.EventQueueURL != "" || cfg.DraftTableName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("aws config error: %v", err)
		}
		if cfg.EventQueueURL != "" {
			publisher = awsqueue.NewPublisher(sqs.NewFromConfig(awsCfg), cfg.EventQueueURL)
		}
		if cfg.DraftTableName != "" {
			draftStore = dynamo.NewDraftStore(dynamodb.NewFromConfig(awsCfg), cfg.DraftTableName)
		}
	}

	// services
	auditSvc := appAudit.NewService(auditRepo, logger)
	authSvc := appAuth.NewService(userRepo, sessionRepo, cfg.SessionTTL, logger)
	broadcastSvc := appBroadcast.NewService(broadcastRepo, auditSvc, sseHub, publisher, cfg.BroadcastExpiry, cfg.MerchantTimeout, logger)
	quoteSvc := appQuote.NewService(broadcastRepo, pricing.NewValidator(), guardRepo, auditSvc, sseHub, publisher, logger)
	approvalSvc := appApproval.NewService(broadcastRepo, appApproval.NewLimiter(cfg.ApprovalMax, cfg.ApprovalWindow), auditSvc, sseHub, publisher, logger)
	draftSvc := appDraft.NewService(draftStore, logger)
	reconciler := appSync.NewReconciler(broadcastRepo, sseHub, cfg.SyncLookback, cfg.SyncBatchSize, logger)

	// API server
	apiServer := httpapi.NewServer(
		broadcastSvc, quoteSvc, approvalSvc, draftSvc, authSvc, auditSvc,
		guardRepo, orderRepo, userRepo, attachments, sseHub,
		cfg.SessionCookieName, cfg.SessionCookieSecure,
	)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	loopCtx, cancelLoops := context.WithCancel(ctx)
	defer cancelLoops()

	// background loops
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := broadcastSvc.SweepExpired(loopCtx, cfg.SweepBatchSize); err != nil {
					logger.Warn().Err(err).Msg("expiry sweep failed")
				} else if n > 0 {
					logger.Info().Int("expired", n).Msg("expiry sweep")
				}
			case <-loopCtx.Done():
				return
			}
		}
	}()

	go reconciler.Run(loopCtx, cfg.SyncInterval)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := sessionRepo.DeleteExpired(loopCtx); err != nil {
					logger.Warn().Err(err).Msg("session cleanup failed")
				} else if n > 0 {
					logger.Info().Int("deleted", n).Msg("session cleanup")
				}
			case <-loopCtx.Done():
				return
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancelLoops()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
