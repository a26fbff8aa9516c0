package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpctx "github.com/fbellini/daybook-server/internal/api/http/context"
	"github.com/fbellini/daybook-server/internal/api/http/handler"
	"github.com/fbellini/daybook-server/internal/api/http/middleware"
	"github.com/fbellini/daybook-server/internal/api/http/router"
	httpServer "github.com/fbellini/daybook-server/internal/api/http/server"
	"github.com/fbellini/daybook-server/internal/config"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
	"github.com/fbellini/daybook-server/internal/repository/postgres"
	"github.com/fbellini/daybook-server/internal/server"
	"github.com/fbellini/daybook-server/internal/service"
	storage "github.com/fbellini/daybook-server/internal/storage/minio"
	"github.com/fbellini/daybook-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize export archive", "error", err)
	}

	authService := service.NewAuth(accountRepo, refreshTokenRepo, tokenManager, logger)
	accountService := service.NewAccount(accountRepo, refreshTokenRepo, tokenManager, cfg.Master.Email, cfg.EmailDomain, logger)
	reportService := service.NewReport(reportRepo, accountRepo, storageClient, logger)
	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger)

	if err := accountService.EnsureMaster(ctx, cfg.Master.Handle, cfg.Master.Password); err != nil {
		logger.Fatal("failed to ensure master account", "error", err)
	}

	srv := registerHTTPServer(logger, authService, accountService, reportService, tokenService, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	logger *logger.Logger,
	authService *service.Auth,
	accountService *service.Account,
	reportService *service.Report,
	tokenService *service.TokenService,
	addr string,
) *httpServer.HTTPServer {
	ctxMgr := httpctx.NewManager()

	authHandler := handler.NewAuth(authService, ctxMgr, logger)
	accountHandler := handler.NewAccount(accountService, logger)
	reportHandler := handler.NewReport(reportService, authService, accountService, ctxMgr, logger)

	logging := middleware.NewLogging(logger)
	authenticate := middleware.NewAuthenticate(tokenService, ctxMgr, logger)
	requireMaster := middleware.NewRequireMaster(authService, accountService, ctxMgr, logger)

	h := router.New(authHandler, accountHandler, reportHandler, logging, authenticate, requireMaster)

	return httpServer.NewHTTPServer(h, addr)
}
