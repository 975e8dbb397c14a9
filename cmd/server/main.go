// Command lp-server starts the declaration page gRPC server.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/lovepage/internal/limiter"
	"github.com/and161185/lovepage/internal/migrate"
	grpcserver "github.com/and161185/lovepage/internal/server/grpc"
	"github.com/and161185/lovepage/internal/service"
	"github.com/and161185/lovepage/internal/share"
	"github.com/and161185/lovepage/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, opens the optional remote store and starts the gRPC server.
func main() {
	// Flags
	addr := flag.String("addr", ":8443", "listen address")
	publicURL := flag.String("public-url", envOr("LP_PUBLIC_URL", "http://localhost:5173/"), "base URL of share links")
	storeURL := flag.String("store-url", os.Getenv("LP_STORE_URL"), "remote store endpoint: postgres://... or dynamodb://<table>?region=..; empty disables")
	storeKey := flag.String("store-key", os.Getenv("LP_STORE_KEY"), "store credential: postgres password or ACCESS_KEY:SECRET")
	storeTimeout := flag.Duration("store-timeout", store.DefaultTimeout, "per-call remote store timeout")
	certFile := flag.String("tls-cert", "", "TLS certificate (PEM); empty serves plaintext")
	keyFile := flag.String("tls-key", "", "TLS private key (PEM)")
	dev := flag.Bool("dev", false, "enable server reflection (dev only)")
	trustProxy := flag.Bool("trust-proxy", false, "identify clients by x-forwarded-for (only behind a trusted proxy)")
	shareLimit := flag.Int("share-limit", 20, "remote shares per client per window (postgres only, 0 disables)")
	shareWindow := flag.Duration("share-window", time.Hour, "share limit window")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	var opts []grpc.ServerOption
	if *certFile != "" || *keyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(*certFile, *keyFile)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("TLS disabled (--tls-cert/--tls-key not set)")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := store.Config{Endpoint: *storeURL, Credential: *storeKey, Timeout: *storeTimeout}
	opened := openStore(ctx, cfg, logger, migrate.Up)
	defer opened.Adapter.Close()

	resolverOpts := []share.Option{
		share.WithLogger(logger),
		share.WithTimeout(*storeTimeout),
		share.WithObserver(func(s share.State) { logger.Debug("share state", zap.Stringer("state", s)) }),
	}
	if opened.PgPool != nil && *shareLimit > 0 {
		resolverOpts = append(resolverOpts, share.WithGate(limiter.NewPG(opened.PgPool, *shareWindow, *shareLimit)))
	}
	resolver, err := share.New(*publicURL, opened.Adapter, resolverOpts...)
	if err != nil {
		logger.Fatal("share resolver", zap.Error(err))
	}
	logger.Info("share transport",
		zap.String("backend", string(opened.Backend)),
		zap.Bool("remote", resolver.Remote()),
	)

	// Services
	svc := service.NewDeclarationService(resolver, &http.Client{Timeout: 15 * time.Second})

	// gRPC server with interceptors
	opts = append(opts, grpc.ChainUnaryInterceptor(
		grpcserver.RecoverUnary(logger),
		grpcserver.ClientUnary(*trustProxy),
		grpcserver.LoggingUnary(logger),
	))
	s := grpc.NewServer(opts...)

	// App service
	grpcserver.RegisterDeclarationsServer(s, grpcserver.New(svc))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if *dev {
		reflection.Register(s)
	}

	// Listen
	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- s.Serve(lis)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

type migrateFunc func(ctx context.Context, dsn, password string) error

// openStore opens the configured store. A store that is misconfigured, unreachable or
// fails to migrate within cfg.Timeout is logged and replaced by an unavailable adapter,
// so the server still serves self-contained links.
func openStore(ctx context.Context, cfg store.Config, logger *zap.Logger, up migrateFunc) *store.Opened {
	unavailable := func(reason string, err error) *store.Opened {
		logger.Warn(reason+"; shares use self-contained links", zap.Error(err))
		return &store.Opened{Adapter: store.Unavailable(logger), Backend: store.BackendNone}
	}

	backend, err := cfg.BackendOf()
	if err != nil {
		return unavailable("store config", err)
	}
	if backend == store.BackendPostgres {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = store.DefaultTimeout
		}
		mctx, cancel := context.WithTimeout(ctx, timeout)
		err := up(mctx, cfg.Endpoint, cfg.Credential)
		cancel()
		if err != nil {
			return unavailable("migrate up", err)
		}
	}

	opened, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return unavailable("store open", err)
	}
	return opened
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
