package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/teller/internal/account"
	"github.com/congo-pay/teller/internal/auth"
	"github.com/congo-pay/teller/internal/config"
	"github.com/congo-pay/teller/internal/idempotency"
	"github.com/congo-pay/teller/internal/identity"
	"github.com/congo-pay/teller/internal/infra"
	"github.com/congo-pay/teller/internal/ledger"
	"github.com/congo-pay/teller/internal/logging"
	"github.com/congo-pay/teller/internal/ratelimit"
	"github.com/congo-pay/teller/internal/router"
	"github.com/congo-pay/teller/internal/server"
)

func main() {
	port := flag.String("port", "", "listen port (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := account.Bootstrap(ctx, db); err != nil {
		logger.Error("bootstrap schema", "error", err)
		os.Exit(1)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	repo := account.NewPostgresRepository(db)
	led := ledger.NewService(repo, logger)
	identitySvc := identity.NewService(led, repo, logger)
	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	limiter := ratelimit.New(cache, cfg.SigninLimit)
	idem := idempotency.New(cache, cfg.IdempotencyTTL, logger)

	rt := router.New(led, identitySvc, tokens, limiter, idem, logger)
	srv := server.New(cfg.Address(), rt, logger)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	consoleCh := make(chan struct{}, 1)
	go watchConsole(os.Stdin, consoleCh)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-consoleCh:
		logger.Info("exit command received")
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

// watchConsole signals once when the administrative exit command is read,
// case-insensitive and trimmed.
func watchConsole(r io.Reader, exit chan<- struct{}) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "exit") {
			exit <- struct{}{}
			return
		}
	}
}
