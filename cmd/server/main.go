package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xtrntr/auction/internal/api"
	"github.com/xtrntr/auction/internal/auction"
	"github.com/xtrntr/auction/internal/config"
	"github.com/xtrntr/auction/internal/db"
	"github.com/xtrntr/auction/internal/journal"
	"github.com/xtrntr/auction/internal/logging"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Main entry point: loads config, builds the auction state and serves HTTP
func main() {
	opts, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	env := config.LoadEnv(opts.EnvFile)

	logger, err := logging.NewLogger(opts.DebugLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, env, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, opts *config.Flags, env config.Env, logger *zap.Logger) error {
	cfg, err := config.LoadAuction(opts.ConfigFile)
	if err != nil {
		return err
	}
	state, err := auction.NewState(cfg.Params(), nil)
	if err != nil {
		return fmt.Errorf("invalid auction config %s: %w", opts.ConfigFile, err)
	}
	logger.Info("auction loaded",
		zap.String("config", opts.ConfigFile),
		zap.Int("users", len(cfg.Users)),
		zap.Int("ask_levels", len(cfg.Asks)),
		zap.Int64("fee", state.Fee()),
		zap.Int64("trade_start_nanos", state.TradeStartNanos()))

	feed := api.NewFeed(state, logger.Named("feed"))
	sinks := journal.Multi{feed}

	if env.DatabaseURL != "" {
		database, err := db.NewDB(ctx, env.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close(context.Background())
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, database)
		logger.Info("postgres settlement journal enabled")
	}
	if env.RedisAddr != "" {
		pub, err := journal.NewRedis(ctx, env.RedisAddr, env.RedisChannel)
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub)
		logger.Info("redis settlement publisher enabled", zap.String("channel", env.RedisChannel))
	}

	svc := auction.NewService(state, sinks, logger.Named("auction"))
	handler := api.NewHandler(svc, feed, logger.Named("http"))

	srv := &http.Server{
		Addr:              config.ListenAddr(opts, env),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The journal outlives the listener so bids still in flight at shutdown are recorded.
	journalCtx, stopJournal := context.WithCancel(context.Background())
	defer stopJournal()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(journalCtx)
	})
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		return feed.Run(gctx, opts.FeedInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopJournal()
		return err
	})
	return g.Wait()
}
