package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/xtrntr/auction/internal/auction"
	"github.com/xtrntr/auction/internal/config"
	"github.com/xtrntr/auction/internal/logging"
	"github.com/xtrntr/auction/internal/models"
	"go.uber.org/zap"
)

type seedOpts struct {
	Out       string        `short:"o" long:"out" default:"auction.json" description:"Where to write the auction file"`
	Users     int           `long:"users" default:"10" description:"Number of users to register"`
	Prefix    string        `long:"prefix" default:"trader" description:"Username prefix"`
	Balance   int64         `long:"balance" default:"1000" description:"Initial balance per user"`
	Fee       int64         `long:"fee" default:"1" description:"Fee per chargeable operation"`
	Levels    int           `long:"levels" default:"5" description:"Number of ask price levels"`
	BasePrice int64         `long:"baseprice" default:"100" description:"Lowest ask price"`
	Step      int64         `long:"step" default:"10" description:"Price step between levels"`
	Vol       int64         `long:"vol" default:"2" description:"Volume at each level"`
	StartIn   time.Duration `long:"startin" default:"30s" description:"Trading opens this long after the file is written"`
	Force     bool          `short:"f" long:"force" description:"Overwrite an existing file"`
}

// Seed writes a sample auction file for local runs
func main() {
	logger, err := logging.NewLogger("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	var opts seedOpts
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if _, err := os.Stat(opts.Out); err == nil && !opts.Force {
		logger.Info("auction file already exists, use --force to overwrite", zap.String("path", opts.Out))
		os.Exit(0)
	}

	cfg := build(opts, time.Now())

	// Reject anything the server would refuse to start with.
	if _, err := auction.NewState(cfg.Params(), nil); err != nil {
		logger.Fatal("generated config is invalid", zap.Error(err))
	}
	if err := cfg.Write(opts.Out); err != nil {
		logger.Fatal("failed to write auction file", zap.Error(err))
	}

	logger.Info("auction file written",
		zap.String("path", opts.Out),
		zap.Int("users", len(cfg.Users)),
		zap.Int("levels", len(cfg.Asks)),
		zap.Time("trade_start", time.Unix(0, cfg.TradeStartNanos)))
}

func build(opts seedOpts, now time.Time) *config.Auction {
	cfg := &config.Auction{
		TradeStartNanos: now.Add(opts.StartIn).UnixNano(),
		InitBalance:     opts.Balance,
		Fee:             opts.Fee,
	}
	for i := 1; i <= opts.Users; i++ {
		cfg.Users = append(cfg.Users, fmt.Sprintf("%s%d", opts.Prefix, i))
	}
	for i := 0; i < opts.Levels; i++ {
		cfg.Asks = append(cfg.Asks, models.AskLevel{
			Price: opts.BasePrice + int64(i)*opts.Step,
			Vol:   opts.Vol,
		})
	}
	return cfg
}
