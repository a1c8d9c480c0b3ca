package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/xtrntr/auction/internal/auction"
	"github.com/xtrntr/auction/internal/models"
)

const (
	DefaultConfigFile   = "auction.json"
	DefaultAddr         = "127.0.0.1:5000"
	DefaultRedisChannel = "auction:settlements"
	DefaultFeedInterval = 5 * time.Second
)

// Flags are the command line options of the server
type Flags struct {
	ConfigFile   string        `short:"C" long:"config" default:"auction.json" description:"Path to the auction JSON file"`
	EnvFile      string        `long:"envfile" description:"Path to a .env file (default .env in the working directory)"`
	Listen       string        `long:"listen" description:"Address to listen on, overrides AUCTION_ADDR"`
	DebugLevel   string        `short:"d" long:"debuglevel" default:"info" description:"Logging level {debug, info, warn, error}"`
	FeedInterval time.Duration `long:"feedinterval" default:"5s" description:"How often the ask book is pushed to websocket clients (0 disables the tick)"`
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	var f Flags
	parser := flags.NewParser(&f, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &f, nil
}

// Env holds settings read from the process environment
type Env struct {
	Addr         string // AUCTION_ADDR
	DatabaseURL  string // DATABASE_URL, optional settlement journal
	RedisAddr    string // REDIS_ADDR, optional settlement publisher
	RedisChannel string // REDIS_CHANNEL
}

// LoadEnv reads the environment, after loading envPath (or .env) if present.
// Priority: ENV > .env file > defaults
func LoadEnv(envPath string) Env {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	return Env{
		Addr:         getEnv("AUCTION_ADDR", DefaultAddr),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisChannel: getEnv("REDIS_CHANNEL", DefaultRedisChannel),
	}
}

// ListenAddr picks the listen address: the flag wins over the environment.
func ListenAddr(f *Flags, env Env) string {
	if f != nil && f.Listen != "" {
		return f.Listen
	}
	if env.Addr != "" {
		return env.Addr
	}
	return DefaultAddr
}

// Auction is the auction file: who may trade, when, and what is for sale.
type Auction struct {
	Users           []string          `json:"users"`
	TradeStartNanos int64             `json:"trade_start_nanos"`
	InitBalance     int64             `json:"init_balance"`
	Fee             int64             `json:"fee"`
	Asks            []models.AskLevel `json:"asks"`
}

// LoadAuction reads and decodes the auction file at path. Field-level
// validation happens when the state is built from it.
func LoadAuction(path string) (*Auction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open auction config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var a Auction
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to parse auction config %s: %w", path, err)
	}
	return &a, nil
}

// Write stores a as indented JSON at path.
func (a *Auction) Write(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write auction config: %w", err)
	}
	return nil
}

// Params converts the file into auction parameters
func (a *Auction) Params() auction.Params {
	return auction.Params{
		Users:           a.Users,
		TradeStartNanos: a.TradeStartNanos,
		InitBalance:     a.InitBalance,
		Fee:             a.Fee,
		Asks:            a.Asks,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
