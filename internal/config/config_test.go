package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtrntr/auction/internal/models"
)

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigFile, f.ConfigFile)
	assert.Equal(t, "info", f.DebugLevel)
	assert.Equal(t, DefaultFeedInterval, f.FeedInterval)

	f, err = ParseFlags([]string{"-C", "x.json", "--listen", ":9000", "-d", "debug", "--feedinterval", "250ms"})
	require.NoError(t, err)
	assert.Equal(t, "x.json", f.ConfigFile)
	assert.Equal(t, ":9000", f.Listen)
	assert.Equal(t, "debug", f.DebugLevel)
	assert.Equal(t, 250*time.Millisecond, f.FeedInterval)

	_, err = ParseFlags([]string{"--nope"})
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("AUCTION_ADDR=0.0.0.0:7000\nREDIS_ADDR=localhost:6379\n"), 0644))

	t.Setenv("AUCTION_ADDR", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("REDIS_CHANNEL", "")
	// godotenv does not override variables that already exist, even empty ones.
	require.NoError(t, os.Unsetenv("AUCTION_ADDR"))
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))

	env := LoadEnv(envPath)
	assert.Equal(t, "0.0.0.0:7000", env.Addr)
	assert.Equal(t, "localhost:6379", env.RedisAddr)
	assert.Equal(t, "postgres://from-env", env.DatabaseURL)
	assert.Equal(t, DefaultRedisChannel, env.RedisChannel)
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":1", ListenAddr(&Flags{Listen: ":1"}, Env{Addr: ":2"}))
	assert.Equal(t, ":2", ListenAddr(&Flags{}, Env{Addr: ":2"}))
	assert.Equal(t, DefaultAddr, ListenAddr(nil, Env{}))
}

func TestLoadAuction(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		body        string
		expectError bool
		expected    *Auction
	}{
		{
			name: "Success",
			body: `{"users":["a","b"],"trade_start_nanos":5,"init_balance":100,"fee":10,"asks":[{"price":50,"vol":1}]}`,
			expected: &Auction{
				Users:           []string{"a", "b"},
				TradeStartNanos: 5,
				InitBalance:     100,
				Fee:             10,
				Asks:            []models.AskLevel{{Price: 50, Vol: 1}},
			},
		},
		{
			name:        "UnknownField",
			body:        `{"users":["a"],"fees":10}`,
			expectError: true,
		},
		{
			name:        "Malformed",
			body:        `{"users":`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			a, err := LoadAuction(path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, a)
		})
	}

	_, err := LoadAuction(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestAuction_WriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auction.json")
	a := &Auction{
		Users:       []string{"a"},
		InitBalance: 100,
		Fee:         1,
		Asks:        []models.AskLevel{{Price: 10, Vol: 2}},
	}
	require.NoError(t, a.Write(path))

	loaded, err := LoadAuction(path)
	require.NoError(t, err)
	assert.Equal(t, a, loaded)

	p := loaded.Params()
	assert.Equal(t, a.Users, p.Users)
	assert.Equal(t, a.Asks, p.Asks)
	assert.Equal(t, int64(1), p.Fee)
}
