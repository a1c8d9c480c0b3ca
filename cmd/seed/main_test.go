package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtrntr/auction/internal/auction"
	"github.com/xtrntr/auction/internal/models"
)

func TestBuild(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cfg := build(seedOpts{
		Users:     3,
		Prefix:    "t",
		Balance:   500,
		Fee:       2,
		Levels:    3,
		BasePrice: 100,
		Step:      5,
		Vol:       4,
		StartIn:   time.Minute,
	}, now)

	assert.Equal(t, []string{"t1", "t2", "t3"}, cfg.Users)
	assert.Equal(t, now.Add(time.Minute).UnixNano(), cfg.TradeStartNanos)
	assert.Equal(t, []models.AskLevel{
		{Price: 100, Vol: 4},
		{Price: 105, Vol: 4},
		{Price: 110, Vol: 4},
	}, cfg.Asks)

	_, err := auction.NewState(cfg.Params(), nil)
	require.NoError(t, err)
}
