package auction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtrntr/auction/internal/models"
)

func TestAskBook_New(t *testing.T) {
	tests := []struct {
		name        string
		asks        []models.AskLevel
		expectError bool
	}{
		{
			name: "Success",
			asks: []models.AskLevel{{Price: 50, Vol: 1}, {Price: 40, Vol: 3}},
		},
		{
			name: "Empty",
			asks: nil,
		},
		{
			name:        "ZeroVolume",
			asks:        []models.AskLevel{{Price: 50, Vol: 0}},
			expectError: true,
		},
		{
			name:        "NegativePrice",
			asks:        []models.AskLevel{{Price: -5, Vol: 1}},
			expectError: true,
		},
		{
			name:        "DuplicatePrice",
			asks:        []models.AskLevel{{Price: 50, Vol: 1}, {Price: 50, Vol: 2}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAskBook(tt.asks)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAskBook_SnapshotAscending(t *testing.T) {
	b, err := newAskBook([]models.AskLevel{
		{Price: 70, Vol: 1},
		{Price: 30, Vol: 5},
		{Price: 50, Vol: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, []models.AskLevel{
		{Price: 30, Vol: 5},
		{Price: 50, Vol: 2},
		{Price: 70, Vol: 1},
	}, b.snapshot())
}

func TestAskBook_Decrement(t *testing.T) {
	b, err := newAskBook([]models.AskLevel{{Price: 50, Vol: 2}, {Price: 60, Vol: 1}})
	require.NoError(t, err)

	assert.Equal(t, NoSuchPriceLevel, b.decrement(999))

	assert.Equal(t, Matched, b.decrement(50))
	vol, ok := b.volume(50)
	assert.True(t, ok)
	assert.Equal(t, int64(1), vol)

	// Last unit removes the level entirely.
	assert.Equal(t, Matched, b.decrement(50))
	_, ok = b.volume(50)
	assert.False(t, ok)
	assert.Equal(t, NoSuchPriceLevel, b.decrement(50))

	assert.Equal(t, []models.AskLevel{{Price: 60, Vol: 1}}, b.snapshot())
}

func TestAskBook_DecrementExhausted(t *testing.T) {
	b, err := newAskBook(nil)
	require.NoError(t, err)

	// Not reachable through the public API; forced to cover the guard.
	b.levels.Set(int64(10), int64(0))
	assert.Equal(t, Exhausted, b.decrement(10))
	vol, ok := b.volume(10)
	assert.True(t, ok)
	assert.Equal(t, int64(0), vol)
}

func TestMatchOutcome_String(t *testing.T) {
	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "no_such_price_level", NoSuchPriceLevel.String())
	assert.Equal(t, "MatchOutcome(9)", MatchOutcome(9).String())
}
