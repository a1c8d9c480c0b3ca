package journal

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtrntr/auction/internal/models"
)

type recorder struct {
	got []models.Settlement
	err error
}

func (r *recorder) Record(ctx context.Context, s models.Settlement) error {
	r.got = append(r.got, s)
	return r.err
}

func TestMulti_Record(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("down")}
	last := &recorder{}
	s := models.Settlement{ID: "1", User: "a", Price: 50}

	err := Multi{ok, failing, last}.Record(context.Background(), s)
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, []models.Settlement{s}, ok.got)
	assert.Equal(t, []models.Settlement{s}, last.got, "later sinks still receive the settlement")

	assert.NoError(t, Multi{}.Record(context.Background(), s))
}

// Needs a live Redis; set REDIS_ADDR to run.
func TestRedis_PublishesSettlement(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := NewRedis(ctx, addr, "auction:test:"+t.Name())
	require.NoError(t, err)
	defer r.Close()

	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	_, err = sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	s := models.Settlement{ID: "abc", User: "a", Price: 50, Fee: 10, Balance: 30, SettledAt: time.Unix(0, 0).UTC()}
	require.NoError(t, r.Record(ctx, s))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got models.Settlement
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, s, got)
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, "127.0.0.1:1", "x")
	assert.Error(t, err)
}
