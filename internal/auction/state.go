package auction

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/xtrntr/auction/internal/models"
)

// Params seed the auction at startup
type Params struct {
	Users           []string
	TradeStartNanos int64
	InitBalance     int64
	Fee             int64
	Asks            []models.AskLevel
}

// State is the shared auction state. All reads and writes go through mu, which
// is held for the full duration of every operation so no caller ever sees a
// half-applied bid.
type State struct {
	mu     sync.Mutex
	ledger *ledger
	book   *askBook

	fee             int64
	tradeStartNanos int64
	clock           clock.Clock
}

// NewState builds the auction state from p. A nil clock uses wall time.
func NewState(p Params, clk clock.Clock) (*State, error) {
	if p.Fee < 0 {
		return nil, fmt.Errorf("fee must not be negative: %d", p.Fee)
	}
	l, err := newLedger(p.Users, p.InitBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid users: %w", err)
	}
	b, err := newAskBook(p.Asks)
	if err != nil {
		return nil, fmt.Errorf("invalid asks: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &State{
		ledger:          l,
		book:            b,
		fee:             p.Fee,
		tradeStartNanos: p.TradeStartNanos,
		clock:           clk,
	}, nil
}

// Snapshot returns the ask book in ascending price order
func (s *State) Snapshot() []models.AskLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.snapshot()
}

// Fee returns the per-operation fee
func (s *State) Fee() int64 { return s.fee }

// TradeStartNanos returns the configured opening time
func (s *State) TradeStartNanos() int64 { return s.tradeStartNanos }

func (s *State) nowNanos() int64 {
	return s.clock.Now().UnixNano()
}

func (s *State) isOpen(now int64) bool {
	return now >= s.tradeStartNanos
}
