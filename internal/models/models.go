package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Account represents a registered participant
type Account struct {
	Balance   int64 `json:"balance"`
	DoneTrade bool  `json:"done_trade"` // set once, after the user's single trade
}

// AskLevel is one price level of the ask book
type AskLevel struct {
	Price int64 `json:"price"`
	Vol   int64 `json:"vol"`
}

// PingResult is returned by a successful ping
type PingResult struct {
	NowNanos        int64 `json:"now_nanos"`
	TradeStartNanos int64 `json:"trade_start_nanos"`
	Balance         int64 `json:"balance"`
}

// AsksResult is a snapshot of the ask book in ascending price order
type AsksResult struct {
	Asks []AskLevel `json:"asks"`
}

// BidResult reports whether a bid claimed a unit
type BidResult struct {
	TradeSucc bool `json:"trade_succ"`
}

// BoardEntry pairs a username with its account. It is encoded as the
// two-element array [name, {balance, done_trade}].
type BoardEntry struct {
	Name string
	Account
}

func (e BoardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Name, e.Account})
}

func (e *BoardEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("board entry: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Name); err != nil {
		return fmt.Errorf("board entry name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Account); err != nil {
		return fmt.Errorf("board entry account: %w", err)
	}
	return nil
}

// Board partitions all users by trade completion, each side ranked by balance
type Board struct {
	DoneUsers    []BoardEntry `json:"done_users"`
	RunningUsers []BoardEntry `json:"running_users"`
}

// Settlement records a matched bid
type Settlement struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Price     int64     `json:"price"`
	Fee       int64     `json:"fee"`
	Balance   int64     `json:"balance"` // balance after fee and price
	SettledAt time.Time `json:"settled_at"`
}
