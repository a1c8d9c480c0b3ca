package auction

import (
	"fmt"

	"github.com/huandu/skiplist"
	"github.com/xtrntr/auction/internal/models"
)

// MatchOutcome is the result of claiming one unit from a price level
type MatchOutcome int

const (
	NoSuchPriceLevel MatchOutcome = iota
	Exhausted
	Matched
)

func (o MatchOutcome) String() string {
	switch o {
	case NoSuchPriceLevel:
		return "no_such_price_level"
	case Exhausted:
		return "exhausted"
	case Matched:
		return "matched"
	}
	return fmt.Sprintf("MatchOutcome(%d)", int(o))
}

// askBook maps price to remaining volume, kept in ascending price order.
// Every entry has volume > 0; a level that reaches zero is removed and never
// comes back. Like the ledger, it relies on the State mutex.
type askBook struct {
	levels *skiplist.SkipList // int64 price -> int64 volume
}

func newAskBook(asks []models.AskLevel) (*askBook, error) {
	b := &askBook{levels: skiplist.New(skiplist.Int64)}
	for _, ask := range asks {
		if ask.Price <= 0 {
			return nil, fmt.Errorf("ask price must be positive: %d", ask.Price)
		}
		if ask.Vol <= 0 {
			return nil, fmt.Errorf("ask volume at price %d must be positive: %d", ask.Price, ask.Vol)
		}
		if b.levels.Get(ask.Price) != nil {
			return nil, fmt.Errorf("duplicate ask price %d", ask.Price)
		}
		b.levels.Set(ask.Price, ask.Vol)
	}
	return b, nil
}

func (b *askBook) volume(price int64) (int64, bool) {
	elem := b.levels.Get(price)
	if elem == nil {
		return 0, false
	}
	return elem.Value.(int64), true
}

// decrement claims a single unit at price, removing the level when it empties.
func (b *askBook) decrement(price int64) MatchOutcome {
	elem := b.levels.Get(price)
	if elem == nil {
		return NoSuchPriceLevel
	}
	vol := elem.Value.(int64)
	if vol <= 0 {
		return Exhausted
	}
	if vol == 1 {
		b.levels.Remove(price)
	} else {
		elem.Value = vol - 1
	}
	return Matched
}

func (b *askBook) snapshot() []models.AskLevel {
	out := make([]models.AskLevel, 0, b.levels.Len())
	for elem := b.levels.Front(); elem != nil; elem = elem.Next() {
		out = append(out, models.AskLevel{
			Price: elem.Key().(int64),
			Vol:   elem.Value.(int64),
		})
	}
	return out
}
