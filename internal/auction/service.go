package auction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xtrntr/auction/internal/models"
	"go.uber.org/zap"
)

// Journal receives every matched bid. Records are delivered by Run, never on
// the caller of PlaceBid.
type Journal interface {
	Record(ctx context.Context, s models.Settlement) error
}

const (
	journalQueueSize = 1024
	journalTimeout   = 5 * time.Second
)

// Service implements the auction operations. Each one is a single
// transaction against State.
type Service struct {
	state   *State
	journal Journal
	log     *zap.Logger

	queue          chan models.Settlement
	journalTimeout time.Duration
}

// NewService creates a service over state. journal and logger may be nil.
// With a journal, Run must be running for settlements to be delivered.
func NewService(state *State, journal Journal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		state:          state,
		journal:        journal,
		log:            logger,
		queue:          make(chan models.Settlement, journalQueueSize),
		journalTimeout: journalTimeout,
	}
}

// Ping charges the fee and reports the clock, the trade start and the new
// balance. It is allowed before trading opens.
func (s *Service) Ping(user string) (models.PingResult, error) {
	res, err := s.ping(user)
	if err != nil {
		s.log.Debug("ping rejected", zap.String("user", user), zap.Error(err))
		return models.PingResult{}, err
	}
	return res, nil
}

func (s *Service) ping(user string) (models.PingResult, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	acc, err := st.ledger.debitFee(user, st.fee)
	if err != nil {
		return models.PingResult{}, err
	}
	return models.PingResult{
		NowNanos:        st.nowNanos(),
		TradeStartNanos: st.tradeStartNanos,
		Balance:         acc.Balance,
	}, nil
}

// CheckAsks charges the fee and then returns the ask book. Before the trade
// start it fails with ErrNotYetOpen, and the fee stays charged.
func (s *Service) CheckAsks(user string) (models.AsksResult, error) {
	res, err := s.checkAsks(user)
	if err != nil {
		s.log.Debug("check_asks rejected", zap.String("user", user), zap.Error(err))
		return models.AsksResult{}, err
	}
	return res, nil
}

func (s *Service) checkAsks(user string) (models.AsksResult, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := st.ledger.debitFee(user, st.fee); err != nil {
		return models.AsksResult{}, err
	}
	if now := st.nowNanos(); !st.isOpen(now) {
		return models.AsksResult{}, fmt.Errorf("%w: opens at %d, now %d", ErrNotYetOpen, st.tradeStartNanos, now)
	}
	return models.AsksResult{Asks: st.book.snapshot()}, nil
}

// PlaceBid tries to claim one unit at price. The fee is charged as soon as
// the user can afford it, so later rejections (not open, already traded)
// still cost the fee. A bid against an absent or empty level is not an error:
// it returns TradeSucc false and changes nothing beyond the fee. A match is
// queued for the journal; PlaceBid never waits on it.
func (s *Service) PlaceBid(ctx context.Context, user string, price int64) (models.BidResult, error) {
	res, stl, err := s.placeBid(user, price)
	if err != nil {
		s.log.Debug("bid rejected", zap.String("user", user), zap.Int64("price", price), zap.Error(err))
		return models.BidResult{}, err
	}
	if stl == nil {
		s.log.Debug("bid unmatched", zap.String("user", user), zap.Int64("price", price))
		return res, nil
	}

	s.log.Info("bid matched",
		zap.String("id", stl.ID),
		zap.String("user", user),
		zap.Int64("price", price),
		zap.Int64("balance", stl.Balance))
	s.enqueue(*stl)
	return res, nil
}

func (s *Service) placeBid(user string, price int64) (models.BidResult, *models.Settlement, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	acc, err := st.ledger.debitFee(user, st.fee)
	if err != nil {
		return models.BidResult{}, nil, err
	}
	now := st.nowNanos()
	if !st.isOpen(now) {
		return models.BidResult{}, nil, fmt.Errorf("%w: opens at %d, now %d", ErrNotYetOpen, st.tradeStartNanos, now)
	}
	if acc.DoneTrade {
		return models.BidResult{}, nil, fmt.Errorf("%w: %q", ErrAlreadyTraded, user)
	}

	if vol, ok := st.book.volume(price); !ok || vol <= 0 {
		return models.BidResult{TradeSucc: false}, nil, nil
	}
	// The fee is already spent, so the post-fee balance must still cover price.
	if acc.Balance < price {
		return models.BidResult{}, nil, fmt.Errorf("%w: %q has %d, price is %d", ErrInsufficientFunds, user, acc.Balance, price)
	}
	if st.book.decrement(price) != Matched {
		return models.BidResult{TradeSucc: false}, nil, nil
	}
	st.ledger.settle(acc, price)

	return models.BidResult{TradeSucc: true}, &models.Settlement{
		ID:        uuid.NewString(),
		User:      user,
		Price:     price,
		Fee:       st.fee,
		Balance:   acc.Balance,
		SettledAt: time.Unix(0, now).UTC(),
	}, nil
}

func (s *Service) enqueue(stl models.Settlement) {
	if s.journal == nil {
		return
	}
	select {
	case s.queue <- stl:
	default:
		s.log.Warn("journal queue full, dropping settlement", zap.String("id", stl.ID), zap.String("user", stl.User))
	}
}

// Run delivers queued settlements to the journal until ctx is done, then
// flushes whatever is still buffered. Each record gets its own deadline, and
// the bid has already been applied, so journal failures are only logged.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case stl := <-s.queue:
			s.record(stl)
		case <-ctx.Done():
			for {
				select {
				case stl := <-s.queue:
					s.record(stl)
				default:
					return nil
				}
			}
		}
	}
}

func (s *Service) record(stl models.Settlement) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.journalTimeout)
	defer cancel()
	if err := s.journal.Record(ctx, stl); err != nil {
		s.log.Warn("failed to journal settlement", zap.String("id", stl.ID), zap.Error(err))
	}
}

// Board splits users into those who have traded and those still running,
// each sorted by descending balance. Ties keep registration order, but
// callers should not depend on that.
func (s *Service) Board() models.Board {
	board := models.Board{
		DoneUsers:    []models.BoardEntry{},
		RunningUsers: []models.BoardEntry{},
	}

	st := s.state
	st.mu.Lock()
	st.ledger.each(func(name string, acc models.Account) {
		entry := models.BoardEntry{Name: name, Account: acc}
		if acc.DoneTrade {
			board.DoneUsers = append(board.DoneUsers, entry)
		} else {
			board.RunningUsers = append(board.RunningUsers, entry)
		}
	})
	st.mu.Unlock()

	byBalance := func(entries []models.BoardEntry) {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Balance > entries[j].Balance
		})
	}
	byBalance(board.DoneUsers)
	byBalance(board.RunningUsers)
	return board
}
