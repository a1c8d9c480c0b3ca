package auction

import (
	"fmt"

	"github.com/xtrntr/auction/internal/models"
)

// ledger holds the closed set of accounts. It has no lock of its own; every
// call happens with the owning State's mutex held.
type ledger struct {
	order    []string // registration order, used for stable enumeration
	accounts map[string]*models.Account
}

func newLedger(users []string, initBalance int64) (*ledger, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("at least one user is required")
	}
	if initBalance < 0 {
		return nil, fmt.Errorf("initial balance must not be negative: %d", initBalance)
	}

	l := &ledger{
		order:    make([]string, 0, len(users)),
		accounts: make(map[string]*models.Account, len(users)),
	}
	for _, name := range users {
		if name == "" {
			return nil, fmt.Errorf("username cannot be empty")
		}
		if _, dup := l.accounts[name]; dup {
			return nil, fmt.Errorf("duplicate user %q", name)
		}
		l.order = append(l.order, name)
		l.accounts[name] = &models.Account{Balance: initBalance}
	}
	return l, nil
}

func (l *ledger) lookup(user string) (*models.Account, error) {
	acc, ok := l.accounts[user]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, user)
	}
	return acc, nil
}

// debitFee charges fee to user if the balance covers it. Once taken the fee is
// never refunded, whatever the rest of the calling operation decides.
func (l *ledger) debitFee(user string, fee int64) (*models.Account, error) {
	acc, err := l.lookup(user)
	if err != nil {
		return nil, err
	}
	if acc.Balance < fee {
		return nil, fmt.Errorf("%w: %q has %d, fee is %d", ErrInsufficientFunds, user, acc.Balance, fee)
	}
	acc.Balance -= fee
	return acc, nil
}

// settle charges the matched price and closes the account for trading.
func (l *ledger) settle(acc *models.Account, price int64) {
	acc.Balance -= price
	acc.DoneTrade = true
}

func (l *ledger) each(fn func(name string, acc models.Account)) {
	for _, name := range l.order {
		fn(name, *l.accounts[name])
	}
}
