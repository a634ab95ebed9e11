package repository

import (
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"sort"

	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("duplicate account id")
)

// IAccountRepository defines the contract for the account store.
type IAccountRepository interface {
	GetAccountByID(id int64) (*model.Account, error)
	GetAllAccounts() []*model.Account
	ForEach(fn func(*model.Account))
	Count() int
}

// AccountRepository is the in-memory account store. Membership is fixed at
// construction, so lookups and iteration take no store-level lock; each
// account synchronizes itself.
type AccountRepository struct {
	accounts map[int64]*model.Account
	ids      []int64
}

// NewAccountRepository indexes the loaded accounts by id.
func NewAccountRepository(accounts []*model.Account) (*AccountRepository, error) {
	r := &AccountRepository{
		accounts: make(map[int64]*model.Account, len(accounts)),
		ids:      make([]int64, 0, len(accounts)),
	}
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		if _, exists := r.accounts[acc.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateAccount, acc.ID)
		}
		r.accounts[acc.ID] = acc
		r.ids = append(r.ids, acc.ID)
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })

	logger.Log.WithField("accounts", len(r.ids)).Info("Account store initialized")
	return r, nil
}

// GetAccountByID returns the live account entity for id.
func (r *AccountRepository) GetAccountByID(id int64) (*model.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		logger.Log.WithFields(logrus.Fields{"account_id": id}).Debug("Account lookup missed")
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// GetAllAccounts returns every account in ascending id order.
func (r *AccountRepository) GetAllAccounts() []*model.Account {
	out := make([]*model.Account, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.accounts[id])
	}
	return out
}

// ForEach calls fn for every account in ascending id order.
func (r *AccountRepository) ForEach(fn func(*model.Account)) {
	for _, id := range r.ids {
		fn(r.accounts[id])
	}
}

// Count returns the number of accounts in the store.
func (r *AccountRepository) Count() int {
	return len(r.ids)
}
