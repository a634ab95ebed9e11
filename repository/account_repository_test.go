package repository

import (
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func mustAccount(t *testing.T, id int64, accountType model.AccountType, balance int64) *model.Account {
	t.Helper()
	acc, err := model.NewAccount(id, "user", accountType, decimal.NewFromInt(balance), decimal.Zero)
	require.NoError(t, err)
	return acc
}

func TestAccountRepository_GetAccountByID(t *testing.T) {
	a := mustAccount(t, 7, model.AccountTypeSavings, 100)
	repo, err := NewAccountRepository([]*model.Account{a})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		got, err := repo.GetAccountByID(7)
		assert.NoError(t, err)
		assert.Same(t, a, got)
	})

	t.Run("not found", func(t *testing.T) {
		got, err := repo.GetAccountByID(8)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.Nil(t, got)
		assert.Equal(t, 1, repo.Count())
		assert.True(t, a.Balance().Equal(decimal.NewFromInt(100)))
	})
}

func TestNewAccountRepository_Duplicate(t *testing.T) {
	_, err := NewAccountRepository([]*model.Account{
		mustAccount(t, 1, model.AccountTypeChecking, 1),
		mustAccount(t, 1, model.AccountTypeSavings, 2),
	})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestAccountRepository_ForEachOrder(t *testing.T) {
	repo, err := NewAccountRepository([]*model.Account{
		mustAccount(t, 30, model.AccountTypeChecking, 1),
		mustAccount(t, 10, model.AccountTypeChecking, 1),
		mustAccount(t, 20, model.AccountTypeSavings, 1),
	})
	require.NoError(t, err)

	var visited []int64
	repo.ForEach(func(a *model.Account) { visited = append(visited, a.ID) })
	assert.Equal(t, []int64{10, 20, 30}, visited)

	var listed []int64
	for _, a := range repo.GetAllAccounts() {
		listed = append(listed, a.ID)
	}
	assert.Equal(t, visited, listed)
}

func TestAccountRepository_ConcurrentLookupAndIteration(t *testing.T) {
	var accounts []*model.Account
	for i := int64(1); i <= 20; i++ {
		accounts = append(accounts, mustAccount(t, i, model.AccountTypeSavings, 100))
	}
	repo, err := NewAccountRepository(accounts)
	require.NoError(t, err)

	rate := decimal.RequireFromString("0.01")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			repo.ForEach(func(a *model.Account) { a.ApplyInterest(rate) })
		}
	}()
	go func() {
		defer wg.Done()
		for i := int64(1); i <= 20; i++ {
			acc, err := repo.GetAccountByID(i)
			if assert.NoError(t, err) {
				_, _ = acc.Deposit(decimal.NewFromInt(1))
			}
		}
	}()
	wg.Wait()

	repo.ForEach(func(a *model.Account) {
		assert.Len(t, a.ListTransactions(), 6)
	})
}
