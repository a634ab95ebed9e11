// file: service/account_service.go

package service

import (
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AccountService exposes the operations a command dispatcher issues against
// the account store. Each call runs to completion or fails fast; failures
// leave the account untouched.
type AccountService struct {
	repo repository.IAccountRepository
	rate decimal.Decimal
}

// NewAccountService builds the service; rate is the fraction applied by ApplyInterest.
func NewAccountService(repo repository.IAccountRepository, rate decimal.Decimal) *AccountService {
	return &AccountService{
		repo: repo,
		rate: rate,
	}
}

// GetAccount returns a snapshot of one account.
func (s *AccountService) GetAccount(accountID int64) (model.AccountView, error) {
	acc, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		return model.AccountView{}, err
	}
	return acc.View(), nil
}

// ListAccounts returns snapshots of every account in ascending id order.
func (s *AccountService) ListAccounts() []model.AccountView {
	accounts := s.repo.GetAllAccounts()
	views := make([]model.AccountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, acc.View())
	}
	return views
}

// Deposit handles the business logic for depositing funds.
func (s *AccountService) Deposit(accountID int64, amount decimal.Decimal) (*model.OperationResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
	})

	acc, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		log.WithError(err).Warn("Deposit rejected")
		return nil, err
	}

	tx, err := acc.Deposit(amount)
	if err != nil {
		log.WithError(err).Warn("Deposit rejected")
		return nil, err
	}

	log.WithField("balance", tx.BalanceAfter.String()).Info("Deposit completed")
	return &model.OperationResult{Account: acc.View(), Transaction: &tx, Applied: true}, nil
}

// Withdraw handles the business logic for withdrawing funds.
func (s *AccountService) Withdraw(accountID int64, amount decimal.Decimal) (*model.OperationResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
	})

	acc, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		log.WithError(err).Warn("Withdrawal rejected")
		return nil, err
	}

	tx, err := acc.Withdraw(amount)
	if err != nil {
		log.WithError(err).Warn("Withdrawal rejected")
		return nil, err
	}

	log.WithField("balance", tx.BalanceAfter.String()).Info("Withdrawal completed")
	return &model.OperationResult{Account: acc.View(), Transaction: &tx, Applied: true}, nil
}

// ListTransactions retrieves the transaction history for a specific account.
func (s *AccountService) ListTransactions(accountID int64) ([]model.Transaction, error) {
	acc, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		logger.Log.WithField("account_id", accountID).WithError(err).Warn("Transaction history unavailable")
		return nil, err
	}
	return acc.ListTransactions(), nil
}

// ApplyInterest accrues interest on one account. For checking accounts the
// result reports Applied=false and nothing changes.
func (s *AccountService) ApplyInterest(accountID int64) (*model.OperationResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"rate":       s.rate.String(),
	})

	acc, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		log.WithError(err).Warn("Interest rejected")
		return nil, err
	}

	tx, applied := acc.ApplyInterest(s.rate)
	if !applied {
		log.WithField("account_type", acc.Type).Info("Interest skipped for non-savings account")
		return &model.OperationResult{Account: acc.View()}, nil
	}

	log.WithFields(logrus.Fields{
		"interest": tx.Amount.String(),
		"balance":  tx.BalanceAfter.String(),
	}).Info("Interest applied")
	return &model.OperationResult{Account: acc.View(), Transaction: &tx, Applied: true}, nil
}
