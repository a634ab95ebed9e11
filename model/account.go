package model

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the category of an account. Only savings accounts accrue interest.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// ParseAccountType maps a loader or request string onto an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountTypeChecking:
		return AccountTypeChecking, nil
	case AccountTypeSavings:
		return AccountTypeSavings, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
}

// MoneyScale is the number of decimal places kept on balances and records.
const MoneyScale int32 = 2

// maxAmountExponent bounds scientific-notation input such as 1e50000000,
// whose rescaling would hold an account lock for minutes.
const maxAmountExponent int32 = 15

// validScale reports whether v fits MoneyScale without rescaling a huge
// coefficient. It only inspects the exponent.
func validScale(v decimal.Decimal) bool {
	exp := v.Exponent()
	return exp >= -MoneyScale && exp <= maxAmountExponent
}

// Account owns its balance and transaction log. Every read and write of
// either goes through mu, so operations on one account are serialized while
// unrelated accounts never contend.
type Account struct {
	ID     int64
	Name   string
	Type   AccountType
	Salary decimal.Decimal

	mu           sync.Mutex
	balance      decimal.Decimal
	transactions []Transaction
}

// AccountView is a point-in-time copy of an account, safe to hand to callers.
type AccountView struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Type             AccountType     `json:"account_type"`
	Balance          decimal.Decimal `json:"balance"`
	Salary           decimal.Decimal `json:"salary"`
	TransactionCount int             `json:"transaction_count"`
}

// NewAccount builds a fully initialized account with an empty transaction log.
func NewAccount(id int64, name string, accountType AccountType, balance, salary decimal.Decimal) (*Account, error) {
	if !validScale(balance) || balance.IsNegative() {
		return nil, fmt.Errorf("opening balance %s: %w", balance, ErrInvalidAmount)
	}
	if accountType != AccountTypeChecking && accountType != AccountTypeSavings {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, accountType)
	}
	return &Account{
		ID:      id,
		Name:    name,
		Type:    accountType,
		Salary:  salary,
		balance: balance,
	}, nil
}

// Deposit adds amount to the balance and records it.
func (a *Account) Deposit(amount decimal.Decimal) (Transaction, error) {
	if !validScale(amount) || !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.balance = a.balance.Add(amount)
	return a.appendLocked(TransactionDeposit, amount), nil
}

// Withdraw removes amount from the balance. The sufficiency check and the
// deduction happen under the same lock acquisition.
func (a *Account) Withdraw(amount decimal.Decimal) (Transaction, error) {
	if !validScale(amount) || !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.balance) {
		return Transaction{}, ErrInsufficientFunds
	}
	a.balance = a.balance.Sub(amount)
	return a.appendLocked(TransactionWithdraw, amount), nil
}

// ApplyInterest credits balance*rate to a savings account and reports
// whether anything was applied. Checking accounts are left untouched.
// rate is a fraction of the current balance (0.01 means 1%). The credit is
// rounded half away from zero to MoneyScale places.
func (a *Account) ApplyInterest(rate decimal.Decimal) (Transaction, bool) {
	if a.Type != AccountTypeSavings {
		return Transaction{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	interest := a.balance.Mul(rate).Round(MoneyScale)
	a.balance = a.balance.Add(interest)
	return a.appendLocked(TransactionInterest, interest), true
}

// ListTransactions returns a copy of the log in chronological order.
func (a *Account) ListTransactions() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// View returns balance and log length read at the same instant.
func (a *Account) View() AccountView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

func (a *Account) viewLocked() AccountView {
	return AccountView{
		ID:               a.ID,
		Name:             a.Name,
		Type:             a.Type,
		Balance:          a.balance,
		Salary:           a.Salary,
		TransactionCount: len(a.transactions),
	}
}

// appendLocked must be called with mu held and after balance was updated.
func (a *Account) appendLocked(kind TransactionKind, amount decimal.Decimal) Transaction {
	tx := Transaction{
		ID:           uuid.New(),
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: a.balance,
		CreatedAt:    time.Now(),
	}
	a.transactions = append(a.transactions, tx)
	return tx
}
