package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrMalformedInput = errors.New("malformed account data")

// Column names of the customer export, matched case-insensitively.
const (
	colCustomerID = "customerid"
	colName       = "name"
	colBalance    = "accountbalance"
	colSalary     = "salary"
	colType       = "accounttype"
)

var requiredColumns = []string{colCustomerID, colName, colBalance, colSalary, colType}

var validate = validator.New()

// accountRecord is one CSV row after field conversion.
type accountRecord struct {
	ID      int64           `validate:"gt=0"`
	Name    string          `validate:"required"`
	Balance decimal.Decimal `validate:"-"`
	Salary  decimal.Decimal `validate:"-"`
	Type    string          `validate:"required,oneof=checking savings"`
}

// LoadAccounts opens the customer file at path and builds the initial account set.
func LoadAccounts(path string) ([]*model.Account, error) {
	log := logger.Log.WithField("file", path)
	log.Info("Loading accounts")

	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).Error("Failed to open account file")
		return nil, fmt.Errorf("open account file: %w", err)
	}
	defer f.Close()

	accounts, err := ReadAccounts(f)
	if err != nil {
		log.WithError(err).Error("Failed to load accounts")
		return nil, err
	}

	log.WithField("accounts", len(accounts)).Info("Accounts loaded successfully")
	return accounts, nil
}

// ReadAccounts parses CSV rows with a header line. Any bad row, missing
// column or repeated id fails the whole load.
func ReadAccounts(r io.Reader) ([]*model.Account, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var accounts []*model.Account
	seen := make(map[int64]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := parseRecord(row, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}
		if first, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: line %d: customer id %d already defined on line %d", ErrMalformedInput, line, rec.ID, first)
		}
		seen[rec.ID] = line

		accountType, _ := model.ParseAccountType(rec.Type)
		acc, err := model.NewAccount(rec.ID, rec.Name, accountType, rec.Balance, rec.Salary)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}
		accounts = append(accounts, acc)

		logger.Log.WithFields(logrus.Fields{
			"account_id":   rec.ID,
			"account_type": accountType,
		}).Debug("Account record parsed")
	}
	return accounts, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[key] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformedInput, strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRecord(row []string, index map[string]int) (accountRecord, error) {
	field := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	var rec accountRecord
	id, err := strconv.ParseInt(field(colCustomerID), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("customer id %q: %v", field(colCustomerID), err)
	}
	balance, err := decimal.NewFromString(field(colBalance))
	if err != nil {
		return rec, fmt.Errorf("account balance %q: %v", field(colBalance), err)
	}
	salary, err := decimal.NewFromString(field(colSalary))
	if err != nil {
		return rec, fmt.Errorf("salary %q: %v", field(colSalary), err)
	}

	rec = accountRecord{
		ID:      id,
		Name:    field(colName),
		Balance: balance,
		Salary:  salary,
		Type:    strings.ToLower(field(colType)),
	}
	if err := validate.Struct(rec); err != nil {
		return rec, err
	}
	if balance.IsNegative() {
		return rec, fmt.Errorf("account balance %s is negative", balance)
	}
	return rec, nil
}
