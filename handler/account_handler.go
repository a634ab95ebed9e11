package handler

import (
	"go-bank-ledger/common"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(service *service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// ListAccounts returns a snapshot of every account.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	writeJSON(w, http.StatusOK, h.service.ListAccounts())
	return nil
}

// GetAccount returns a snapshot of the account in the path.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	view, err := h.service.GetAccount(accountID)
	if err != nil {
		return mapLedgerError(err, "Could not retrieve account")
	}

	writeJSON(w, http.StatusOK, view)
	return nil
}

// Deposit handles the request to add funds to an account.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, amount, appErr := h.decodeAmount(r)
	if appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
	}).Info("Deposit request received")

	result, err := h.service.Deposit(accountID, amount)
	if err != nil {
		return mapLedgerError(err, "Could not process deposit")
	}

	writeJSON(w, http.StatusOK, result)
	return nil
}

// Withdraw handles the request to take funds out of an account.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, amount, appErr := h.decodeAmount(r)
	if appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
	}).Info("Withdraw request received")

	result, err := h.service.Withdraw(accountID, amount)
	if err != nil {
		return mapLedgerError(err, "Could not process withdrawal")
	}

	writeJSON(w, http.StatusOK, result)
	return nil
}

// ApplyInterest accrues interest on one account. Checking accounts answer
// 200 with "applied": false.
func (h *AccountHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	result, err := h.service.ApplyInterest(accountID)
	if err != nil {
		return mapLedgerError(err, "Could not apply interest")
	}

	writeJSON(w, http.StatusOK, result)
	return nil
}

func (h *AccountHandler) decodeAmount(r *http.Request) (int64, decimal.Decimal, *common.AppError) {
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return 0, decimal.Zero, appErr
	}

	var req model.AmountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return 0, decimal.Zero, appErr
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return 0, decimal.Zero, common.NewAppError(http.StatusBadRequest, "Invalid amount", err)
	}
	return accountID, amount, nil
}
