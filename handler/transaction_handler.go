package handler

import (
	"go-bank-ledger/common"
	"go-bank-ledger/service"
	"net/http"
)

// TransactionHandler serves account transaction history.
type TransactionHandler struct {
	service *service.AccountService
}

func NewTransactionHandler(s *service.AccountService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// ListTransactionsForAccount returns the account's records oldest first.
func (h *TransactionHandler) ListTransactionsForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	transactions, err := h.service.ListTransactions(accountID)
	if err != nil {
		return mapLedgerError(err, "Could not retrieve transactions")
	}

	writeJSON(w, http.StatusOK, transactions)
	return nil
}
