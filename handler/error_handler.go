package handler

import (
	"encoding/json"
	"errors"
	"go-bank-ledger/common"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// mapLedgerError converts ledger and store errors to their HTTP status.
func mapLedgerError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, model.ErrInvalidAmount):
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, model.ErrInsufficientFunds):
		return common.NewAppError(http.StatusConflict, err.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}

// accountIDFromPath extracts the {accountId} route variable.
func accountIDFromPath(r *http.Request) (int64, *common.AppError) {
	raw := mux.Vars(r)["accountId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
