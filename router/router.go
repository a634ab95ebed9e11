package router

import (
	"go-bank-ledger/handler"
	"go-bank-ledger/logger"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func NewRouter(accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	if accountHandler != nil {
		r.Handle("/accounts", handler.ErrorHandlingMiddleware(accountHandler.ListAccounts)).Methods(http.MethodGet)
		r.Handle("/accounts/{accountId:[0-9]+}", handler.ErrorHandlingMiddleware(accountHandler.GetAccount)).Methods(http.MethodGet)
		r.Handle("/accounts/{accountId:[0-9]+}/deposit", handler.ErrorHandlingMiddleware(accountHandler.Deposit)).Methods(http.MethodPost)
		r.Handle("/accounts/{accountId:[0-9]+}/withdraw", handler.ErrorHandlingMiddleware(accountHandler.Withdraw)).Methods(http.MethodPost)
		r.Handle("/accounts/{accountId:[0-9]+}/interest", handler.ErrorHandlingMiddleware(accountHandler.ApplyInterest)).Methods(http.MethodPost)
	}
	if transactionHandler != nil {
		r.Handle("/accounts/{accountId:[0-9]+}/transactions", handler.ErrorHandlingMiddleware(transactionHandler.ListTransactionsForAccount)).Methods(http.MethodGet)
	}

	return r
}

// loggingMiddleware tags each request with an id and logs its outcome.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		logger.Log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.status,
			"duration":   time.Since(start).String(),
		}).Info("Request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
