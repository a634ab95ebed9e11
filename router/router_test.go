// file: router/router_test.go

package router_test

import (
	"encoding/json"
	"go-bank-ledger/app"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// --- Test Helper Functions ---

// newTestApp holds savings account 101 (balance 100) and checking account 102 (balance 50).
func newTestApp(t *testing.T) *app.TestApp {
	t.Helper()
	savings, err := model.NewAccount(101, "Alice", model.AccountTypeSavings, decimal.NewFromInt(100), decimal.NewFromInt(5000))
	require.NoError(t, err)
	checking, err := model.NewAccount(102, "Bob", model.AccountTypeChecking, decimal.NewFromInt(50), decimal.NewFromInt(3000))
	require.NoError(t, err)

	testApp, err := app.NewTestApp([]*model.Account{savings, checking}, decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	return testApp
}

func serve(testApp *app.TestApp, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) model.OperationResult {
	t.Helper()
	var result model.OperationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	return result
}

// --- Test Suites ---

func TestHealthCheck_Integration(t *testing.T) {
	rr := serve(newTestApp(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"API is healthy and running"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	testApp := newTestApp(t)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()

	testApp.Router.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestListAccounts_Integration(t *testing.T) {
	rr := serve(newTestApp(t), http.MethodGet, "/accounts", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var views []model.AccountView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, int64(101), views[0].ID)
	assert.Equal(t, model.AccountTypeChecking, views[1].Type)
}

func TestGetAccount_Integration(t *testing.T) {
	testApp := newTestApp(t)

	t.Run("found", func(t *testing.T) {
		rr := serve(testApp, http.MethodGet, "/accounts/102", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var view model.AccountView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		assert.Equal(t, "Bob", view.Name)
		assert.True(t, view.Balance.Equal(decimal.NewFromInt(50)))
	})

	t.Run("not found", func(t *testing.T) {
		rr := serve(testApp, http.MethodGet, "/accounts/999", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non numeric id does not match a route", func(t *testing.T) {
		rr := serve(testApp, http.MethodGet, "/accounts/abc", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeposit_Integration(t *testing.T) {
	testApp := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		rr := serve(testApp, http.MethodPost, "/accounts/101/deposit", `{"amount":"50.25"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		result := decodeResult(t, rr)
		assert.True(t, result.Applied)
		require.NotNil(t, result.Transaction)
		assert.Equal(t, model.TransactionDeposit, result.Transaction.Kind)
		assert.True(t, result.Account.Balance.Equal(decimal.RequireFromString("150.25")))
	})

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"negative amount", "/accounts/101/deposit", `{"amount":"-5"}`, http.StatusBadRequest},
		{"zero amount", "/accounts/101/deposit", `{"amount":"0"}`, http.StatusBadRequest},
		{"sub-cent amount", "/accounts/101/deposit", `{"amount":"0.001"}`, http.StatusBadRequest},
		{"exponent notation", "/accounts/101/deposit", `{"amount":"1e-50000000"}`, http.StatusBadRequest},
		{"non numeric amount", "/accounts/101/deposit", `{"amount":"lots"}`, http.StatusBadRequest},
		{"missing amount", "/accounts/101/deposit", `{}`, http.StatusBadRequest},
		{"unknown field", "/accounts/101/deposit", `{"amount":"5","currency":"USD"}`, http.StatusBadRequest},
		{"malformed body", "/accounts/101/deposit", `{"amount":`, http.StatusBadRequest},
		{"unknown account", "/accounts/999/deposit", `{"amount":"5"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(testApp, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, rr.Code, rr.Body.String())
		})
	}

	view, err := testApp.AccountService.GetAccount(101)
	require.NoError(t, err)
	assert.Equal(t, 1, view.TransactionCount)
}

func TestWithdraw_Integration(t *testing.T) {
	testApp := newTestApp(t)

	t.Run("insufficient funds", func(t *testing.T) {
		rr := serve(testApp, http.MethodPost, "/accounts/102/withdraw", `{"amount":"50.01"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("exact balance", func(t *testing.T) {
		rr := serve(testApp, http.MethodPost, "/accounts/102/withdraw", `{"amount":"50"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		result := decodeResult(t, rr)
		assert.True(t, result.Account.Balance.IsZero())
		assert.Equal(t, model.TransactionWithdraw, result.Transaction.Kind)
	})

	t.Run("wrong method", func(t *testing.T) {
		rr := serve(testApp, http.MethodGet, "/accounts/102/withdraw", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestApplyInterest_Integration(t *testing.T) {
	testApp := newTestApp(t)

	t.Run("savings", func(t *testing.T) {
		rr := serve(testApp, http.MethodPost, "/accounts/101/interest", "")
		require.Equal(t, http.StatusOK, rr.Code)
		result := decodeResult(t, rr)
		assert.True(t, result.Applied)
		assert.True(t, result.Account.Balance.Equal(decimal.NewFromInt(101)))
	})

	t.Run("checking is a no-op", func(t *testing.T) {
		rr := serve(testApp, http.MethodPost, "/accounts/102/interest", "")
		require.Equal(t, http.StatusOK, rr.Code)
		result := decodeResult(t, rr)
		assert.False(t, result.Applied)
		assert.Nil(t, result.Transaction)
		assert.Zero(t, result.Account.TransactionCount)
	})
}

func TestListTransactions_Integration(t *testing.T) {
	testApp := newTestApp(t)
	serve(testApp, http.MethodPost, "/accounts/101/deposit", `{"amount":"10"}`)
	serve(testApp, http.MethodPost, "/accounts/101/withdraw", `{"amount":"20"}`)
	serve(testApp, http.MethodPost, "/accounts/101/interest", "")

	rr := serve(testApp, http.MethodGet, "/accounts/101/transactions", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var txs []model.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &txs))
	require.Len(t, txs, 3)
	assert.Equal(t, model.TransactionDeposit, txs[0].Kind)
	assert.Equal(t, model.TransactionWithdraw, txs[1].Kind)
	assert.Equal(t, model.TransactionInterest, txs[2].Kind)
	assert.True(t, txs[2].Amount.Equal(decimal.RequireFromString("0.9")))
	assert.True(t, txs[2].BalanceAfter.Equal(decimal.RequireFromString("90.9")))

	rr = serve(testApp, http.MethodGet, "/accounts/999/transactions", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConcurrentWithdrawals_Integration(t *testing.T) {
	testApp := newTestApp(t)

	var wg sync.WaitGroup
	codes := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- serve(testApp, http.MethodPost, "/accounts/101/withdraw", `{"amount":"10"}`).Code
		}()
	}
	wg.Wait()
	close(codes)

	ok, conflict := 0, 0
	for code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, conflict)

	view, err := testApp.AccountService.GetAccount(101)
	require.NoError(t, err)
	assert.True(t, view.Balance.IsZero())
}
