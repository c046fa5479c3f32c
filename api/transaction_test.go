package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"fintrack/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTxRouter(h *TransactionHandler) *gin.Engine {
	r := newTestRouter()
	r.GET("/dashboard", h.Dashboard)
	r.GET("/add-transaction", h.AddPage)
	r.POST("/add-transaction", h.Add)
	r.GET("/edit-transaction/:id", h.EditPage)
	r.POST("/edit-transaction/:id", h.Edit)
	r.GET("/delete-transaction/:id", h.Delete)
	return r
}

func validForm() url.Values {
	return url.Values{
		"type":             {"expense"},
		"amount":           {"40"},
		"description":      {"Groceries"},
		"category_id":      {"4"},
		"transaction_date": {"2024-01-10"},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestTransactionHandler_Dashboard(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT transactions.\\*, categories.name AS category_name FROM `transactions`").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(2, 1, "expense", "40.00", "Groceries", 4, now, now, now, "Food").
			AddRow(1, 1, "income", "100.00", "Paycheck", 1, now, now, now, "Salary"))

	w := get(newTxRouter(NewTransactionHandler(db)), "/dashboard", sessionCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Welcome, Ada")
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "Paycheck")
	assert.Contains(t, body, "$100.00")
	assert.Contains(t, body, "$60.00")
	assert.Contains(t, body, `<option value="all" selected>`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Dashboard_TypeFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()

	mock.ExpectQuery("transactions.type = \\?").
		WithArgs(int64(1), "expense").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(2, 1, "expense", "40.00", "Groceries", 4, now, now, now, "Food"))

	w := get(newTxRouter(NewTransactionHandler(db)), "/dashboard?type=expense", sessionCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>1</strong>")
	assert.Contains(t, w.Body.String(), `<option value="expense" selected>`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Dashboard_FailSoft(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT transactions.\\*").WillReturnError(errors.New("relation does not exist"))

	w := get(newTxRouter(NewTransactionHandler(db)), "/dashboard?search=coffee", sessionCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Error loading transactions")
	assert.Contains(t, body, "No transactions found.")
	assert.Contains(t, body, "$0.00")
	assert.Contains(t, body, `value="coffee"`)
	assert.NotContains(t, body, "relation does not exist")
}

func TestTransactionHandler_AddPage(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT .* FROM `categories` ORDER BY sort ASC, id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort", "color"}).
			AddRow(1, "Salary", 10, "#10b981").
			AddRow(4, "Food", 40, "#ef4444"))

	w := get(newTxRouter(NewTransactionHandler(db)), "/add-transaction", sessionCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<option value="4">Food</option>`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_AddPage_StoreFailureRedirects(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT .* FROM `categories`").WillReturnError(errors.New("boom"))

	w := get(newTxRouter(NewTransactionHandler(db)), "/add-transaction", sessionCookie())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestTransactionHandler_Add(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WithArgs(int64(1), "expense", sqlmock.AnyArg(), "Groceries", int64(4), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	w := postForm(newTxRouter(NewTransactionHandler(db)), "/add-transaction", validForm(), sessionCookie())

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Add_RejectsBadAmount(t *testing.T) {
	db, mock := setupMockDB(t)
	r := newTxRouter(NewTransactionHandler(db))

	for _, amount := range []string{"-5", "abc", "0"} {
		form := validForm()
		form.Set("amount", amount)
		w := postForm(r, "/add-transaction", form, sessionCookie())
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Equal(t, "Amount must be a positive number", decodeError(t, w), amount)
	}

	// nothing reached the database
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Add_MissingField(t *testing.T) {
	db, _ := setupMockDB(t)

	form := validForm()
	form.Del("description")
	w := postForm(newTxRouter(NewTransactionHandler(db)), "/add-transaction", form, sessionCookie())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "All fields are required", decodeError(t, w))
}

func TestTransactionHandler_Add_StoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	w := postForm(newTxRouter(NewTransactionHandler(db)), "/add-transaction", validForm(), sessionCookie())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to add transaction", decodeError(t, w))
}

func TestTransactionHandler_Edit_ForeignTransaction(t *testing.T) {
	db, mock := setupMockDB(t)

	// transaction 2 belongs to another user
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions` SET .* WHERE id = \\? AND user_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	w := postForm(newTxRouter(NewTransactionHandler(db)), "/edit-transaction/2", validForm(), sessionCookie())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Transaction not found", decodeError(t, w))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Edit(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := postForm(newTxRouter(NewTransactionHandler(db)), "/edit-transaction/2", validForm(), sessionCookie())

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Edit_NonNumericID(t *testing.T) {
	db, mock := setupMockDB(t)

	w := postForm(newTxRouter(NewTransactionHandler(db)), "/edit-transaction/abc", validForm(), sessionCookie())
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_EditPage(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows(transactionColumns[:9]).
			AddRow(2, 1, "expense", "40.00", "Groceries", 4, date, date, date))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Salary").
			AddRow(4, "Food"))

	w := get(newTxRouter(NewTransactionHandler(db)), "/edit-transaction/2", sessionCookie())

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="40.00"`)
	assert.Contains(t, body, `value="2024-01-10"`)
	assert.Contains(t, body, `<option value="4" selected>Food</option>`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_EditPage_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	r := newTxRouter(NewTransactionHandler(db))

	w := get(r, "/edit-transaction/2", sessionCookie())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction not found")

	w = get(r, "/edit-transaction/x", sessionCookie())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionHandler_Delete(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions` WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := get(newTxRouter(NewTransactionHandler(db)), "/delete-transaction/3", sessionCookie())

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_ForeignTransaction(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions`").
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := newTxRouter(NewTransactionHandler(db))
	w := get(r, "/delete-transaction/3", sessionCookie())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Transaction not found", decodeError(t, w))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, http.StatusNotFound, get(r, "/delete-transaction/0", sessionCookie()).Code)
}

func TestTransactionHandler_APICreateAndList(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT transactions.\\*").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(5, 1, "income", "12.50", "Gift", 1, now, now, now, "Salary"))

	h := NewTransactionHandler(db)
	r := newTestRouter()
	r.Use(setUserIDMiddleware(1))
	r.POST("/api/v1/transactions", h.APICreate)
	r.GET("/api/v1/transactions", h.APIList)

	body := `{"type":"income","amount":"12.5","description":"Gift","category_id":1,"transaction_date":"2024-01-15"}`
	req := httptest.NewRequest("POST", "/api/v1/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":5`)

	w = get(r, "/api/v1/transactions")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Transactions []map[string]interface{} `json:"transactions"`
			Summary      map[string]interface{}   `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Transactions, 1)
	assert.Equal(t, "Salary", resp.Data.Transactions[0]["category_name"])
	assert.Equal(t, "12.5", resp.Data.Summary["total_income"])
	assert.Equal(t, float64(1), resp.Data.Summary["transaction_count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_APICreate_Invalid(t *testing.T) {
	db, mock := setupMockDB(t)

	r := newTestRouter()
	r.Use(setUserIDMiddleware(1))
	r.POST("/api/v1/transactions", NewTransactionHandler(db).APICreate)

	body := `{"type":"expense","amount":-5,"description":"x","category_id":1,"transaction_date":"2024-01-15"}`
	req := httptest.NewRequest("POST", "/api/v1/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Amount must be a positive number")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_APICreate_HugeExponent(t *testing.T) {
	db, mock := setupMockDB(t)

	r := newTestRouter()
	r.Use(setUserIDMiddleware(1))
	r.POST("/api/v1/transactions", NewTransactionHandler(db).APICreate)

	body := `{"type":"expense","amount":"1e2000000000","description":"x","category_id":1,"transaction_date":"2024-01-15"}`
	req := httptest.NewRequest("POST", "/api/v1/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Amount is too large")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_APIDelete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := newTestRouter()
	r.Use(setUserIDMiddleware(1))
	r.DELETE("/api/v1/transactions/:id", NewTransactionHandler(db).APIDelete)

	req := httptest.NewRequest("DELETE", "/api/v1/transactions/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":404`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutationError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("update transaction: %w", errors.New("deadlock")), http.StatusInternalServerError, "Failed to update transaction"},
		{fmt.Errorf("delete transaction: %w", service.ErrNotFound), http.StatusNotFound, msgTransactionMissing},
		{&service.ValidationError{Message: "Invalid category"}, http.StatusBadRequest, "Invalid category"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/edit-transaction/1", nil)

		mutationError(c, tc.err, "Failed to update transaction")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.msg, decodeError(t, w))
	}
}

func TestAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/categories", nil)

	apiError(c, fmt.Errorf("list categories: %w", errors.New("timeout")), "Failed to load categories")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/transactions/9", nil)

	apiError(c, service.ErrNotFound, "Failed to delete transaction")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
