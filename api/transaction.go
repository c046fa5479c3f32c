package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/logger"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgLoadError          = "Error loading transactions"
	msgTransactionMissing = "Transaction not found"
)

// TransactionHandler dashboard and transaction pages
type TransactionHandler struct {
	transactions *service.TransactionService
}

// NewTransactionHandler creates the transaction handler
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{transactions: service.NewTransactionService(db)}
}

// filterFromQuery reads ?search= and ?type= (default all).
func filterFromQuery(c *gin.Context) service.Filter {
	return service.Filter{
		Search: c.Query("search"),
		Type:   c.DefaultQuery("type", service.FilterAll),
	}
}

// parseID positive numeric :id; anything else is treated as not found
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// viewer identity shown in page headers
func viewer(c *gin.Context) gin.H {
	data := gin.H{"userName": "", "userEmail": ""}
	if sess := middleware.CurrentSession(c); sess != nil {
		data["userName"] = sess.Name
		data["userEmail"] = sess.Email
	}
	return data
}

// Dashboard lists the user's transactions with search, type filter and
// summary. A failed query still renders the page, empty, with an error.
func (h *TransactionHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	filter := filterFromQuery(c)

	data := viewer(c)
	data["search"] = filter.Search
	data["type"] = filter.Type

	listing, err := h.transactions.List(c.Request.Context(), userID, filter)
	if err != nil {
		logger.FromContext(c).Error("dashboard query failed", "user_id", userID, "error", err)
		data["transactions"] = []models.TransactionView{}
		data["summary"] = service.Summarize(nil)
		data["error"] = msgLoadError
	} else {
		data["transactions"] = listing.Transactions
		data["summary"] = listing.Summary
	}
	c.HTML(http.StatusOK, "dashboard.html", data)
}

// AddPage new transaction form
func (h *TransactionHandler) AddPage(c *gin.Context) {
	cats, err := h.transactions.Categories(c.Request.Context())
	if err != nil {
		logger.FromContext(c).Error("load categories failed", "error", err)
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	data := viewer(c)
	data["categories"] = cats
	data["today"] = time.Now().Format(models.DateLayout)
	c.HTML(http.StatusOK, "add-transaction.html", data)
}

// Add creates a transaction from the posted form.
func (h *TransactionHandler) Add(c *gin.Context) {
	var form service.TransactionForm
	_ = c.ShouldBind(&form)

	in, err := service.ParseTransactionForm(form)
	if err != nil {
		mutationError(c, err, "Failed to add transaction")
		return
	}

	if _, err := h.transactions.Create(c.Request.Context(), middleware.GetCurrentUserID(c), in); err != nil {
		mutationError(c, err, "Failed to add transaction")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// EditPage edit form prefilled with the transaction
func (h *TransactionHandler) EditPage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"message": msgTransactionMissing})
		return
	}

	tx, cats, err := h.transactions.EditForm(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if errors.Is(err, service.ErrNotFound) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"message": msgTransactionMissing})
		return
	}
	if err != nil {
		logger.FromContext(c).Error("load edit form failed", "transaction_id", id, "error", err)
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	data := viewer(c)
	data["transaction"] = tx
	data["categories"] = cats
	c.HTML(http.StatusOK, "edit-transaction.html", data)
}

// Edit applies the posted form to a transaction the user owns.
func (h *TransactionHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		jsonError(c, http.StatusNotFound, msgTransactionMissing)
		return
	}

	var form service.TransactionForm
	_ = c.ShouldBind(&form)

	in, err := service.ParseTransactionForm(form)
	if err != nil {
		mutationError(c, err, "Failed to update transaction")
		return
	}

	if err := h.transactions.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, in); err != nil {
		mutationError(c, err, "Failed to update transaction")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Delete removes a transaction the user owns.
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		jsonError(c, http.StatusNotFound, msgTransactionMissing)
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		mutationError(c, err, "Failed to delete transaction")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// mutationError maps a service error onto the {"error": ...} contract.
func mutationError(c *gin.Context, err error, fallback string) {
	switch {
	case service.IsPersistence(err):
		logger.FromContext(c).Error(fallback, "user_id", middleware.GetCurrentUserID(c), "error", err)
		jsonError(c, http.StatusInternalServerError, fallback)
	case errors.Is(err, service.ErrNotFound):
		jsonError(c, http.StatusNotFound, msgTransactionMissing)
	default:
		// domain errors carry a message fit for the user
		jsonError(c, http.StatusBadRequest, err.Error())
	}
}
