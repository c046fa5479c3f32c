package api

import (
	"errors"

	"fintrack/logger"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionRequest API create/update body
type TransactionRequest struct {
	Type            string          `json:"type" example:"expense"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Description     string          `json:"description" example:"Lunch"`
	CategoryID      uint            `json:"category_id" example:"4"`
	TransactionDate string          `json:"transaction_date" example:"2024-01-15"`
}

func (r TransactionRequest) input() (service.TransactionInput, error) {
	date, err := service.ParseDate(r.TransactionDate)
	if err != nil {
		return service.TransactionInput{}, err
	}
	return service.TransactionInput{
		Type:            r.Type,
		Amount:          r.Amount,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		TransactionDate: date,
	}, nil
}

// apiError maps a service error onto the JSON envelope.
func apiError(c *gin.Context, err error, fallback string) {
	switch {
	case service.IsPersistence(err):
		logger.FromContext(c).Error(fallback, "user_id", middleware.GetCurrentUserID(c), "error", err)
		InternalError(c, SafeErrorMessage(err, fallback))
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, msgTransactionMissing)
	default:
		BadRequest(c, err.Error())
	}
}

// ListCategories categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category}
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/categories [get]
func (h *TransactionHandler) ListCategories(c *gin.Context) {
	cats, err := h.transactions.Categories(c.Request.Context())
	if err != nil {
		apiError(c, err, "Failed to load categories")
		return
	}
	Success(c, cats)
}

// APIList transactions
// @Summary List transactions
// @Description Newest first, optionally filtered by a search term and type, with a summary of the returned rows
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param search query string false "matches description or category name"
// @Param type query string false "income, expense or all" default(all)
// @Success 200 {object} Response{data=service.Listing}
// @Failure 401 {object} Response "unauthorized"
// @Failure 500 {object} Response "server error"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) APIList(c *gin.Context) {
	listing, err := h.transactions.List(c.Request.Context(), middleware.GetCurrentUserID(c), filterFromQuery(c))
	if err != nil {
		apiError(c, err, msgLoadError)
		return
	}
	Success(c, listing)
}

// APICreate create a transaction
// @Summary Create transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "transaction"
// @Success 200 {object} Response{data=models.Transaction}
// @Failure 400 {object} Response "invalid input"
// @Failure 401 {object} Response "unauthorized"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) APICreate(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	in, err := req.input()
	if err != nil {
		apiError(c, err, "Failed to add transaction")
		return
	}

	tx, err := h.transactions.Create(c.Request.Context(), middleware.GetCurrentUserID(c), in)
	if err != nil {
		apiError(c, err, "Failed to add transaction")
		return
	}
	SuccessWithMessage(c, "Created", tx)
}

// APIUpdate update a transaction
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Param request body TransactionRequest true "transaction"
// @Success 200 {object} Response
// @Failure 400 {object} Response "invalid input"
// @Failure 404 {object} Response "not found"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) APIUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		NotFound(c, msgTransactionMissing)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	in, err := req.input()
	if err != nil {
		apiError(c, err, "Failed to update transaction")
		return
	}

	if err := h.transactions.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, in); err != nil {
		apiError(c, err, "Failed to update transaction")
		return
	}
	SuccessWithMessage(c, "Updated", nil)
}

// APIDelete delete a transaction
// @Summary Delete transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Success 200 {object} Response
// @Failure 404 {object} Response "not found"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) APIDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		NotFound(c, msgTransactionMissing)
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		apiError(c, err, "Failed to delete transaction")
		return
	}
	SuccessWithMessage(c, "Deleted", nil)
}
