package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FilterAll type filter sentinel that disables type filtering
const FilterAll = "all"

// maxAmount largest value a decimal(12,2) column holds
var maxAmount = decimal.RequireFromString("9999999999.99")

// Exponent bounds for submitted amounts. Rounding or comparing a decimal
// rescales it, which costs 10^|exponent|, so values outside these bounds are
// rejected before any arithmetic.
const (
	maxAmountExponent = 10
	minAmountExponent = -18
)

// maxDescriptionLen description column size, in characters
const maxDescriptionLen = 255

// Filter dashboard listing options
type Filter struct {
	Search string
	Type   string
}

func (f Filter) typ() string {
	t := strings.TrimSpace(f.Type)
	if t == "" {
		return FilterAll
	}
	return t
}

// Summary aggregates over the listed (already filtered) transactions
type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// Listing filtered transactions and their summary
type Listing struct {
	Transactions []models.TransactionView `json:"transactions"`
	Summary      Summary                  `json:"summary"`
}

// Summarize computes income, expense, balance and count for rows.
func Summarize(rows []models.TransactionView) Summary {
	s := Summary{
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		TransactionCount: len(rows),
	}
	for _, r := range rows {
		switch r.Type {
		case models.TransactionTypeIncome:
			s.TotalIncome = s.TotalIncome.Add(r.Amount)
		case models.TransactionTypeExpense:
			s.TotalExpense = s.TotalExpense.Add(r.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// TransactionForm raw transaction fields as submitted by a form
type TransactionForm struct {
	Type            string `form:"type"`
	Amount          string `form:"amount"`
	Description     string `form:"description"`
	CategoryID      string `form:"category_id"`
	TransactionDate string `form:"transaction_date"`
}

// TransactionInput parsed transaction fields
type TransactionInput struct {
	Type            string
	Amount          decimal.Decimal
	Description     string
	CategoryID      uint
	TransactionDate time.Time
}

// ParseTransactionForm converts form strings into a TransactionInput. It
// checks presence and syntax; range checks happen in Create and Update.
func ParseTransactionForm(f TransactionForm) (TransactionInput, error) {
	typ := strings.TrimSpace(f.Type)
	amount := strings.TrimSpace(f.Amount)
	desc := strings.TrimSpace(f.Description)
	catID := strings.TrimSpace(f.CategoryID)
	date := strings.TrimSpace(f.TransactionDate)
	if typ == "" || amount == "" || desc == "" || catID == "" || date == "" {
		return TransactionInput{}, invalid("All fields are required")
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return TransactionInput{}, invalid("Amount must be a positive number")
	}

	id, err := strconv.ParseUint(catID, 10, 32)
	if err != nil || id == 0 {
		return TransactionInput{}, invalid("Invalid category")
	}

	d, err := ParseDate(date)
	if err != nil {
		return TransactionInput{}, err
	}

	return TransactionInput{
		Type:            typ,
		Amount:          amt,
		Description:     desc,
		CategoryID:      uint(id),
		TransactionDate: d,
	}, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as local midnight, the zone
// the MySQL connection writes and reads dates in.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, invalid("Date must be in YYYY-MM-DD format")
	}
	return d, nil
}

func (in *TransactionInput) validate() error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || in.CategoryID == 0 || in.TransactionDate.IsZero() {
		return invalid("All fields are required")
	}
	if !models.IsValidTransactionType(in.Type) {
		return invalid("Type must be income or expense")
	}
	if !in.Amount.IsPositive() {
		return invalid("Amount must be a positive number")
	}
	switch exp := in.Amount.Exponent(); {
	case exp > maxAmountExponent:
		return invalid("Amount is too large")
	case exp < minAmountExponent:
		return invalid("Amount has too many decimal places")
	}
	in.Amount = in.Amount.Round(2)
	if !in.Amount.IsPositive() {
		return invalid("Amount must be a positive number")
	}
	if in.Amount.GreaterThan(maxAmount) {
		return invalid("Amount is too large")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return invalid("Description is too long")
	}
	return nil
}

// TransactionService ownership-scoped transaction queries and mutations.
// Every method filters on the caller's user id.
type TransactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a transaction service
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// List returns userID's transactions newest first, narrowed by f, with a
// summary of exactly the returned rows.
func (s *TransactionService) List(ctx context.Context, userID uint, f Filter) (*Listing, error) {
	query := s.db.WithContext(ctx).
		Table("transactions").
		Select("transactions.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON transactions.category_id = categories.id").
		Where("transactions.user_id = ?", userID)

	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			"(LOWER(transactions.description) LIKE ? ESCAPE '!' OR LOWER(categories.name) LIKE ? ESCAPE '!')",
			pattern, pattern,
		)
	}

	if typ := f.typ(); typ != FilterAll {
		query = query.Where("transactions.type = ?", typ)
	}

	rows := []models.TransactionView{}
	if err := query.Order("transactions.transaction_date DESC, transactions.id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &Listing{Transactions: rows, Summary: Summarize(rows)}, nil
}

// Get loads one transaction owned by userID.
func (s *TransactionService) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

// Categories all categories in display order.
func (s *TransactionService) Categories(ctx context.Context) ([]models.Category, error) {
	cats := []models.Category{}
	if err := s.db.WithContext(ctx).Order("sort ASC, id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// EditForm loads the transaction and the category list concurrently.
func (s *TransactionService) EditForm(ctx context.Context, userID, id uint) (*models.Transaction, []models.Category, error) {
	var (
		tx   *models.Transaction
		cats []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tx, err = s.Get(gctx, userID, id)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tx, cats, nil
}

// Create validates in and stores it as a transaction owned by userID.
func (s *TransactionService) Create(ctx context.Context, userID uint, in TransactionInput) (*models.Transaction, error) {
	if err := s.check(ctx, &in); err != nil {
		return nil, err
	}

	tx := models.Transaction{
		UserID:          userID,
		Type:            in.Type,
		Amount:          in.Amount,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		TransactionDate: in.TransactionDate,
	}
	if err := s.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &tx, nil
}

// Update overwrites transaction id if userID owns it; otherwise ErrNotFound.
func (s *TransactionService) Update(ctx context.Context, userID, id uint, in TransactionInput) error {
	if err := s.check(ctx, &in); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"type":             in.Type,
			"amount":           in.Amount,
			"description":      in.Description,
			"category_id":      in.CategoryID,
			"transaction_date": in.TransactionDate,
		})
	if res.Error != nil {
		return fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes transaction id if userID owns it; otherwise ErrNotFound.
func (s *TransactionService) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// check validates in and verifies the category exists.
func (s *TransactionService) check(ctx context.Context, in *TransactionInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return invalid("Invalid category")
	}
	return nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character, which
// every supported driver accepts in an ESCAPE clause.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
