package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// DateLayout calendar date format used by forms and the API
const DateLayout = "2006-01-02"

// IsValidTransactionType reports whether t is income or expense.
func IsValidTransactionType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction income or expense record owned by a single user
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Type            string          `json:"type" gorm:"size:10;not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description     string          `json:"description" gorm:"size:255;not null"`
	CategoryID      uint            `json:"category_id" gorm:"index;not null"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"type:date;not null;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	User            User            `json:"-" gorm:"foreignKey:UserID"`
	Category        Category        `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName table name
func (Transaction) TableName() string {
	return "transactions"
}

// DateString formats TransactionDate for date inputs.
func (t Transaction) DateString() string {
	return t.TransactionDate.Format(DateLayout)
}

// TransactionView transaction row joined with its category name
type TransactionView struct {
	Transaction
	CategoryName string `json:"category_name"`
}
