package models

import (
	"time"
)

// Category transaction category (reference data)
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Sort      int       `json:"sort" gorm:"default:0;index"`
	Color     string    `json:"color" gorm:"size:20;default:#64748b"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategories categories seeded into an empty table, in display order
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Sort: 10, Color: "#10b981"},
		{Name: "Freelance", Sort: 20, Color: "#f59e0b"},
		{Name: "Investments", Sort: 30, Color: "#a855f7"},
		{Name: "Food", Sort: 40, Color: "#ef4444"},
		{Name: "Transport", Sort: 50, Color: "#3b82f6"},
		{Name: "Housing", Sort: 60, Color: "#14b8a6"},
		{Name: "Utilities", Sort: 70, Color: "#0ea5e9"},
		{Name: "Entertainment", Sort: 80, Color: "#ec4899"},
		{Name: "Healthcare", Sort: 90, Color: "#22c55e"},
		{Name: "Other", Sort: 100, Color: "#64748b"},
	}
}
