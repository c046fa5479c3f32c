package web

import (
	"embed"
	"html/template"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var TemplateFS embed.FS

// Funcs template helpers
var Funcs = template.FuncMap{
	"money": Money,
	"amount": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"date": func(t time.Time) string {
		return t.Format(models.DateLayout)
	},
}

// Money formats d as a dollar amount, e.g. -$12.50.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Templates parses every page template. Each page is addressed by its file
// name, e.g. "dashboard.html".
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs).ParseFS(TemplateFS, "templates/*.html"))
}
