package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"fintrack/logger"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	msgExportError  = "Failed to export transactions"
)

var exportHeaders = []string{"Date", "Type", "Category", "Description", "Amount"}

// ExportHandler downloads of the dashboard's current view
type ExportHandler struct {
	transactions *service.TransactionService
}

// NewExportHandler creates the export handler
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{transactions: service.NewTransactionService(db)}
}

func (h *ExportHandler) listing(c *gin.Context) (*service.Listing, bool) {
	userID := middleware.GetCurrentUserID(c)
	listing, err := h.transactions.List(c.Request.Context(), userID, filterFromQuery(c))
	if err != nil {
		logger.FromContext(c).Error("export query failed", "user_id", userID, "error", err)
		jsonError(c, http.StatusInternalServerError, msgExportError)
		return nil, false
	}
	return listing, true
}

func exportFilename(ext string) string {
	return fmt.Sprintf("transactions_%s.%s", time.Now().Format("20060102"), ext)
}

// ExportCSV current view as CSV, with summary rows after the data
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	listing, ok := h.listing(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// BOM so Excel detects UTF-8
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	records := [][]string{exportHeaders}
	for _, t := range listing.Transactions {
		records = append(records, []string{
			t.DateString(),
			t.Type,
			t.CategoryName,
			t.Description,
			t.Amount.StringFixed(2),
		})
	}
	s := listing.Summary
	records = append(records,
		[]string{},
		[]string{"Total income", "", "", "", s.TotalIncome.StringFixed(2)},
		[]string{"Total expense", "", "", "", s.TotalExpense.StringFixed(2)},
		[]string{"Balance", "", "", "", s.Balance.StringFixed(2)},
		[]string{"Transactions", "", "", "", fmt.Sprintf("%d", s.TransactionCount)},
	)

	if err := writer.WriteAll(records); err != nil {
		logger.FromContext(c).Error("write csv failed", "error", err)
		jsonError(c, http.StatusInternalServerError, msgExportError)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename("csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX current view as an Excel workbook with a summary row
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	listing, ok := h.listing(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(listing)
	if err != nil {
		logger.FromContext(c).Error("build workbook failed", "error", err)
		jsonError(c, http.StatusInternalServerError, msgExportError)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.FromContext(c).Error("write workbook failed", "error", err)
		jsonError(c, http.StatusInternalServerError, msgExportError)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename("xlsx")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func buildWorkbook(listing *service.Listing) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{Border: border})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border: border,
	})

	f.SetColWidth(sheet, "A", "B", 12)
	f.SetColWidth(sheet, "C", "C", 16)
	f.SetColWidth(sheet, "D", "D", 36)
	f.SetColWidth(sheet, "E", "E", 14)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, t := range listing.Transactions {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.DateString())
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.Type)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.CategoryName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t.Description)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.Amount.InexactFloat64())
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle)
	}

	s := listing.Summary
	row := len(listing.Transactions) + 2
	summary := []struct {
		label string
		value interface{}
	}{
		{"Total income", s.TotalIncome.InexactFloat64()},
		{"Total expense", s.TotalExpense.InexactFloat64()},
		{"Balance", s.Balance.InexactFloat64()},
		{"Transactions", s.TransactionCount},
	}
	for i, item := range summary {
		r := row + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), item.label)
		f.MergeCell(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("D%d", r))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), item.value)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("E%d", r), summaryStyle)
	}

	return f, nil
}
