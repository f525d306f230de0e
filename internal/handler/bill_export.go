package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"retailbilling-backend/internal/domain"
)

// BillExportHandler streams bills as CSV or XLSX downloads.
type BillExportHandler struct {
	Service BillService
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h BillExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/bills/export", h.export)
}

var exportHeader = []string{
	"Bill ID", "Bill Number", "Created At", "User ID", "Customer Name", "Customer Phone", "Items",
	"Subtotal", "Discount %", "Discount Amount", "Total Amount", "Payment Method", "Status",
}

func (h BillExportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		writeError(w, http.StatusBadRequest, "startDate must be before endDate")
		return
	}
	if format != "csv" && format != "xlsx" && format != "excel" {
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
		return
	}

	var bills []domain.Bill
	if startDate != nil || endDate != nil {
		start := time.Time{}
		if startDate != nil {
			start = *startDate
		}
		end := h.now()
		if endDate != nil {
			end = endDate.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		bills, err = h.Service.Range(r.Context(), start, end)
	} else {
		bills, err = h.Service.List(r.Context())
	}
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}

	filenameSuffix := h.now().Format("20060102_150405")
	if startDate != nil && endDate != nil {
		filenameSuffix = fmt.Sprintf("%s_%s", startDate.Format("20060102"), endDate.Format("20060102"))
	}

	switch format {
	case "csv":
		data, err := exportBillsCSV(bills)
		if err != nil {
			writeServiceError(w, h.Logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"bills_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		data, err := exportBillsXLSX(bills)
		if err != nil {
			writeServiceError(w, h.Logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"bills_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	}
}

func (h BillExportHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func exportBillsCSV(bills []domain.Bill) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for _, b := range bills {
		_ = w.Write([]string{
			strconv.FormatInt(b.ID, 10),
			b.Number,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(b.UserID, 10),
			b.CustomerName,
			b.CustomerPhone,
			strconv.Itoa(len(b.Items)),
			b.Subtotal.StringFixed(2),
			b.DiscountPct.StringFixed(2),
			b.DiscountAmount.StringFixed(2),
			b.TotalAmount.StringFixed(2),
			string(b.PaymentMethod),
			string(b.Status),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportBillsXLSX(bills []domain.Bill) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Bills"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, b := range bills {
		row := r + 2
		values := []any{
			b.ID,
			b.Number,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
			b.UserID,
			b.CustomerName,
			b.CustomerPhone,
			len(b.Items),
			b.Subtotal.InexactFloat64(),
			b.DiscountPct.InexactFloat64(),
			b.DiscountAmount.InexactFloat64(),
			b.TotalAmount.InexactFloat64(),
			string(b.PaymentMethod),
			string(b.Status),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 22)
	_ = f.SetColWidth(sheet, "C", "C", 20)
	_ = f.SetColWidth(sheet, "D", "D", 10)
	_ = f.SetColWidth(sheet, "E", "F", 20)
	_ = f.SetColWidth(sheet, "G", "G", 8)
	_ = f.SetColWidth(sheet, "H", "K", 14)
	_ = f.SetColWidth(sheet, "L", "M", 16)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "M1", style)

	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	if len(bills) > 0 {
		_ = f.SetCellStyle(sheet, "H2", fmt.Sprintf("K%d", len(bills)+1), amountStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
