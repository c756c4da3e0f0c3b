package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/ysrn87/pos_backend/utils"
)

// ExportSalesReportExcel writes the sales report for the period as an xlsx
// workbook to w (the HTTP response body).
func ExportSalesReportExcel(ctx context.Context, w io.Writer, from string, to string) error {

	report, err := GetSalesReport(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := "Sales"
	f.SetSheetName("Sheet1", sheet)

	// Add headers
	headers := []string{"Invoice", "Date", "Customer", "Salesperson", "Payment", "Status", "Subtotal", "Discount", "Total", "Items"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	// Add data
	for i, row := range report.Rows {
		rowNo := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(rowNo), row.InvoiceNumber)
		f.SetCellValue(sheet, "B"+fmt.Sprint(rowNo), row.SaleDate.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, "C"+fmt.Sprint(rowNo), utils.DereferencePtr(row.CustomerName, ""))
		f.SetCellValue(sheet, "D"+fmt.Sprint(rowNo), row.SalespersonNm)
		f.SetCellValue(sheet, "E"+fmt.Sprint(rowNo), row.PaymentMethod)
		f.SetCellValue(sheet, "F"+fmt.Sprint(rowNo), row.Status)
		f.SetCellValue(sheet, "G"+fmt.Sprint(rowNo), row.Subtotal.InexactFloat64())
		f.SetCellValue(sheet, "H"+fmt.Sprint(rowNo), row.DiscountAmount.InexactFloat64())
		f.SetCellValue(sheet, "I"+fmt.Sprint(rowNo), row.TotalAmount.InexactFloat64())
		f.SetCellValue(sheet, "J"+fmt.Sprint(rowNo), row.ItemCount)
	}

	// summary row below the data
	summaryRow := len(report.Rows) + 3
	f.SetCellValue(sheet, "A"+fmt.Sprint(summaryRow), "Completed sales")
	f.SetCellValue(sheet, "B"+fmt.Sprint(summaryRow), report.SaleCount)
	f.SetCellValue(sheet, "H"+fmt.Sprint(summaryRow), report.TotalDiscount.InexactFloat64())
	f.SetCellValue(sheet, "I"+fmt.Sprint(summaryRow), report.TotalSales.InexactFloat64())

	return f.Write(w)
}
