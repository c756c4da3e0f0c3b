package reports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/models"
)

type SalesReportRow struct {
	InvoiceNumber  string          `json:"invoice_number"`
	SaleDate       time.Time       `json:"sale_date"`
	CustomerName   *string         `json:"customer_name"`
	SalespersonNm  string          `gorm:"column:salesperson_name" json:"salesperson_name"`
	PaymentMethod  string          `json:"payment_method"`
	Status         string          `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ItemCount      int             `json:"item_count"`
}

type SalesReportResponse struct {
	From          string           `json:"from"`
	To            string           `json:"to"`
	TotalSales    decimal.Decimal  `json:"total_sales"`
	TotalDiscount decimal.Decimal  `json:"total_discount"`
	SaleCount     int              `json:"sale_count"`
	Rows          []SalesReportRow `json:"rows"`
}

func parseReportRange(from string, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, errors.New("from and to dates are required")
	}
	fromDate, err := time.ParseInLocation("2006-01-02", from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid from date")
	}
	toDate, err := time.ParseInLocation("2006-01-02", to, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid to date")
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, errors.New("to date is before from date")
	}
	return fromDate, toDate.AddDate(0, 0, 1), nil
}

func GetSalesReport(ctx context.Context, from string, to string) (*SalesReportResponse, error) {

	fromDate, toExclusive, err := parseReportRange(from, to)
	if err != nil {
		return nil, err
	}

	sql := `
SELECT
    s.invoice_number,
    s.sale_date,
    c.name AS customer_name,
    u.name AS salesperson_name,
    s.payment_method,
    s.status,
    s.subtotal,
    s.discount_amount,
    s.total_amount,
    (SELECT COUNT(id) FROM sale_items WHERE sale_id = s.id) AS item_count
FROM sales s
    LEFT JOIN customers c ON c.id = s.customer_id
    LEFT JOIN users u ON u.id = s.salesperson_id
WHERE s.sale_date >= ? AND s.sale_date < ?
ORDER BY s.sale_date, s.id`

	var rows []SalesReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, fromDate, toExclusive).Scan(&rows).Error; err != nil {
		return nil, err
	}

	totalSales := decimal.Zero
	totalDiscount := decimal.Zero
	saleCount := 0
	for _, row := range rows {
		if row.Status != models.SaleStatusCompleted {
			continue
		}
		totalSales = totalSales.Add(row.TotalAmount)
		totalDiscount = totalDiscount.Add(row.DiscountAmount)
		saleCount++
	}

	return &SalesReportResponse{
		From:          from,
		To:            to,
		TotalSales:    totalSales,
		TotalDiscount: totalDiscount,
		SaleCount:     saleCount,
		Rows:          rows,
	}, nil
}
