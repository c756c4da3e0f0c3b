package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/models"
	"github.com/ysrn87/pos_backend/utils"
)

type DashboardResponse struct {
	TodaySalesTotal decimal.Decimal      `json:"today_sales_total"`
	TodaySalesCount int                  `json:"today_sales_count"`
	MonthSalesTotal decimal.Decimal      `json:"month_sales_total"`
	MonthSalesCount int                  `json:"month_sales_count"`
	LowStockCount   int                  `json:"low_stock_count"`
	CustomerCount   int                  `json:"customer_count"`
	RecentSales     []*models.Sale       `json:"recent_sales"`
	DailySales      []DailySalesResponse `json:"daily_sales"`
}

type DailySalesResponse struct {
	Day        string          `json:"day"`
	SalesTotal decimal.Decimal `json:"sales_total"`
	SalesCount int             `json:"sales_count"`
}

type salesAggregate struct {
	Total decimal.Decimal
	Count int
}

func sumSales(ctx context.Context, from time.Time, to time.Time) (*salesAggregate, error) {
	db := config.GetDB()
	var agg salesAggregate
	err := db.WithContext(ctx).Raw(`
SELECT
    COALESCE(SUM(total_amount), 0) AS total,
    COUNT(id) AS count
FROM sales
WHERE status = ? AND sale_date >= ? AND sale_date < ?`,
		models.SaleStatusCompleted, from, to).Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func GetDashboard(ctx context.Context) (*DashboardResponse, error) {

	db := config.GetDB()

	dayStart, dayEnd := utils.DayRange(time.Now())
	today, err := sumSales(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	monthStart, monthEnd := utils.GetThisMonthRange()
	month, err := sumSales(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	var lowStockCount int64
	err = db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("is_active = ? AND current_stock <= min_stock_level", true).
		Count(&lowStockCount).Error
	if err != nil {
		return nil, err
	}

	var customerCount int64
	if err := db.WithContext(ctx).Model(&models.Customer{}).Count(&customerCount).Error; err != nil {
		return nil, err
	}

	var recentSales []*models.Sale
	err = db.WithContext(ctx).Preload("Customer").Preload("Items").
		Order("id DESC").Limit(5).Find(&recentSales).Error
	if err != nil {
		return nil, err
	}

	weekStart, _ := utils.GetLastDaysRange(7)
	var dailySales []DailySalesResponse
	err = db.WithContext(ctx).Raw(`
SELECT
    DATE_FORMAT(sale_date, '%Y-%m-%d') AS day,
    SUM(total_amount) AS sales_total,
    COUNT(id) AS sales_count
FROM sales
WHERE status = ? AND sale_date >= ?
GROUP BY day
ORDER BY day`,
		models.SaleStatusCompleted, weekStart).Scan(&dailySales).Error
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		TodaySalesTotal: today.Total,
		TodaySalesCount: today.Count,
		MonthSalesTotal: month.Total,
		MonthSalesCount: month.Count,
		LowStockCount:   int(lowStockCount),
		CustomerCount:   int(customerCount),
		RecentSales:     recentSales,
		DailySales:      dailySales,
	}, nil
}
