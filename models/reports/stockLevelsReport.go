package reports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
)

type StockLevelRow struct {
	Sku           string          `json:"sku"`
	VariantName   string          `json:"variant_name"`
	ProductName   string          `json:"product_name"`
	CategoryName  string          `json:"category_name"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"`
	StockValue    decimal.Decimal `json:"stock_value"`
	IsLowStock    bool            `json:"is_low_stock"`
}

type StockLevelsResponse struct {
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	LowStockCount   int             `json:"low_stock_count"`
	Rows            []StockLevelRow `json:"rows"`
}

func GetStockLevelsReport(ctx context.Context, lowStockOnly bool) (*StockLevelsResponse, error) {

	sql := `
SELECT
    v.sku,
    v.name AS variant_name,
    p.name AS product_name,
    c.name AS category_name,
    v.cost_price,
    v.selling_price,
    v.current_stock,
    v.min_stock_level,
    v.cost_price * v.current_stock AS stock_value,
    v.current_stock <= v.min_stock_level AS is_low_stock
FROM product_variants v
    JOIN products p ON p.id = v.product_id
    LEFT JOIN categories c ON c.id = p.category_id
WHERE v.is_active = 1`
	if lowStockOnly {
		sql += `
    AND v.current_stock <= v.min_stock_level`
	}
	sql += `
ORDER BY v.sku`

	var rows []StockLevelRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	lowStockCount := 0
	for _, row := range rows {
		totalValue = totalValue.Add(row.StockValue)
		if row.IsLowStock {
			lowStockCount++
		}
	}

	return &StockLevelsResponse{
		TotalStockValue: totalValue,
		LowStockCount:   lowStockCount,
		Rows:            rows,
	}, nil
}
