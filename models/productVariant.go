package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
)

// ProductVariant carries the sku, prices and on-hand quantity. CurrentStock
// is mutated only through AdjustVariantStock inside coordinator transactions.
type ProductVariant struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	ProductId     int                   `gorm:"index;not null" json:"product_id" binding:"required"`
	Product       *Product              `json:"product,omitempty"`
	Sku           string                `gorm:"size:50;not null;unique" json:"sku" binding:"required"`
	Name          string                `gorm:"size:100;not null" json:"name" binding:"required"`
	CostPrice     decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"cost_price"`
	SellingPrice  decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"selling_price"`
	CurrentStock  int                   `gorm:"not null;default:0" json:"current_stock"`
	MinStockLevel int                   `gorm:"not null;default:0" json:"min_stock_level"`
	IsActive      *bool                 `gorm:"not null;default:true" json:"is_active"`
	Values        []ProductVariantValue `gorm:"foreignKey:VariantId" json:"values,omitempty"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductVariant struct {
	ProductId     int             `json:"product_id" binding:"required"`
	Sku           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price" binding:"required"`
	InitialStock  int             `json:"initial_stock"`
	MinStockLevel int             `json:"min_stock_level"`
	IsActive      *bool           `json:"is_active"`
	OptionIds     []int           `json:"option_ids"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProductVariant) validate(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return err
	}
	if err := utils.ValidateUnique[ProductVariant](ctx, "sku", input.Sku, id); err != nil {
		return err
	}
	if input.SellingPrice.IsNegative() || input.CostPrice.IsNegative() {
		return errors.New("prices cannot be negative")
	}
	if input.InitialStock < 0 || input.MinStockLevel < 0 {
		return errors.New("stock levels cannot be negative")
	}
	if len(input.OptionIds) > 0 {
		optionIds := utils.UniqueSlice(input.OptionIds)
		count, err := utils.ResourceCountWhere[VariantOption](ctx,
			"id IN ? AND variant_type_id IN (SELECT id FROM variant_types WHERE product_id = ?)",
			optionIds, input.ProductId)
		if err != nil {
			return err
		}
		if count != int64(len(optionIds)) {
			return errors.New("option ids must belong to the product's variant types")
		}
	}
	return nil
}

func CreateProductVariant(ctx context.Context, input *NewProductVariant) (*ProductVariant, error) {

	input.Sku = strings.ToUpper(strings.TrimSpace(input.Sku))
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	isActive := utils.DereferencePtr(input.IsActive, true)
	variant := ProductVariant{
		ProductId:     input.ProductId,
		Sku:           input.Sku,
		Name:          input.Name,
		CostPrice:     input.CostPrice,
		SellingPrice:  input.SellingPrice,
		CurrentStock:  input.InitialStock,
		MinStockLevel: input.MinStockLevel,
		IsActive:      &isActive,
	}

	for _, optionId := range utils.UniqueSlice(input.OptionIds) {
		variant.Values = append(variant.Values, ProductVariantValue{VariantOptionId: optionId})
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&variant).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionCreateVariant, "ProductVariant", variant.ID, map[string]interface{}{"sku": variant.Sku}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func UpdateProductVariant(ctx context.Context, id int, input *NewProductVariant) (*ProductVariant, error) {

	input.Sku = strings.ToUpper(strings.TrimSpace(input.Sku))
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	variant, err := utils.FetchModel[ProductVariant](ctx, id)
	if err != nil {
		return nil, err
	}

	isActive := utils.DereferencePtr(input.IsActive, *variant.IsActive)
	variant.ProductId = input.ProductId
	variant.Sku = input.Sku
	variant.Name = input.Name
	variant.CostPrice = input.CostPrice
	variant.SellingPrice = input.SellingPrice
	variant.MinStockLevel = input.MinStockLevel
	variant.IsActive = &isActive
	// CurrentStock deliberately untouched here; stock moves only through
	// sales and stock entries.

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(variant).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateVariant, "ProductVariant", variant.ID, map[string]interface{}{"sku": variant.Sku}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return variant, nil
}

type ProductVariantFilter struct {
	PaginationInput
	Search     string `form:"search"`
	ProductId  int    `form:"productId"`
	ActiveOnly bool   `form:"activeOnly"`
	LowStock   bool   `form:"lowStock"`
}

func GetProductVariants(ctx context.Context, filter *ProductVariantFilter) (*PageResult[ProductVariant], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&ProductVariant{}).Preload("Product")
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Joins("JOIN products ON products.id = product_variants.product_id").
			Where("product_variants.sku LIKE ? OR product_variants.name LIKE ? OR products.name LIKE ?", pattern, pattern, pattern)
	}
	if filter.ProductId > 0 {
		query = query.Where("product_variants.product_id = ?", filter.ProductId)
	}
	if filter.ActiveOnly {
		query = query.Where("product_variants.is_active = ?", true)
	}
	if filter.LowStock {
		query = query.Where("product_variants.current_stock <= product_variants.min_stock_level")
	}
	return Paginate[ProductVariant](query, filter.PaginationInput, "product_variants.id DESC")
}

func GetProductVariant(ctx context.Context, id int) (*ProductVariant, error) {
	return utils.FetchModel[ProductVariant](ctx, id, "Product", "Values.VariantOption")
}

// DeleteProductVariant is refused while the variant appears on any sale or
// stock entry line; frozen history must keep resolving its sku.
func DeleteProductVariant(ctx context.Context, id int) error {

	variant, err := utils.FetchModel[ProductVariant](ctx, id)
	if err != nil {
		return err
	}

	salesCount, err := utils.ResourceCountWhere[SaleItem](ctx, "variant_id = ?", id)
	if err != nil {
		return err
	}
	if salesCount > 0 {
		return &ResourceInUseError{Message: "cannot delete variant: it has sales history, deactivate it instead"}
	}
	entryCount, err := utils.ResourceCountWhere[StockEntryItem](ctx, "variant_id = ?", id)
	if err != nil {
		return err
	}
	if entryCount > 0 {
		return &ResourceInUseError{Message: "cannot delete variant: it has stock entry history, deactivate it instead"}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("variant_id = ?", id).Delete(&ProductVariantValue{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&ProductVariant{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := logActivity(tx, ActionDeleteVariant, "ProductVariant", id, map[string]interface{}{"sku": variant.Sku}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// GetAvailableVariantsForSale lists active variants with stock on hand, for
// the sale form's item picker.
func GetAvailableVariantsForSale(ctx context.Context) ([]*ProductVariant, error) {
	db := config.GetDB()
	var variants []*ProductVariant
	err := db.WithContext(ctx).Preload("Product").
		Where("is_active = ? AND current_stock > 0", true).
		Order("sku").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// GetVariantsForStockEntry lists active variants regardless of stock, for the
// stock entry form.
func GetVariantsForStockEntry(ctx context.Context) ([]*ProductVariant, error) {
	db := config.GetDB()
	var variants []*ProductVariant
	err := db.WithContext(ctx).Preload("Product").
		Where("is_active = ?", true).
		Order("sku").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}
