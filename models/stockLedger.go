package models

import (
	"github.com/ysrn87/pos_backend/utils"
	"gorm.io/gorm"
)

// AdjustVariantStock applies a stock delta (positive or negative) with a
// single conditional UPDATE, so the quantity can never be driven below zero
// even when sales race each other. Must run inside the caller's transaction;
// rows-affected zero means either the variant is gone or the decrement would
// have gone negative, and the caller's pre-flight read tells those apart.
func AdjustVariantStock(tx *gorm.DB, variantId int, delta int) error {

	result := tx.Model(&ProductVariant{}).
		Where("id = ? AND current_stock + ? >= 0", variantId, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var variant ProductVariant
		if err := tx.Select("id", "sku", "current_stock").First(&variant, variantId).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		return &InsufficientStockError{
			Sku:       variant.Sku,
			Available: variant.CurrentStock,
			Requested: -delta,
		}
	}
	return nil
}
