package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
)

// VariantType names an axis a product varies along (Size, Color); its
// options are the allowed values. Variants reference options through
// ProductVariantValue rows.
type VariantType struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ProductId int             `gorm:"not null;uniqueIndex:uniq_variant_type_name" json:"product_id"`
	Name      string          `gorm:"size:50;not null;uniqueIndex:uniq_variant_type_name" json:"name"`
	Options   []VariantOption `gorm:"foreignKey:VariantTypeId" json:"options,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type VariantOption struct {
	ID            int       `gorm:"primary_key" json:"id"`
	VariantTypeId int       `gorm:"not null;uniqueIndex:uniq_variant_option_value" json:"variant_type_id"`
	Value         string    `gorm:"size:50;not null;uniqueIndex:uniq_variant_option_value" json:"value"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductVariantValue pins a variant to one option per type.
type ProductVariantValue struct {
	ID              int            `gorm:"primary_key" json:"id"`
	VariantId       int            `gorm:"not null;uniqueIndex:uniq_variant_value" json:"variant_id"`
	VariantOptionId int            `gorm:"not null;uniqueIndex:uniq_variant_value;index" json:"variant_option_id"`
	VariantOption   *VariantOption `json:"variant_option,omitempty"`
}

type NewVariantType struct {
	ProductId int      `json:"product_id" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Options   []string `json:"options"`
}

type VariantTypeNameInput struct {
	Name string `json:"name" binding:"required"`
}

type VariantOptionValueInput struct {
	Value string `json:"value" binding:"required"`
}

func validateVariantTypeName(ctx context.Context, productId int, name string, exceptId int) error {
	count, err := utils.ResourceCountWhere[VariantType](ctx, "product_id = ? AND name = ? AND NOT id = ?", productId, name, exceptId)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("variant type already exists for this product")
	}
	return nil
}

func validateVariantOptionValue(ctx context.Context, variantTypeId int, value string, exceptId int) error {
	count, err := utils.ResourceCountWhere[VariantOption](ctx, "variant_type_id = ? AND value = ? AND NOT id = ?", variantTypeId, value, exceptId)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("this option already exists")
	}
	return nil
}

func AddVariantType(ctx context.Context, input *NewVariantType) (*VariantType, error) {

	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return nil, err
	}
	if err := validateVariantTypeName(ctx, input.ProductId, input.Name, 0); err != nil {
		return nil, err
	}

	variantType := VariantType{
		ProductId: input.ProductId,
		Name:      input.Name,
	}
	for _, value := range utils.UniqueSlice(input.Options) {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		variantType.Options = append(variantType.Options, VariantOption{Value: value})
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&variantType).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionAddVariantType, "VariantType", variantType.ID, map[string]interface{}{"name": variantType.Name, "product_id": variantType.ProductId}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &variantType, nil
}

func UpdateVariantType(ctx context.Context, id int, input *VariantTypeNameInput) (*VariantType, error) {

	variantType, err := utils.FetchModel[VariantType](ctx, id)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validateVariantTypeName(ctx, variantType.ProductId, input.Name, id); err != nil {
		return nil, err
	}
	variantType.Name = input.Name

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(variantType).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateVariantType, "VariantType", variantType.ID, map[string]interface{}{"name": variantType.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return variantType, nil
}

// DeleteVariantType removes the type and its options; refused while any
// option is still referenced by a variant.
func DeleteVariantType(ctx context.Context, id int) error {

	variantType, err := utils.FetchModel[VariantType](ctx, id)
	if err != nil {
		return err
	}

	used, err := utils.ResourceCountWhere[ProductVariantValue](ctx,
		"variant_option_id IN (SELECT id FROM variant_options WHERE variant_type_id = ?)", id)
	if err != nil {
		return err
	}
	if used > 0 {
		return &ResourceInUseError{Message: "cannot delete variant type: it is used by existing variants, delete the variants first"}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("variant_type_id = ?", id).Delete(&VariantOption{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&VariantType{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := logActivity(tx, ActionDeleteVariantType, "VariantType", id, map[string]interface{}{"name": variantType.Name}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func AddVariantOption(ctx context.Context, variantTypeId int, input *VariantOptionValueInput) (*VariantOption, error) {

	if err := utils.ValidateResourceId[VariantType](ctx, variantTypeId); err != nil {
		return nil, err
	}
	input.Value = strings.TrimSpace(input.Value)
	if err := validateVariantOptionValue(ctx, variantTypeId, input.Value, 0); err != nil {
		return nil, err
	}

	option := VariantOption{
		VariantTypeId: variantTypeId,
		Value:         input.Value,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&option).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionAddVariantOption, "VariantOption", option.ID, map[string]interface{}{"value": option.Value, "variant_type_id": variantTypeId}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func UpdateVariantOption(ctx context.Context, id int, input *VariantOptionValueInput) (*VariantOption, error) {

	option, err := utils.FetchModel[VariantOption](ctx, id)
	if err != nil {
		return nil, err
	}

	input.Value = strings.TrimSpace(input.Value)
	if err := validateVariantOptionValue(ctx, option.VariantTypeId, input.Value, id); err != nil {
		return nil, err
	}
	option.Value = input.Value

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(option).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateVariantOption, "VariantOption", option.ID, map[string]interface{}{"value": option.Value}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return option, nil
}

func DeleteVariantOption(ctx context.Context, id int) error {

	option, err := utils.FetchModel[VariantOption](ctx, id)
	if err != nil {
		return err
	}

	used, err := utils.ResourceCountWhere[ProductVariantValue](ctx, "variant_option_id = ?", id)
	if err != nil {
		return err
	}
	if used > 0 {
		return &ResourceInUseError{Message: "cannot delete option: it is used by existing variants"}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Delete(&VariantOption{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := logActivity(tx, ActionDeleteVariantOption, "VariantOption", id, map[string]interface{}{"value": option.Value}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
