package models

import (
	"context"
	"time"

	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
)

type Product struct {
	ID           int              `gorm:"primary_key" json:"id"`
	Name         string           `gorm:"size:100;not null" json:"name" binding:"required"`
	Description  string           `gorm:"type:text" json:"description"`
	CategoryId   int              `gorm:"index;not null" json:"category_id" binding:"required"`
	Category     *Category        `json:"category,omitempty"`
	ImageUrl     string           `json:"image_url"`
	IsActive     *bool            `gorm:"not null;default:true" json:"is_active"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductId" json:"variants,omitempty"`
	VariantTypes []VariantType    `gorm:"foreignKey:ProductId" json:"variant_types,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryId  int    `json:"category_id" binding:"required"`
	ImageUrl    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

func (input *NewProduct) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Category](ctx, input.CategoryId); err != nil {
		return err
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	isActive := utils.DereferencePtr(input.IsActive, true)
	product := Product{
		Name:        input.Name,
		Description: input.Description,
		CategoryId:  input.CategoryId,
		ImageUrl:    input.ImageUrl,
		IsActive:    &isActive,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionCreateProduct, "Product", product.ID, map[string]interface{}{"name": product.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	isActive := utils.DereferencePtr(input.IsActive, *product.IsActive)
	product.Name = input.Name
	product.Description = input.Description
	product.CategoryId = input.CategoryId
	product.ImageUrl = input.ImageUrl
	product.IsActive = &isActive

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateProduct, "Product", product.ID, map[string]interface{}{"name": product.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return product, nil
}

type ProductFilter struct {
	PaginationInput
	CategoryId int    `form:"categoryId"`
	Search     string `form:"search"`
	ActiveOnly bool   `form:"activeOnly"`
}

func GetProducts(ctx context.Context, filter *ProductFilter) (*PageResult[Product], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Product{}).Preload("Category").Preload("Variants")
	if filter.CategoryId > 0 {
		query = query.Where("category_id = ?", filter.CategoryId)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return Paginate[Product](query, filter.PaginationInput, "id DESC")
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id, "Category", "Variants", "VariantTypes.Options")
}

// DeleteProduct removes the product with its variants and variant types;
// refused once any variant carries sales or stock entry history, since the
// frozen lines must keep resolving.
func DeleteProduct(ctx context.Context, id int) error {

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return err
	}

	salesCount, err := utils.ResourceCountWhere[SaleItem](ctx,
		"variant_id IN (SELECT id FROM product_variants WHERE product_id = ?)", id)
	if err != nil {
		return err
	}
	if salesCount > 0 {
		return &ResourceInUseError{Message: "cannot delete product: it has sales history, deactivate it instead"}
	}
	entryCount, err := utils.ResourceCountWhere[StockEntryItem](ctx,
		"variant_id IN (SELECT id FROM product_variants WHERE product_id = ?)", id)
	if err != nil {
		return err
	}
	if entryCount > 0 {
		return &ResourceInUseError{Message: "cannot delete product: it has stock entry history, deactivate it instead"}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("variant_id IN (SELECT id FROM product_variants WHERE product_id = ?)", id).
		Delete(&ProductVariantValue{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&ProductVariant{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("variant_type_id IN (SELECT id FROM variant_types WHERE product_id = ?)", id).
		Delete(&VariantOption{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&VariantType{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&Product{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := logActivity(tx, ActionDeleteProduct, "Product", id, map[string]interface{}{"name": product.Name}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
