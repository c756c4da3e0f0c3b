package models

import (
	"context"
	"fmt"
	"time"

	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
)

type Category struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCategory) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Category](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := Category{
		Name:        input.Name,
		Description: input.Description,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&category).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionCreateCategory, "Category", category.ID, map[string]interface{}{"name": category.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Description = input.Description

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(category).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateCategory, "Category", category.ID, map[string]interface{}{"name": category.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory is refused while products still reference the category.
func DeleteCategory(ctx context.Context, id int) error {

	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return err
	}

	productCount, err := utils.ResourceCountWhere[Product](ctx, "category_id = ?", id)
	if err != nil {
		return err
	}
	if productCount > 0 {
		return &ResourceInUseError{Message: fmt.Sprintf("cannot delete category: it has %d product(s), move or delete them first", productCount)}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Delete(&Category{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := logActivity(tx, ActionDeleteCategory, "Category", id, map[string]interface{}{"name": category.Name}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func GetCategories(ctx context.Context) ([]*Category, error) {
	return utils.FetchAllModels[Category](ctx)
}

func GetCategory(ctx context.Context, id int) (*Category, error) {
	return utils.FetchModel[Category](ctx, id)
}
