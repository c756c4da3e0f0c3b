package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
	"gorm.io/gorm"
)

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20;index" json:"phone"`
	Email     string    `gorm:"size:100" json:"email"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedBy int       `gorm:"index" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (input *NewCustomer) validate() error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {

	if err := input.validate(); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	customer := Customer{
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		CreatedBy: userId,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionCreateCustomer, "Customer", customer.ID, map[string]interface{}{"name": customer.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {

	if err := input.validate(); err != nil {
		return nil, err
	}

	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Email = input.Email
	customer.Address = input.Address

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateCustomer, "Customer", customer.ID, map[string]interface{}{"name": customer.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return customer, nil
}

type CustomerFilter struct {
	PaginationInput
	Search string `form:"search"`
}

// GetCustomers lists customers; SALES users only see customers they created.
func GetCustomers(ctx context.Context, filter *CustomerFilter) (*PageResult[Customer], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Customer{})
	query = scopeCustomersByRole(ctx, query)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	return Paginate[Customer](query, filter.PaginationInput, "id DESC")
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Customer{})
	query = scopeCustomersByRole(ctx, query)

	var customer Customer
	if err := query.First(&customer, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &customer, nil
}

type CustomerStats struct {
	TotalPurchases int64           `json:"total_purchases"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
}

// GetCustomerStats totals the customer's COMPLETED sales. SALES users only
// see the portion they sold themselves.
func GetCustomerStats(ctx context.Context, id int) (*CustomerStats, error) {

	if _, err := GetCustomer(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Sale{}).
		Where("customer_id = ? AND status = ?", id, SaleStatusCompleted)
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role == RoleSales {
		userId, _ := utils.GetUserIdFromContext(ctx)
		query = query.Where("salesperson_id = ?", userId)
	}

	var stats CustomerStats
	err := query.
		Select("COUNT(*) AS total_purchases, COALESCE(SUM(total_amount), 0) AS total_spent").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func scopeCustomersByRole(ctx context.Context, query *gorm.DB) *gorm.DB {
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role == RoleSales {
		userId, _ := utils.GetUserIdFromContext(ctx)
		return query.Where("created_by = ?", userId)
	}
	return query
}

// resolveCustomer finds or creates the customer inside the sale transaction.
// Lookup is by id when given, otherwise by phone, otherwise a new row.
func resolveCustomer(tx *gorm.DB, customerId int, info *NewCustomer) (*Customer, error) {
	if customerId > 0 {
		var customer Customer
		if err := tx.First(&customer, customerId).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		return &customer, nil
	}

	if info == nil || info.Name == "" {
		return nil, nil
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	if info.Phone != "" {
		var existing Customer
		err := tx.Where("phone = ?", info.Phone).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	userId, _ := utils.GetUserIdFromContext(tx.Statement.Context)
	customer := Customer{
		Name:      info.Name,
		Phone:     info.Phone,
		Email:     info.Email,
		Address:   info.Address,
		CreatedBy: userId,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
