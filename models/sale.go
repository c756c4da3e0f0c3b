package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
	"gorm.io/gorm/clause"
)

type Sale struct {
	ID             int             `gorm:"primary_key" json:"id"`
	InvoiceNumber  string          `gorm:"size:30;not null;unique" json:"invoice_number"`
	SaleDate       time.Time       `gorm:"not null;index" json:"sale_date"`
	CustomerId     *int            `gorm:"index" json:"customer_id"`
	Customer       *Customer       `json:"customer,omitempty"`
	SalespersonId  int             `gorm:"index;not null" json:"salesperson_id"`
	Salesperson    *User           `gorm:"foreignKey:SalespersonId" json:"salesperson,omitempty"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaymentMethod  string          `gorm:"size:20;not null" json:"payment_method"`
	Status         string          `gorm:"type:enum('COMPLETED','CANCELLED','VOIDED');default:COMPLETED;index" json:"status"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CancelReason   string          `gorm:"type:text" json:"cancel_reason"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
	ApprovedBy     *int            `json:"approved_by"`
	Items          []SaleItem      `gorm:"foreignKey:SaleId" json:"items"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleItem amounts are computed at creation time and frozen; they are never
// recomputed from current variant prices.
type SaleItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	SaleId          int             `gorm:"index;not null" json:"sale_id"`
	VariantId       int             `gorm:"index;not null" json:"variant_id"`
	Variant         *ProductVariant `gorm:"foreignKey:VariantId" json:"variant,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_amount"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
}

type NewSaleItem struct {
	VariantId       int             `json:"variant_id" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type NewSale struct {
	CustomerId     int             `json:"customer_id"`
	Customer       *NewCustomer    `json:"customer"`
	PaymentMethod  string          `json:"payment_method" binding:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes"`
	Items          []NewSaleItem   `json:"items" binding:"required,min=1,dive"`
}

type CancelInput struct {
	Reason string `json:"reason"`
}

var hundred = decimal.NewFromInt(100)

// computeSaleItem freezes the line amounts:
// discountAmount = unitPrice*quantity*discountPercent/100
// totalPrice     = unitPrice*quantity - discountAmount
func computeSaleItem(variant *ProductVariant, input NewSaleItem) SaleItem {
	qty := decimal.NewFromInt(int64(input.Quantity))
	gross := variant.SellingPrice.Mul(qty)
	discountAmt := gross.Mul(input.DiscountPercent).Div(hundred).Round(4)
	return SaleItem{
		VariantId:       variant.ID,
		Quantity:        input.Quantity,
		UnitPrice:       variant.SellingPrice,
		DiscountPercent: input.DiscountPercent,
		DiscountAmount:  discountAmt,
		TotalPrice:      gross.Sub(discountAmt),
	}
}

func (input *NewSale) validate(ctx context.Context) error {
	if !IsValidPaymentMethod(input.PaymentMethod) {
		return errors.New("invalid payment method")
	}
	if input.DiscountAmount.IsNegative() {
		return errors.New("discount amount cannot be negative")
	}
	for _, item := range input.Items {
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(hundred) {
			return errors.New("discount percent must be between 0 and 100")
		}
	}
	return nil
}

// CreateSale validates stock, resolves the customer, allocates the invoice
// number, inserts the sale with its items, decrements stock and appends the
// audit entry in one transaction.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	logger := config.GetLogger()
	moduleName := "sale"
	functionName := "CreateSale"

	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != RolePrivilege && role != RoleAdmin && role != RoleSales {
		return nil, ErrForbidden
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	// pre-flight availability check for a friendly error; the conditional
	// update in AdjustVariantStock is the authoritative guard.
	variants := make(map[int]*ProductVariant, len(input.Items))
	for _, item := range input.Items {
		variant, err := utils.FetchModel[ProductVariant](ctx, item.VariantId)
		if err != nil {
			return nil, err
		}
		if !utils.DereferencePtr(variant.IsActive) {
			return nil, errors.New("variant " + variant.Sku + " is inactive")
		}
		if variant.CurrentStock < item.Quantity {
			return nil, &InsufficientStockError{
				Sku:       variant.Sku,
				Available: variant.CurrentStock,
				Requested: item.Quantity,
			}
		}
		variants[item.VariantId] = variant
	}

	profile, err := GetCompanyProfile(ctx)
	if err != nil {
		return nil, err
	}

	// serialize invoice number allocation; the unique index is the backstop
	release, err := utils.DocumentLock(ctx, "sale", moduleName, functionName)
	if err != nil {
		return nil, err
	}
	defer release()

	now := time.Now()
	items := make([]SaleItem, 0, len(input.Items))
	subtotal := decimal.Zero
	for _, itemInput := range input.Items {
		item := computeSaleItem(variants[itemInput.VariantId], itemInput)
		subtotal = subtotal.Add(item.TotalPrice)
		items = append(items, item)
	}
	if input.DiscountAmount.GreaterThan(subtotal) {
		return nil, errors.New("discount amount exceeds subtotal")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	customer, err := resolveCustomer(tx, input.CustomerId, input.Customer)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	invoiceNumber, err := nextDocumentNumber(tx, "sales", "invoice_number", profile.InvoicePrefix, now)
	if err != nil {
		tx.Rollback()
		config.LogError(logger, moduleName, functionName, "Failed to allocate invoice number", profile.InvoicePrefix, err)
		return nil, err
	}

	sale := Sale{
		InvoiceNumber:  invoiceNumber,
		SaleDate:       now,
		SalespersonId:  userId,
		Subtotal:       subtotal,
		DiscountAmount: input.DiscountAmount,
		TotalAmount:    subtotal.Sub(input.DiscountAmount),
		PaymentMethod:  input.PaymentMethod,
		Status:         SaleStatusCompleted,
		Notes:          input.Notes,
		Items:          items,
	}
	if customer != nil {
		sale.CustomerId = &customer.ID
	}

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, moduleName, functionName, "Failed to create sale", invoiceNumber, err)
		return nil, err
	}

	for _, item := range sale.Items {
		if err := AdjustVariantStock(tx, item.VariantId, -item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := logActivity(tx, ActionCreateSale, "Sale", sale.ID, map[string]interface{}{
		"invoice_number": sale.InvoiceNumber,
		"total_amount":   sale.TotalAmount,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, moduleName, functionName, "Failed to commit sale", invoiceNumber, err)
		return nil, err
	}

	return GetSale(ctx, sale.ID)
}

// CancelSale reverses a completed sale: restores each item's stock, marks the
// record CANCELLED with the reason and approver, and appends the audit entry.
// COMPLETED is the only cancellable state.
func CancelSale(ctx context.Context, id int, input *CancelInput) (*Sale, error) {
	logger := config.GetLogger()
	moduleName := "sale"
	functionName := "CancelSale"

	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != RolePrivilege && role != RoleAdmin {
		return nil, ErrForbidden
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	if strings.TrimSpace(input.Reason) == "" {
		return nil, ErrMissingReason
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	var sale Sale
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&sale, id).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if sale.Status != SaleStatusCompleted {
		tx.Rollback()
		return nil, ErrInvalidState
	}

	// restoring stock cannot go negative, no pre-check needed
	for _, item := range sale.Items {
		if err := AdjustVariantStock(tx, item.VariantId, item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	sale.Status = SaleStatusCancelled
	sale.CancelReason = input.Reason
	sale.CancelledAt = &now
	sale.ApprovedBy = &userId

	if err := tx.Model(&Sale{}).Where("id = ?", sale.ID).Updates(map[string]interface{}{
		"status":        sale.Status,
		"cancel_reason": sale.CancelReason,
		"cancelled_at":  sale.CancelledAt,
		"approved_by":   sale.ApprovedBy,
	}).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, moduleName, functionName, "Failed to cancel sale", sale.InvoiceNumber, err)
		return nil, err
	}

	if err := logActivity(tx, ActionCancelSale, "Sale", sale.ID, map[string]interface{}{
		"invoice_number": sale.InvoiceNumber,
		"reason":         input.Reason,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, moduleName, functionName, "Failed to commit cancellation", sale.InvoiceNumber, err)
		return nil, err
	}

	return GetSale(ctx, sale.ID)
}

type SaleFilter struct {
	PaginationInput
	Status     string `form:"status"`
	CustomerId int    `form:"customerId"`
	From       string `form:"from"`
	To         string `form:"to"`
	Search     string `form:"search"`
}

func GetSales(ctx context.Context, filter *SaleFilter) (*PageResult[Sale], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Sale{}).
		Preload("Customer").Preload("Salesperson").Preload("Items")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerId > 0 {
		query = query.Where("customer_id = ?", filter.CustomerId)
	}
	if filter.From != "" {
		query = query.Where("sale_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("sale_date < DATE_ADD(?, INTERVAL 1 DAY)", filter.To)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role == RoleSales {
		userId, _ := utils.GetUserIdFromContext(ctx)
		query = query.Where("salesperson_id = ?", userId)
	}
	result, err := Paginate[Sale](query, filter.PaginationInput, "id DESC")
	if err != nil {
		return nil, err
	}
	for _, s := range result.Records {
		if s.Salesperson != nil {
			s.Salesperson.PrepareGive()
		}
	}
	return result, nil
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	sale, err := utils.FetchModel[Sale](ctx, id, "Customer", "Salesperson", "Items", "Items.Variant")
	if err != nil {
		return nil, err
	}
	if sale.Salesperson != nil {
		sale.Salesperson.PrepareGive()
	}
	return sale, nil
}
