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

type StockEntry struct {
	ID           int              `gorm:"primary_key" json:"id"`
	EntryNumber  string           `gorm:"size:30;not null;unique" json:"entry_number"`
	EntryDate    time.Time        `gorm:"not null;index" json:"entry_date"`
	RecordedById int              `gorm:"index;not null" json:"recorded_by_id"`
	RecordedBy   *User            `gorm:"foreignKey:RecordedById" json:"recorded_by,omitempty"`
	Status       string           `gorm:"type:enum('COMPLETED','CANCELLED');default:COMPLETED;index" json:"status"`
	Notes        string           `gorm:"type:text" json:"notes"`
	CancelReason string           `gorm:"type:text" json:"cancel_reason"`
	CancelledAt  *time.Time       `json:"cancelled_at"`
	Items        []StockEntryItem `gorm:"foreignKey:StockEntryId" json:"items"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type StockEntryItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	StockEntryId int             `gorm:"index;not null" json:"stock_entry_id"`
	VariantId    int             `gorm:"index;not null" json:"variant_id"`
	Variant      *ProductVariant `gorm:"foreignKey:VariantId" json:"variant,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
}

type NewStockEntryItem struct {
	VariantId int             `json:"variant_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	CostPrice decimal.Decimal `json:"cost_price" binding:"required"`
}

type NewStockEntry struct {
	Notes string              `json:"notes"`
	Items []NewStockEntryItem `json:"items" binding:"required,min=1,dive"`
}

func (input *NewStockEntry) validate(ctx context.Context) error {
	variantIds := make([]int, 0, len(input.Items))
	for _, item := range input.Items {
		if item.CostPrice.IsNegative() {
			return errors.New("cost price cannot be negative")
		}
		variantIds = append(variantIds, item.VariantId)
	}
	if err := utils.ValidateResourcesId[ProductVariant](ctx, variantIds); err != nil {
		return err
	}
	return nil
}

// CreateStockEntry allocates the entry number, inserts the entry with its
// items, increments stock and overwrites each variant's cost price with the
// entry's cost (last entry wins, no weighted-average costing), then appends
// the audit entry — one transaction. Incoming stock has no upper bound check.
func CreateStockEntry(ctx context.Context, input *NewStockEntry) (*StockEntry, error) {
	logger := config.GetLogger()
	moduleName := "stockEntry"
	functionName := "CreateStockEntry"

	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != RolePrivilege && role != RoleAdmin && role != RoleWarehouse {
		return nil, ErrForbidden
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	profile, err := GetCompanyProfile(ctx)
	if err != nil {
		return nil, err
	}

	release, err := utils.DocumentLock(ctx, "stockEntry", moduleName, functionName)
	if err != nil {
		return nil, err
	}
	defer release()

	now := time.Now()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	entryNumber, err := nextDocumentNumber(tx, "stock_entries", "entry_number", profile.StockEntryPrefix, now)
	if err != nil {
		tx.Rollback()
		config.LogError(logger, moduleName, functionName, "Failed to allocate entry number", profile.StockEntryPrefix, err)
		return nil, err
	}

	items := make([]StockEntryItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, StockEntryItem{
			VariantId: item.VariantId,
			Quantity:  item.Quantity,
			CostPrice: item.CostPrice,
		})
	}

	entry := StockEntry{
		EntryNumber:  entryNumber,
		EntryDate:    now,
		RecordedById: userId,
		Status:       StockEntryStatusCompleted,
		Notes:        input.Notes,
		Items:        items,
	}

	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, moduleName, functionName, "Failed to create stock entry", entryNumber, err)
		return nil, err
	}

	for _, item := range entry.Items {
		if err := AdjustVariantStock(tx, item.VariantId, item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
		// cost basis: last write wins
		if err := tx.Model(&ProductVariant{}).Where("id = ?", item.VariantId).
			Update("cost_price", item.CostPrice).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := logActivity(tx, ActionCreateStockEntry, "StockEntry", entry.ID, map[string]interface{}{
		"entry_number": entry.EntryNumber,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, moduleName, functionName, "Failed to commit stock entry", entryNumber, err)
		return nil, err
	}

	return GetStockEntry(ctx, entry.ID)
}

// CancelStockEntry reverses a completed entry by decrementing each variant's
// stock. If an intervening sale consumed the entry's quantity the reversal is
// rejected with CannotReverse; the conditional update in AdjustVariantStock
// still guards the race inside the transaction.
func CancelStockEntry(ctx context.Context, id int, input *CancelInput) (*StockEntry, error) {
	logger := config.GetLogger()
	moduleName := "stockEntry"
	functionName := "CancelStockEntry"

	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != RolePrivilege && role != RoleAdmin && role != RoleWarehouse {
		return nil, ErrForbidden
	}

	if strings.TrimSpace(input.Reason) == "" {
		return nil, ErrMissingReason
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	var entry StockEntry
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&entry, id).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if entry.Status != StockEntryStatusCompleted {
		tx.Rollback()
		return nil, ErrInvalidState
	}

	// pre-check that reversal cannot drive any variant negative
	for _, item := range entry.Items {
		var variant ProductVariant
		if err := tx.Select("id", "sku", "current_stock").First(&variant, item.VariantId).Error; err != nil {
			tx.Rollback()
			return nil, utils.ErrorRecordNotFound
		}
		if variant.CurrentStock < item.Quantity {
			tx.Rollback()
			return nil, &CannotReverseError{
				Sku:       variant.Sku,
				Available: variant.CurrentStock,
				Required:  item.Quantity,
			}
		}
	}

	for _, item := range entry.Items {
		if err := AdjustVariantStock(tx, item.VariantId, -item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	if err := tx.Model(&StockEntry{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
		"status":        StockEntryStatusCancelled,
		"cancel_reason": input.Reason,
		"cancelled_at":  now,
	}).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, moduleName, functionName, "Failed to cancel stock entry", entry.EntryNumber, err)
		return nil, err
	}

	if err := logActivity(tx, ActionCancelStockEntry, "StockEntry", entry.ID, map[string]interface{}{
		"entry_number": entry.EntryNumber,
		"reason":       input.Reason,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, moduleName, functionName, "Failed to commit cancellation", entry.EntryNumber, err)
		return nil, err
	}

	return GetStockEntry(ctx, entry.ID)
}

type StockEntryFilter struct {
	PaginationInput
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Search string `form:"search"`
}

func GetStockEntries(ctx context.Context, filter *StockEntryFilter) (*PageResult[StockEntry], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&StockEntry{}).
		Preload("RecordedBy").Preload("Items")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		query = query.Where("entry_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("entry_date < DATE_ADD(?, INTERVAL 1 DAY)", filter.To)
	}
	if filter.Search != "" {
		query = query.Where("entry_number LIKE ?", "%"+filter.Search+"%")
	}
	result, err := Paginate[StockEntry](query, filter.PaginationInput, "id DESC")
	if err != nil {
		return nil, err
	}
	for _, e := range result.Records {
		if e.RecordedBy != nil {
			e.RecordedBy.PrepareGive()
		}
	}
	return result, nil
}

func GetStockEntry(ctx context.Context, id int) (*StockEntry, error) {
	entry, err := utils.FetchModel[StockEntry](ctx, id, "RecordedBy", "Items", "Items.Variant")
	if err != nil {
		return nil, err
	}
	if entry.RecordedBy != nil {
		entry.RecordedBy.PrepareGive()
	}
	return entry, nil
}
