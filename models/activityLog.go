package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
	"gorm.io/gorm"
)

// ActivityLog is the append-only audit sink. Rows are written inside the
// coordinator transactions and never updated or deleted.
type ActivityLog struct {
	ID         int       `gorm:"primary_key" json:"id"`
	UserId     int       `gorm:"index;not null" json:"user_id"`
	UserName   string    `gorm:"size:100" json:"user_name"`
	Action     string    `gorm:"size:50;not null;index" json:"action"`
	EntityType string    `gorm:"size:50;not null;index:idx_activity_entity" json:"entity_type"`
	EntityId   int       `gorm:"index:idx_activity_entity" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// logActivity appends one audit row inside the caller's transaction so the
// log commits or rolls back with the record that caused it.
func logActivity(tx *gorm.DB, action string, entityType string, entityId int, details interface{}) error {

	ctx := tx.Statement.Context
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	d, _ := json.Marshal(details)

	log := ActivityLog{
		UserId:     userId,
		UserName:   userName,
		Action:     action,
		EntityType: entityType,
		EntityId:   entityId,
		Details:    string(d),
	}

	return tx.Create(&log).Error
}

type ActivityLogFilter struct {
	PaginationInput
	Action     string `form:"action"`
	EntityType string `form:"entityType"`
	UserId     int    `form:"userId"`
}

func GetActivityLogs(ctx context.Context, filter *ActivityLogFilter) (*PageResult[ActivityLog], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&ActivityLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.UserId > 0 {
		query = query.Where("user_id = ?", filter.UserId)
	}
	return Paginate[ActivityLog](query, filter.PaginationInput, "id DESC")
}
