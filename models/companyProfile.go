package models

import (
	"context"
	"time"

	"github.com/ysrn87/pos_backend/config"
	"gorm.io/gorm"
)

// CompanyProfile is a single-row table supplying the document number prefixes
// and the identity shown on printed invoices.
type CompanyProfile struct {
	ID               int       `gorm:"primary_key" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Address          string    `gorm:"type:text" json:"address"`
	Phone            string    `gorm:"size:20" json:"phone"`
	Email            string    `gorm:"size:100" json:"email"`
	InvoicePrefix    string    `gorm:"size:10;not null;default:INV" json:"invoice_prefix"`
	StockEntryPrefix string    `gorm:"size:10;not null;default:SE" json:"stock_entry_prefix"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type UpdateCompanyProfileInput struct {
	Name             string `json:"name" binding:"required"`
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	InvoicePrefix    string `json:"invoice_prefix" binding:"required,max=10"`
	StockEntryPrefix string `json:"stock_entry_prefix" binding:"required,max=10"`
}

/*
caches:
	CompanyProfile
*/

const companyProfileCacheKey = "CompanyProfile"

// GetCompanyProfile returns the profile, creating the default row on first
// access. Cached in Redis since every sale reads the prefix.
func GetCompanyProfile(ctx context.Context) (*CompanyProfile, error) {

	var profile CompanyProfile
	exists, err := config.GetRedisObject(companyProfileCacheKey, &profile)
	if err != nil {
		return nil, err
	}
	if exists {
		return &profile, nil
	}

	db := config.GetDB()
	err = db.WithContext(ctx).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = CompanyProfile{
			Name:             "My Company",
			InvoicePrefix:    "INV",
			StockEntryPrefix: "SE",
		}
		if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	// caching
	if err := config.SetRedisObject(companyProfileCacheKey, profile, 24*time.Hour); err != nil {
		return nil, err
	}
	return &profile, nil
}

func UpdateCompanyProfile(ctx context.Context, input *UpdateCompanyProfileInput) (*CompanyProfile, error) {

	profile, err := GetCompanyProfile(ctx)
	if err != nil {
		return nil, err
	}

	profile.Name = input.Name
	profile.Address = input.Address
	profile.Phone = input.Phone
	profile.Email = input.Email
	profile.InvoicePrefix = input.InvoicePrefix
	profile.StockEntryPrefix = input.StockEntryPrefix

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(profile).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateCompany, "CompanyProfile", profile.ID, map[string]interface{}{"name": profile.Name}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// cache invalidation
	if err := config.RemoveRedisKey(companyProfileCacheKey); err != nil {
		return nil, err
	}
	return profile, nil
}
