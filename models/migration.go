package models

import (
	"log"

	"github.com/ysrn87/pos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&CompanyProfile{},
		&Category{}, &Product{}, &ProductVariant{},
		&VariantType{}, &VariantOption{}, &ProductVariantValue{},
		&Customer{},
		&Sale{}, &SaleItem{},
		&StockEntry{}, &StockEntryItem{},
		&ActivityLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
