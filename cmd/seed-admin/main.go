package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/models"
	"github.com/ysrn87/pos_backend/utils"
	"gorm.io/gorm"
)

// Bootstraps the first PRIVILEGE user and the default company profile so a
// fresh deployment can log in.
func main() {
	email := flag.String("email", "", "Admin email (required)")
	name := flag.String("name", "Super Admin", "Admin display name")
	password := flag.String("password", "", "Admin password (required)")
	companyName := flag.String("company", "My Company", "Company name for the default profile")
	flag.Parse()

	if strings.TrimSpace(*email) == "" || strings.TrimSpace(*password) == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-admin -email admin@example.com -password secret [-name ...] [-company ...]")
		os.Exit(1)
	}
	if len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "password must be at least 6 characters")
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	models.MigrateTable()

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(*email))).First(&existing).Error
	if err == nil {
		fmt.Fprintf(os.Stderr, "user %s already exists (id=%d)\n", existing.Email, existing.ID)
		os.Exit(1)
	}
	if err != gorm.ErrRecordNotFound {
		fmt.Fprintf(os.Stderr, "failed to check existing user: %v\n", err)
		os.Exit(1)
	}

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user := models.User{
		Email:    strings.ToLower(strings.TrimSpace(*email)),
		Name:     *name,
		Password: hashed,
		Role:     models.RolePrivilege,
		Status:   models.UserStatusActive,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
		os.Exit(1)
	}

	var profile models.CompanyProfile
	err = db.WithContext(ctx).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = models.CompanyProfile{
			Name:             *companyName,
			InvoicePrefix:    "INV",
			StockEntryPrefix: "SE",
		}
		if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create company profile: %v\n", err)
			os.Exit(1)
		}
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "failed to check company profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created PRIVILEGE user %s (id=%d), company profile %q\n", user.Email, user.ID, profile.Name)
}
