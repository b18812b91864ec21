// seed-admin creates or updates the platform admin user and its organization,
// including the default master chart of accounts.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override the defaults with ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME /
// ORGANIZATION_NAME.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail       = "admin@consolidation.local"
	defaultAdminPassword    = "Consolidate!23"
	defaultAdminName        = "Consolidation Admin"
	defaultOrganizationName = "Consolidation Group"
)

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	adminEmail := envOr("ADMIN_EMAIL", defaultAdminEmail)
	adminPassword := envOr("ADMIN_PASSWORD", defaultAdminPassword)
	adminName := envOr("ADMIN_NAME", defaultAdminName)
	organizationName := envOr("ORGANIZATION_NAME", defaultOrganizationName)

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var user models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("email = ?", adminEmail).First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		user = models.User{
			Email:    adminEmail,
			Name:     adminName,
			Password: hashedStr,
			Role:     models.UserRoleAdmin,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: email=%q (role=Admin)\n", adminEmail)
	} else {
		if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", adminEmail).Updates(map[string]any{
			"password":  hashedStr,
			"name":      adminName,
			"is_active": utils.NewTrue(),
			"role":      models.UserRoleAdmin,
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated admin user: email=%q (role=Admin)\n", adminEmail)
	}

	// Organization creation seeds the default master chart; the model layer
	// attributes the owner from the user id in context. Seeding runs before
	// the admin belongs to any organization, so tenant scoping is off.
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetSkipOrgScopeInContext(ctx)

	var organization models.Organization
	err = db.WithContext(ctx).Model(&models.Organization{}).Where("name = ?", organizationName).First(&organization).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup organization: %v\n", err)
			os.Exit(1)
		}
		created, cerr := models.CreateOrganization(ctx, &models.NewOrganization{Name: organizationName})
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "failed to create organization: %v\n", cerr)
			os.Exit(1)
		}
		organization = *created
		fmt.Printf("Created organization: name=%q id=%s (default master chart seeded)\n", organizationName, organization.ID)
	}

	if user.OrganizationId == "" {
		if err := models.AttachUserToOrganization(ctx, user.ID, organization.ID.String()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to attach admin user to organization: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Attached admin user to organization %s\n", organization.ID)
	}
}
