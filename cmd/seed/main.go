// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev seller (seller@example.com) already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"bazaar/backend/internal/config"
	"bazaar/backend/internal/db"
	"bazaar/backend/internal/security"
	userdomain "bazaar/backend/internal/user/domain"
	userrepo "bazaar/backend/internal/user/repository"
	websitedomain "bazaar/backend/internal/website/domain"
	websiterepo "bazaar/backend/internal/website/repository"
)

const (
	devSellerEmail  = "seller@example.com"
	devSupportEmail = "support@example.com"
	devBuyerEmail   = "buyer@example.com"
	devPassword     = "password123"
	devSellerID     = "dev-seller-001"
	devSupportID    = "dev-support-001"
	devBuyerID      = "dev-buyer-001"
	devWebsiteID    = "dev-website-001"
	devDomainName   = "dev-shop.example"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	websites := websiterepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devSellerEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (seller@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	seed := []struct {
		id    string
		email string
		first string
		roles []userdomain.Role
	}{
		{devSellerID, devSellerEmail, "Dev Seller", []userdomain.Role{userdomain.RoleBuyer, userdomain.RoleSeller}},
		{devSupportID, devSupportEmail, "Dev Support", []userdomain.Role{userdomain.RoleBuyer, userdomain.RoleSupport}},
		{devBuyerID, devBuyerEmail, "Dev Buyer", []userdomain.Role{userdomain.RoleBuyer}},
	}
	for _, u := range seed {
		if err := users.Create(ctx, &userdomain.User{
			ID:           u.id,
			Email:        u.email,
			PasswordHash: passwordHash,
			FirstName:    u.first,
			LastName:     "Example",
			Roles:        u.roles,
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			log.Fatalf("create %s: %v", u.email, err)
		}
	}

	website := websitedomain.New(devWebsiteID, devDomainName, devSellerID, now)
	website.IsOnline = true
	website.Categories = []string{"clothing", "accessories"}
	website.Bio = websitedomain.Bio{Title: "Dev Shop", Description: "Sample storefront for local development."}
	if err := websites.Create(ctx, website); err != nil {
		log.Fatalf("create website: %v", err)
	}

	if err := websites.CreateSupport(ctx, &websitedomain.SupportMembership{
		ID:          "dev-support-membership-001",
		WebsiteID:   devWebsiteID,
		UserID:      devSupportID,
		Permissions: []websitedomain.Permission{websitedomain.PermissionProduct, websitedomain.PermissionComment},
		CreatedAt:   now,
	}); err != nil {
		log.Fatalf("create support membership: %v", err)
	}

	log.Printf("Seed complete: %s / %s (password %q), website %s", devSellerEmail, devSupportEmail, devPassword, devDomainName)
}
