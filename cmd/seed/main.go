// Command seed provisions a fresh database with the resort's chalets, an
// admin account and a starter catalog, so a new deployment is usable
// immediately.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/chalets-du-lac/api/internal/config"
	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/store"
)

const chaletCount = 30

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer pool.Close()

	s := store.New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		log.Fatalf("Unable to ensure schema: %v", err)
	}

	for i := 1; i <= chaletCount; i++ {
		if err := s.CreateChalet(ctx, fmt.Sprintf("%d", i)); err != nil {
			log.Fatalf("Unable to seed chalet %d: %v", i, err)
		}
	}
	log.Printf("Seeded %d chalets", chaletCount)

	seedAdmin(ctx, s)
	seedProducts(ctx, s)

	log.Println("Seeding complete")
}

func seedAdmin(ctx context.Context, s *store.Store) {
	email := getEnv("SEED_ADMIN_EMAIL", "admin@chalets-du-lac.fr")
	password := getEnv("SEED_ADMIN_PASSWORD", "changeme")

	if _, err := s.GetEmployeeByEmail(ctx, email); err == nil {
		log.Printf("Admin %s already exists, skipping", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Unable to hash admin password: %v", err)
	}

	_, err = s.CreateEmployee(ctx, store.CreateEmployeeParams{
		FirstName:      "Admin",
		LastName:       "Resort",
		Email:          email,
		Role:           enum.RoleAdmin,
		Active:         true,
		Permissions:    model.AllPermissions(),
		HashedPassword: string(hashed),
	})
	if err != nil {
		log.Fatalf("Unable to seed admin: %v", err)
	}
	log.Printf("Seeded admin %s", email)
}

func seedProducts(ctx context.Context, s *store.Store) {
	existing, err := s.ListProducts(ctx)
	if err != nil {
		log.Fatalf("Unable to list products: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Catalog already has %d products, skipping", len(existing))
		return
	}

	products := []store.CreateProductParams{
		{
			Name:     "Pizza Margherita",
			Category: "Plats",
			Price:    numeric("9.50"),
			Services: []string{enum.ServiceSnack},
			Extras: []model.Extra{
				{Name: "fromage", Price: decimal.New(100, -2)},
				{Name: "olives", Price: decimal.New(50, -2)},
			},
		},
		{
			Name:     "Croque-monsieur",
			Category: "Plats",
			Price:    numeric("6.00"),
			Services: []string{enum.ServiceSnack},
		},
		{
			Name:     "Bière pression",
			Category: "Boissons",
			Price:    numeric("4.50"),
			Services: []string{enum.ServiceBar},
		},
		{
			Name:     "Jus d'orange",
			Category: "Boissons",
			Price:    numeric("3.00"),
			Services: []string{enum.ServiceBreakfast, enum.ServiceSnack, enum.ServiceBar},
		},
		{
			Name:     "Croissant",
			Category: "Viennoiseries",
			Price:    numeric("1.50"),
			Services: []string{enum.ServiceBreakfast},
		},
	}

	for _, p := range products {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			log.Fatalf("Unable to seed product %s: %v", p.Name, err)
		}
	}
	log.Printf("Seeded %d products", len(products))
}

func numeric(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("Invalid seed price %q: %v", s, err)
	}
	return d
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
