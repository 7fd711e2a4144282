// Command seed populates a development database with demo accounts and
// listings so the frontend has something to render out of the box.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
)

const demoPassword = "password123"

type seedUser struct {
	email      string
	fullName   string
	isProvider bool
	isAdmin    bool
	bio        string
}

type seedService struct {
	providerEmail string
	title         string
	description   string
	category      string
	price         float64
	location      string
}

var seedUsers = []seedUser{
	{email: "admin@example.com", fullName: "Ada Admin", isAdmin: true},
	{email: "pete@example.com", fullName: "Pete Painter", isProvider: true, bio: "Painting homes for 12 years."},
	{email: "clara@example.com", fullName: "Clara Cleaner", isProvider: true, bio: "Thorough, reliable home cleaning."},
	{email: "carla@example.com", fullName: "Carla Customer"},
}

var seedServices = []seedService{
	{providerEmail: "pete@example.com", title: "Interior Painting", description: "Walls, ceilings, and trim with premium paint.", category: "Painting", price: 85, location: "Austin, TX"},
	{providerEmail: "pete@example.com", title: "Exterior Painting", description: "Weatherproof exterior painting with prep and cleanup.", category: "Painting", price: 110, location: "Austin, TX"},
	{providerEmail: "clara@example.com", title: "Deep Cleaning", description: "Full-home deep clean including kitchen and bathrooms.", category: "Cleaning", price: 60, location: "Austin, TX"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		panic("failed to hash demo password: " + err.Error())
	}

	userIDs := make(map[string]uuid.UUID, len(seedUsers))
	for _, u := range seedUsers {
		id, err := upsertUser(ctx, pool, u, string(hash))
		if err != nil {
			log.Error("failed to seed user", "email", u.email, "error", err)
			panic("failed to seed user: " + err.Error())
		}
		userIDs[u.email] = id
		log.Info("seeded user", "email", u.email, "id", id)
	}

	for _, s := range seedServices {
		providerID, ok := userIDs[s.providerEmail]
		if !ok {
			continue
		}
		if err := upsertService(ctx, pool, providerID, s); err != nil {
			log.Error("failed to seed service", "title", s.title, "error", err)
			panic("failed to seed service: " + err.Error())
		}
		log.Info("seeded service", "title", s.title)
	}

	log.Info("seed complete", "users", len(seedUsers), "services", len(seedServices), "password", demoPassword)
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u seedUser, passwordHash string) (uuid.UUID, error) {
	var bio *string
	if u.bio != "" {
		bio = &u.bio
	}

	var id uuid.UUID
	query := `
		INSERT INTO users (email, password_hash, full_name, is_provider, is_admin, provider_bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			is_provider = EXCLUDED.is_provider,
			is_admin = EXCLUDED.is_admin
		RETURNING id`
	err := pool.QueryRow(ctx, query, u.email, passwordHash, u.fullName, u.isProvider, u.isAdmin, bio).Scan(&id)
	return id, err
}

func upsertService(ctx context.Context, pool *pgxpool.Pool, providerID uuid.UUID, s seedService) error {
	query := `
		INSERT INTO services (provider_id, title, description, category, price, location)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM services WHERE provider_id = $1 AND title = $2
		)`
	_, err := pool.Exec(ctx, query, providerID, s.title, s.description, s.category, s.price, s.location)
	return err
}
