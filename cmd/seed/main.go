package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/seed"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/pkg/config"
	pkgdb "github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

func main() {
	file := flag.String("file", "cmd/seed/catalog.yaml", "YAML catalog to load")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFile).With("service", "seed")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	f, err := seed.Load(*file)
	if err != nil {
		log.Fatalf("load %s: %v", *file, err)
	}

	var foods service.FoodStore
	var offers service.OfferStore
	if cfg.CatalogStore == "mongo" {
		config.MustNonEmpty(cfg.MongoURI, "MONGODB_URI")
		m, err := repo.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("mongo: %v", err)
		}
		defer m.Close(context.Background())
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
		foods, offers = m, m
	} else {
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
		db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		r := repo.NewGormRepo(db)
		if err := r.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		foods, offers = r, r
	}

	res, err := seed.Apply(ctx, f, &service.FoodService{Store: foods}, &service.OfferService{Store: offers})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d foods and %d offers (%d skipped)", res.Foods, res.Offers, res.Skipped)
}
