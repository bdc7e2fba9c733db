package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/httpserver"
	"github.com/Skotchmaster/food_delivery/internal/mykafka"
	"github.com/Skotchmaster/food_delivery/internal/rabbit"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/search"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/pkg/config"
	pkgdb "github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type catalogStore interface {
	service.FoodStore
	service.OfferStore
}

func openBroker(cfg config.Config) (events.Broker, error) {
	switch cfg.EventBroker {
	case "", "none":
		return nil, nil
	case "kafka":
		config.MustNonEmptyList(cfg.KafkaBrokers, "KAFKA_BROKERS")
		return mykafka.NewProducer(cfg.KafkaBrokers)
	case "rabbitmq":
		config.MustNonEmpty(cfg.AMQPURL, "AMQP_URL")
		return rabbit.Dial(cfg.AMQPURL, cfg.AMQPExchange)
	default:
		return nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.EventBroker)
	}
}

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	gormRepo := repo.NewGormRepo(db)
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = gormRepo.Migrate(ctx)
	cancel()
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var catalog catalogStore = gormRepo
	var mongoRepo *repo.MongoRepo
	if cfg.CatalogStore == "mongo" {
		config.MustNonEmpty(cfg.MongoURI, "MONGODB_URI")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err = repo.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err == nil {
			err = mongoRepo.EnsureIndexes(ctx)
		}
		cancel()
		if err != nil {
			log.Fatalf("mongo: %v", err)
		}
		catalog = mongoRepo
	}

	bus := events.NewBus()

	broker, err := openBroker(cfg)
	if err != nil {
		log.Fatalf("event broker: %v", err)
	}
	if broker != nil {
		stopForward := events.Forward(bus, broker)
		defer stopForward()
	}

	foods := &service.FoodService{Store: catalog, Bus: bus}
	if cfg.ESURL != "" {
		idx, err := search.New(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := idx.Ping(pingCtx); err != nil {
			logger.Warn("search_unavailable", "reason", "continuing with store search", "error", err)
		}
		pingCancel()
		idx.Subscribe(bus)
		foods.Index = idx
	}

	users := &service.UserService{
		Store:         gormRepo,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Bus:           bus,
	}
	demo, err := service.NewDemoService(users, cfg.DemoUsers)
	if err != nil {
		log.Fatalf("DEMO_USERS: %v", err)
	}
	offers := &service.OfferService{Store: catalog, Bus: bus}
	orders := &service.OrderService{Store: gormRepo, Users: gormRepo, Bus: bus, DeliveryFee: cfg.DeliveryFee}

	e := httpserver.New(&httpserver.Deps{
		Foods:       foods,
		Offers:      offers,
		Users:       users,
		Demo:        demo,
		Carts:       &service.CartService{Store: gormRepo, Foods: catalog, DeliveryFee: cfg.DeliveryFee},
		Orders:      orders,
		Sync:        &service.SyncService{Receipts: gormRepo, Foods: foods, Offers: offers},
		JWTSecret:   cfg.JWTAccessSecret,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		CSRF:        cfg.CSRFEnabled,
		Ready:       readiness(db, mongoRepo),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "catalog_store", cfg.CatalogStore, "event_broker", cfg.EventBroker)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if mongoRepo != nil {
		if err := mongoRepo.Close(shutdownCtx); err != nil {
			logger.Error("mongo_close_error", "error", err)
		}
	}
	if broker != nil {
		if err := broker.Close(); err != nil {
			logger.Error("broker_close_error", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}

func readiness(db *gorm.DB, mongoRepo *repo.MongoRepo) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		if mongoRepo != nil {
			return mongoRepo.Ping(ctx)
		}
		return nil
	}
}
