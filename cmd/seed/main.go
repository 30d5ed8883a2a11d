// Command seed fills a database with demo users, the product catalogue and
// generated customers, inquiries and orders.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"io"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogapp "github.com/uniformco/backoffice/internal/application/catalog"
	identityapp "github.com/uniformco/backoffice/internal/application/identity"
	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/auth"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/event"
	"github.com/uniformco/backoffice/internal/infrastructure/logger"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
)

//go:embed catalogue.csv
var defaultCatalogue []byte

func main() {
	var (
		opts      options
		catalogue string
		logLevel  string
	)
	flag.StringVar(&opts.Password, "password", "Uniform2026", "Password for the demo accounts (admin, manager, anna, ben)")
	flag.IntVar(&opts.Customers, "customers", 25, "Customers to generate")
	flag.IntVar(&opts.Inquiries, "inquiries", 40, "Inquiries to submit; every third one is converted")
	flag.IntVar(&opts.Orders, "orders", 30, "Orders to place")
	flag.Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	flag.StringVar(&catalogue, "products", "", "Product catalogue CSV (defaults to the built-in catalogue)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.Must(logger.Options{Level: logLevel, Format: "console", Output: "stdout"})
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	var src io.Reader = bytes.NewReader(defaultCatalogue)
	if catalogue != "" {
		f, err := os.Open(catalogue)
		if err != nil {
			log.Fatal("Failed to open catalogue", zap.Error(err))
		}
		defer f.Close()
		src = f
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.GormLevel("warn"))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	s := newSeeder(db.DB, cfg.Numbering, bus, gofakeit.New(opts.Seed), log)
	sum, err := s.run(ctx, src, opts)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeding complete",
		zap.Int("users", sum.Users),
		zap.Int("products", sum.Products),
		zap.Int("customers", sum.Customers),
		zap.Int("inquiries", sum.Inquiries),
		zap.Int("converted", sum.Converted),
		zap.Int("orders", sum.Orders),
	)
}

func newSeeder(db *gorm.DB, numbering config.NumberingConfig, events shared.EventPublisher, faker *gofakeit.Faker, log *zap.Logger) *seeder {
	userRepo := persistence.NewGormUserRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	inquiryRepo := persistence.NewGormInquiryRepository(db)
	tx := persistence.NewGormTransactionManager(db)
	orderNumbers := persistence.NewOrderNumberGenerator(db, numbering.OrderPrefix)
	inquiryNumbers := persistence.NewInquiryNumberGenerator(db, numbering.InquiryPrefix)

	return &seeder{
		userRepo:  userRepo,
		users:     identityapp.NewUserService(userRepo, auth.NewInMemoryTokenBlacklist(), time.Hour, events, log),
		customers: partnerapp.NewCustomerService(customerRepo, orderRepo, events, log),
		products:  catalogapp.NewProductService(productRepo, orderRepo, nil, events, log),
		inquiries: salesapp.NewInquiryService(inquiryRepo, customerRepo, orderRepo, inquiryNumbers, tx, events, nil, log),
		orders:    tradeapp.NewOrderService(orderRepo, productRepo, customerRepo, orderNumbers, tx, events, nil, log),
		faker:     faker,
		log:       log,
	}
}
