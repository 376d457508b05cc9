package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"classifiedsBack/internal/config"
	"classifiedsBack/internal/handlers"
	"classifiedsBack/internal/repositories"
	"classifiedsBack/internal/services"
	"classifiedsBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB
	cfg      config.Config

	tokens *utils.Manager
	hub    *NotificationHub

	checkoutHandler *handlers.CheckoutHandler
	paymentHandler  *handlers.PaymentHandler
	invoiceHandler  *handlers.InvoiceHandler
	packageHandler  *handlers.PackageHandler
	orderHandler    *handlers.OrderHandler

	renewalService *services.RenewalService

	limiterMu      sync.Mutex
	limiters       map[int]*paymentLimiter
	limiterSweptAt time.Time
}

// appDeps carries the optional collaborators built in main.
type appDeps struct {
	DB      *sql.DB
	Redis   repositories.RedisKV
	Mailer  services.Mailer
	Archive services.InvoiceArchive
	Gateway services.PaymentGateway
	Tokens  *utils.Manager
	Logger  *slog.Logger
}

func initializeApp(cfg config.Config, deps appDeps, errorLog, infoLog *log.Logger) *application {
	loc := cfg.Location()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Repositories
	orderRepo := repositories.NewOrderRepository(deps.DB)
	packageRepo := repositories.NewPackageRepository(deps.DB)
	adRepo := repositories.NewAdvertisementRepository(deps.DB)
	packageCache := repositories.NewPackageCache(packageRepo, deps.Redis, cfg.Redis.PackageTTL, errorLog)

	hub := NewNotificationHub(infoLog, errorLog)

	// Services
	gateway := deps.Gateway
	if gateway == nil {
		gateway = services.NewMockGateway(logger.With("component", "gateway"))
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = services.LogMailer{Logger: logger.With("component", "mailer")}
	}
	invoiceService := services.NewInvoiceService(orderRepo, mailer, deps.Archive, "Classifieds", loc, logger.With("component", "invoices"))
	checkoutService := services.NewCheckoutService(packageCache, orderRepo, gateway, cfg.Payments.Currency)
	paymentService := &services.PaymentService{
		Orders:   orderRepo,
		Packages: packageCache,
		Ads:      adRepo,
		Gateway:  gateway,
		Invoices: invoiceService,
		Events:   hub,
		Logger:   logger.With("component", "payments"),
	}
	renewalService := services.NewRenewalService(adRepo, orderRepo, invoiceService, hub, loc, logger.With("component", "renewal"))
	packageService := services.NewPackageService(packageCache)
	orderService := services.NewOrderService(orderRepo)

	return &application{
		errorLog: errorLog,
		infoLog:  infoLog,
		db:       deps.DB,
		cfg:      cfg,
		tokens:   deps.Tokens,
		hub:      hub,

		checkoutHandler: handlers.NewCheckoutHandler(checkoutService),
		paymentHandler:  handlers.NewPaymentHandler(paymentService, orderService),
		invoiceHandler:  handlers.NewInvoiceHandler(invoiceService, orderService),
		packageHandler:  handlers.NewPackageHandler(packageService),
		orderHandler:    handlers.NewOrderHandler(orderService),

		renewalService: renewalService,
		limiters:       make(map[int]*paymentLimiter),
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	db.SetConnMaxLifetime(30 * time.Minute)
	log.Println("Successfully connected to database")
	return db, nil
}

// openRedis returns nil when no address is configured.
func openRedis(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
