package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"classifiedsBack/internal/config"
	"classifiedsBack/internal/services"
	"classifiedsBack/utils"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config/config.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to the yaml config")
	addr := flag.String("addr", "", "HTTP network address (overrides config)")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		errorLog.Fatal(err)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := openDB(cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	tokens, err := utils.NewManager(cfg.Auth.JWTSecret)
	if err != nil {
		errorLog.Fatalf("auth: %v", err)
	}

	deps := appDeps{DB: db, Tokens: tokens, Logger: logger}

	if rdb := openRedis(cfg); rdb != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			errorLog.Printf("redis unavailable, package cache disabled: %v", err)
		} else {
			deps.Redis = rdb
			infoLog.Printf("package cache enabled (redis %s)", cfg.Redis.Addr)
		}
		cancel()
		defer rdb.Close()
	}

	if cfg.Mail.APIKey != "" {
		mailer, err := services.NewMailerService(services.MailerConfig{
			BaseURL:  cfg.Mail.BaseURL,
			APIKey:   cfg.Mail.APIKey,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
			Logger:   logger.With("component", "mailer"),
		})
		if err != nil {
			errorLog.Fatalf("mailer: %v", err)
		}
		deps.Mailer = mailer
	} else {
		infoLog.Println("MAIL_API_KEY not set, e-mails will only be logged")
	}

	storage, err := utils.NewObjectStorage(utils.StorageConfig{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		errorLog.Fatal(err)
	}
	if storage != nil {
		deps.Archive = storage
		infoLog.Printf("invoice archive enabled (bucket %s)", cfg.Storage.Bucket)
	}

	app := initializeApp(cfg, deps, errorLog, infoLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.hub.Run(ctx)
	startBoostScheduler(ctx, app.renewalService, boostSchedule{
		Hour:       cfg.Scheduler.Hour,
		Minute:     cfg.Scheduler.Minute,
		Location:   cfg.Location(),
		Timeout:    cfg.Scheduler.Timeout,
		RunOnStart: cfg.Scheduler.RunOnStart,
	}, infoLog, errorLog)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		ErrorLog:     errorLog,
		Handler:      addSecurityHeaders(c.Handler(app.routes())),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errorLog.Printf("shutdown: %v", err)
		}
	}()

	infoLog.Printf("Starting server on %s", cfg.Server.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errorLog.Fatal(err)
	}
	infoLog.Println("Server stopped")
}
