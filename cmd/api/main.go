package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/wrx861/tyres/internal/activity"
	"github.com/wrx861/tyres/internal/carts"
	"github.com/wrx861/tyres/internal/config"
	"github.com/wrx861/tyres/internal/fourtochki"
	"github.com/wrx861/tyres/internal/httpx"
	kafkax "github.com/wrx861/tyres/internal/kafka"
	"github.com/wrx861/tyres/internal/orders"
	"github.com/wrx861/tyres/internal/postgres"
	"github.com/wrx861/tyres/internal/redisx"
	"github.com/wrx861/tyres/internal/settings"
	"github.com/wrx861/tyres/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicNotifications, 1024)
	prod.Start(ctx)

	// Repos & services
	userRepo := &users.Repo{DB: db, AdminTelegramID: cfg.AdminTelegramID}
	settingsRepo := &settings.Repo{DB: db, DefaultMarkup: decimal.NewFromFloat(cfg.DefaultMarkup)}
	activityRepo := &activity.Repo{DB: db}
	cartStore := &carts.Store{DB: db, Gate: userRepo}
	orderRepo := &orders.Repo{DB: db}
	orderSvc := &orders.Service{
		Repo:            orderRepo,
		Markup:          settingsRepo,
		Producer:        prod,
		Redis:           rdb,
		ServiceName:     cfg.ServiceName,
		AdminTelegramID: cfg.AdminTelegramID,
	}
	catalog := fourtochki.NewClient(cfg.FourtochkiURL, cfg.FourtochkiLogin, cfg.FourtochkiPassword)

	// Router
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Users: userRepo}).Register(router)
	(&httpx.CartHandler{Carts: cartStore, Users: userRepo, Activity: activityRepo}).Register(router)
	(&httpx.ProductsHandler{
		Catalog:          catalog,
		Settings:         settingsRepo,
		Users:            userRepo,
		Activity:         activityRepo,
		HomeWarehouseIDs: cfg.HomeWarehouseIDs,
	}).Register(router)
	(&httpx.CarsHandler{
		Catalog:          catalog,
		Settings:         settingsRepo,
		Users:            userRepo,
		Activity:         activityRepo,
		HomeWarehouseIDs: cfg.HomeWarehouseIDs,
	}).Register(router)
	(&httpx.OrdersHandler{
		Svc:      orderSvc,
		Repo:     orderRepo,
		Users:    userRepo,
		Activity: activityRepo,
		Catalog:  catalog,
	}).Register(router)
	(&httpx.AdminHandler{
		Users:    userRepo,
		Settings: settingsRepo,
		Orders:   orderRepo,
		Activity: activityRepo,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
	cancel()
}
