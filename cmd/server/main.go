package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/config"
	"github.com/iliyamo/warehouse-stock-allocation/internal/database"
	"github.com/iliyamo/warehouse-stock-allocation/internal/handler"
	"github.com/iliyamo/warehouse-stock-allocation/internal/middleware"
	"github.com/iliyamo/warehouse-stock-allocation/internal/queue"
	"github.com/iliyamo/warehouse-stock-allocation/internal/repository"
	"github.com/iliyamo/warehouse-stock-allocation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	orders := repository.NewOrderRepo(db)
	batches := repository.NewBatchRepo(db)
	transformations := repository.NewTransformationRepo(db)
	inventory := repository.NewInventoryRepo(db)
	reservations := repository.NewReservationRepo(db)
	jobs := repository.NewPickingJobRepo(db)
	movements := repository.NewMovementRepo(db)
	sequences := repository.NewSequenceRepo(db)

	auth := handler.NewAuthHandler(users, tokens, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost)
	orderHandler := handler.NewOrderHandler(orders)
	picking := handler.NewPickingHandler(jobs, orders, inventory, reservations, movements, sequences, cfg.StagingLocation)
	batchHandler := handler.NewBatchHandler(batches, transformations)
	transformHandler := handler.NewTransformationHandler(batches, transformations)
	stock := handler.NewStockHandler(movements, inventory)

	e := echo.New()
	e.HideBanner = true

	// Redis backs the rate limiter and the read-path response cache.
	// Both middlewares degrade to pass-through when Redis is down.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPicking(e, picking, orderHandler, cfg.JWTSecret)
	router.RegisterBatches(e, batchHandler, transformHandler, cfg.JWTSecret)
	router.RegisterStock(e, stock, cfg.JWTSecret, cache)

	// Background consumer mirrors completed jobs into logs/picking.log.
	go func() {
		if err := queue.StartPickingConsumer(); err != nil {
			log.Printf("picking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
