package main

import (
	"context"
	"log"
	"time"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/config"
	httpctl "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/controllers/http"
	mmysql "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/mysql"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/rabbitmq"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/stripe"
	mysqlrepo "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository/mysql"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	catalogRepo := mysqlrepo.NewCatalogRepository(db)
	paymentRepo := mysqlrepo.NewPaymentRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	gateway := stripe.NewClient(cfg.StripeBaseURL, cfg.StripeSecretKey, cfg.StripeTimeout)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           cfg.RedisDB,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	catalogService := services.NewCatalogService(catalogRepo)
	catalogService.SetRedisClient(redisClient)
	orderService := services.NewOrderService(orderRepo, publisher)
	orderService.SetRedisClient(redisClient)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, gateway, publisher)
	statsService := services.NewStatsService(catalogRepo, orderRepo)

	if len(cfg.WarmupProductIDs) > 0 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := catalogService.WarmupProductCache(ctx, cfg.WarmupProductIDs); err != nil {
				log.Printf("Failed to warm up product cache: %v", err)
			}
		}()
	}

	handler := httpctl.NewHandler(authService, catalogService, orderService, paymentService, statsService)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	log.Printf("Starting order-inventory service on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
