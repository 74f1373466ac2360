package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"exchange-order-service/internal/config"
	"exchange-order-service/internal/controller"
	"exchange-order-service/internal/middleware"
	"exchange-order-service/internal/rabbit"
	"exchange-order-service/internal/repository"
	"exchange-order-service/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	// MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	db := client.Database(cfg.MongoDBName)

	// RabbitMQ connection
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit channel failed")
	}

	publisher, err := rabbit.NewPublisher(ch)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit publisher setup failed")
	}

	// Repository, external clients and services
	repo := repository.NewMongoOrderRepository(db)
	catalog := service.NewCatalogService(cfg.CatalogURL)
	addresses := service.NewAddressBookService(cfg.CustomersURL)
	exchangeService := service.NewExchangeService(repo, publisher, catalog, addresses)
	authService := service.NewAuthService(cfg.AuthURL)

	// Handlers
	ctrl := controller.NewOrderController(exchangeService)

	// Router
	r := gin.Default()

	// Public routes
	r.POST("/orders/init", ctrl.InitOrder)

	// Protected routes (token required)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.POST("/orders/:orderId/exchange", ctrl.SubmitExchange)
	auth.GET("/orders/mine", ctrl.GetMyOrders)
	auth.GET("/orders/:orderId", ctrl.GetOrder)

	// Admin routes
	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders/all", ctrl.GetAllOrders)
	admin.GET("/orders/status/:status", ctrl.GetOrdersByStatus)
	admin.PATCH("/orders/:orderId/status", ctrl.UpdateOrderStatus)
	admin.GET("/exchanges", ctrl.GetExchanges)
	admin.POST("/exchanges/:orderId/approve", ctrl.ApproveExchange)
	admin.POST("/exchanges/:orderId/reject", ctrl.RejectExchange)
	admin.POST("/exchanges/:orderId/pickup", ctrl.BookPickup)
	admin.POST("/exchanges/:orderId/transit", ctrl.MarkInTransit)
	admin.POST("/exchanges/:orderId/complete", ctrl.CompleteExchange)

	rabbit.SetupConsumers(ch, exchangeService)

	log.Info().Str("port", cfg.Port).Msg("exchange order service running")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
