package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"prostore/internal/handlers"
	"prostore/internal/middleware"
	"prostore/internal/repositories"
	"prostore/internal/services"
	"prostore/pkg/database"
	"prostore/pkg/logger"
	"prostore/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "prostore.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	log := logger.Get()
	defer log.Sync()

	// --- Database ---
	// Failing to reach the database at boot is fatal; per-request storage
	// errors later on are not.
	db, err := database.Open(database.Config{
		Driver:       viper.GetString("DB_DRIVER"),
		DSN:          viper.GetString("DB_DSN"),
		MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
	})
	if err != nil {
		log.Fatal("unable to connect to the database", zap.Error(err))
	}

	// Schema creation is idempotent and non-fatal: the table may already
	// exist in a shape AutoMigrate refuses to touch.
	if err := database.EnsureSchema(db); err != nil {
		log.Warn("error creating products table", zap.Error(err))
	} else {
		log.Info("products table ensured")
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Warn("RabbitMQ unavailable, product events disabled", zap.Error(err))
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Repositories / Services / Handlers ---
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, mqClient)
	productHandler := handlers.NewProductHandler(productService)

	// --- Fiber App ---
	app := fiber.New()

	app.Use(middleware.RequestID())
	app.Use(fiberlogger.New())

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Product event consumer ---
	if mqClient != nil {
		messageHandler := func(msg amqp.Delivery) error {
			log.Info("received product event",
				zap.Uint64("tag", msg.DeliveryTag),
				zap.ByteString("body", msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
			log.Warn("failed to start product event consumer", zap.Error(consumerErr))
		}
	}

	// --- Start HTTP Server ---
	log.Info("starting server", zap.String("port", appPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Warn("error during shutdown", zap.Error(err))
	}

	log.Info("server gracefully stopped")
}
