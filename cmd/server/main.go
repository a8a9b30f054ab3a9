package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/transparentpro/transparency-api/internal/config"
	"github.com/transparentpro/transparency-api/internal/domain/fiber/handler"
	"github.com/transparentpro/transparency-api/internal/middleware"
	"github.com/transparentpro/transparency-api/internal/model"
	"github.com/transparentpro/transparency-api/internal/repository"
	"github.com/transparentpro/transparency-api/internal/service"
	"github.com/transparentpro/transparency-api/internal/usecase"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	reportRepo := repository.NewReportRepository(db)

	gateway, embedder := buildAIGateway(ctx, appConfig.AIProvider)
	renderer := service.NewChromeRenderer()

	uc := usecase.NewAssessmentUsecase(productRepo, questionRepo, reportRepo, userRepo, gateway, renderer, embedder)
	if err := uc.Bootstrap(ctx); err != nil {
		log.Fatal(err)
	}

	h := handler.NewAssessmentHandler(uc)
	h.RegisterRoutes(app)

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

// buildAIGateway selects the configured provider. Gemini doubles as the
// embedding provider; with OpenRouter, embeddings stay on Gemini when a key
// is available and similarity search degrades gracefully otherwise.
func buildAIGateway(ctx context.Context, provider string) (service.AIGateway, service.EmbeddingGenerator) {
	gemini, err := service.NewGeminiService(ctx)
	switch provider {
	case "openrouter":
		if err != nil {
			log.Printf("Gemini unavailable (%v), similarity search disabled", err)
			return service.NewOpenRouterService(), nil
		}
		return service.NewOpenRouterService(), gemini
	default:
		if err != nil {
			log.Fatal(err)
		}
		return gemini, gemini
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	// uuid defaults and the embedding column depend on these extensions.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("could not create uuid-ossp extension: ", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		log.Fatal("could not create vector extension: ", err)
	}

	err = db.AutoMigrate(&model.User{}, &model.Product{}, &model.Question{}, &model.Report{})
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
