package main

import (
	"log"

	"coursehub/config"
	authControllers "coursehub/controllers/auth"
	"coursehub/database"
	"coursehub/middleware"
	authRoutes "coursehub/routers/authRoutes"
	contentRoutes "coursehub/routers/contentRoutes"
	courseRoutes "coursehub/routers/courseRoutes"
	quizRoutes "coursehub/routers/quizRoutes"
	"coursehub/services/enrollment"
	"coursehub/services/notify"
	"coursehub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "coursehub",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return middleware.JsonResponse(c, code, false, err.Error(), nil)
		},
	})

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	if cfg.RateLimitMax > 0 {
		app.Use(middleware.GlobalRateLimiter(cfg.RateLimitMax))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(); err != nil {
			log.Printf("[HEALTH] database ping failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unavailable", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	contentRoutes.SetupContentRoutes(app)
	quizRoutes.SetupQuizRoutes(app)

	return app
}

func main() {
	config.LoadConfig()
	database.ConnectDb()
	cfg := config.AppConfig

	notify.Init(cfg.RevalidateURL, cfg.RevalidateToken)

	if err := authControllers.SeedAdmin(database.Database.Db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	scheduler, err := utils.StartEnrollmentScheduler(cfg.ExpiryReminderCron, &utils.ReminderJob{
		DB:      database.Database.Db,
		Service: enrollment.NewService(database.Database.Db, nil),
		Mailer:  utils.NewMailer(),
		Days:    cfg.ExpiryReminderDays,
	})
	if err != nil {
		log.Fatalf("Failed to start enrollment scheduler: %v", err)
	}
	defer scheduler.Stop()

	app := newApp(cfg)

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
