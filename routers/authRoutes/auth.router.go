package authRoutes

import (
	authControllers "coursehub/controllers/auth"
	"coursehub/middleware"
	"coursehub/validators"
	authValidators "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", middleware.AuthRateLimiter(), authValidators.Register(), authControllers.Register)
	authGroup.Post("/login", middleware.AuthRateLimiter(), authValidators.Login(), authControllers.Login)
	authGroup.Get("/me", middleware.JWTMiddleware, authControllers.Me)
	authGroup.Get("/login/history", middleware.JWTMiddleware, validators.Pagination(), authControllers.LoginHistoryList)
}
