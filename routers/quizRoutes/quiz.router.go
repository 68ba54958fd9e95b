package quizRoutes

import (
	quizController "coursehub/controllers/quiz"
	"coursehub/middleware"
	quizValidator "coursehub/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupQuizRoutes sets up answering and submitting. :kind is quiz or assessment.
func SetupQuizRoutes(app *fiber.App) {
	quizGroup := app.Group("/quiz", middleware.JWTMiddleware)

	quizGroup.Post("/answer", quizValidator.Answer(), quizController.RecordAnswer)
	quizGroup.Get("/:kind/:id", quizValidator.Instrument(), quizController.GetInstrument)
	quizGroup.Post("/:kind/:id/submit", quizValidator.Instrument(), quizValidator.Submit(), quizController.Submit)
	quizGroup.Get("/:kind/:id/progress", quizValidator.Instrument(), quizController.GetProgress)
	quizGroup.Get("/:kind/:id/result", quizValidator.Instrument(), quizController.GetResult)
}
