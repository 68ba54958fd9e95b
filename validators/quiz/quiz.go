package quizValidator

import (
	"strings"

	"coursehub/middleware"
	"coursehub/models/quiz"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

type AnswerRequest struct {
	QuestionID uint `json:"question_id" validate:"required,gt=0"`
	OptionID   uint `json:"option_id" validate:"required,gt=0"`
}

type SubmitAnswer struct {
	QuestionID uint `json:"question_id" validate:"required,gt=0"`
	OptionID   uint `json:"option_id" validate:"required,gt=0"`
}

// SubmitRequest may carry final answers that are recorded before scoring.
type SubmitRequest struct {
	Answers []SubmitAnswer `json:"answers" validate:"omitempty,dive"`
}

func Answer() fiber.Handler {
	return validators.Body[AnswerRequest]()
}

func Submit() fiber.Handler {
	return validators.Body[SubmitRequest]()
}

// Instrument validates /:kind/:id where kind is quiz or assessment.
func Instrument() fiber.Handler {
	ids := validators.Params("id")
	return func(c *fiber.Ctx) error {
		kind := quiz.InstrumentKind(strings.ToUpper(c.Params("kind")))
		if !kind.Valid() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Kind must be quiz or assessment!", nil)
		}
		c.Locals("kind", kind)
		return ids(c)
	}
}

func Kind(c *fiber.Ctx) quiz.InstrumentKind {
	k, _ := c.Locals("kind").(quiz.InstrumentKind)
	return k
}
