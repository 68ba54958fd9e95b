package quizController

import (
	"coursehub/config"
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models/quiz"
	"coursehub/services/apperr"
	"coursehub/services/submission"
	"coursehub/validators"
	quizValidator "coursehub/validators/quiz"

	contentController "coursehub/controllers/content"

	"github.com/gofiber/fiber/v2"
)

func engine() *submission.Engine {
	opts := submission.Options{}
	if config.AppConfig != nil {
		opts.EnrollmentValidityDays = config.AppConfig.EnrollmentValidityDays
	}
	return submission.NewEngine(database.Database.Db, opts)
}

func instrument(c *fiber.Ctx) submission.Instrument {
	return submission.Instrument{Kind: quizValidator.Kind(c), ID: validators.ID(c, "id")}
}

// GetInstrument returns a quiz or assessment without its answer key
func GetInstrument(c *fiber.Ctx) error {
	ctx := c.UserContext()
	inst := instrument(c)

	if inst.Kind == quiz.KindQuiz {
		view, err := contentController.BuildQuiz(ctx, inst.ID, contentController.LearnerView)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched.", view)
	}

	var a quiz.Assessment
	res := database.Database.Db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", inst.ID, false).
		Limit(1).
		Find(&a)
	if res.Error != nil {
		return middleware.ErrorResponse(c, apperr.Storage(res.Error))
	}
	if res.RowsAffected == 0 {
		return middleware.ErrorResponse(c, apperr.New(apperr.NotFound, "assessment %d not found", inst.ID))
	}
	view, err := contentController.BuildAssessment(ctx, a, contentController.LearnerView)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment fetched.", view)
}

// RecordAnswer saves or replaces the caller's choice for one question
func RecordAnswer(c *fiber.Ctx) error {
	reqData := validators.Request[quizValidator.AnswerRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := engine().RecordAnswer(c.UserContext(), middleware.Actor(c), reqData.QuestionID, reqData.OptionID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer saved.", fiber.Map{
		"question_id": reqData.QuestionID,
		"option_id":   reqData.OptionID,
	})
}

// Submit scores and freezes the caller's answers. It succeeds once.
func Submit(c *fiber.Ctx) error {
	reqData := validators.Request[quizValidator.SubmitRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	final := make([]submission.AnswerInput, 0, len(reqData.Answers))
	for _, a := range reqData.Answers {
		final = append(final, submission.AnswerInput{QuestionID: a.QuestionID, OptionID: a.OptionID})
	}

	result, err := engine().Submit(c.UserContext(), middleware.Actor(c), instrument(c), final)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submitted successfully!", result)
}

func GetProgress(c *fiber.Ctx) error {
	progress, err := engine().Progress(c.UserContext(), middleware.Actor(c), instrument(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched.", progress)
}

func GetResult(c *fiber.Ctx) error {
	sub, err := engine().Submission(c.UserContext(), middleware.Actor(c), instrument(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Result fetched.", sub)
}
