package contentRoutes

import (
	contentController "coursehub/controllers/content"
	"coursehub/middleware"
	"coursehub/validators"
	contentValidator "coursehub/validators/content"

	"github.com/gofiber/fiber/v2"
)

// mount registers list, create, reorder, update, delete and move for one
// ordered relation under path, which must contain :scope_id.
func mount[T any](g fiber.Router, path string, h contentController.Handlers[T], create, update fiber.Handler) {
	scope := validators.Params("scope_id")
	item := validators.Params("scope_id", "item_id")

	g.Get(path, scope, h.List)
	g.Post(path, scope, create, h.Create)
	g.Put(path+"/order", scope, validators.Body[contentValidator.ReorderRequest](), h.Reorder)
	g.Put(path+"/:item_id", item, update, h.Update)
	g.Delete(path+"/:item_id", item, h.Delete)
	g.Post(path+"/:item_id/move", item, validators.Body[contentValidator.MoveRequest](), h.Move)
}

// SetupContentRoutes sets up the admin content editor
func SetupContentRoutes(app *fiber.App) {
	admin := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly)

	mount(admin, "/course/:scope_id/modules", contentController.Modules,
		validators.Body[contentValidator.ModuleRequest](), validators.Body[contentValidator.UpdateModuleRequest]())
	mount(admin, "/module/:scope_id/lessons", contentController.Lessons,
		validators.Body[contentValidator.LessonRequest](), validators.Body[contentValidator.UpdateLessonRequest]())
	mount(admin, "/lesson/:scope_id/resources", contentController.Resources,
		validators.Body[contentValidator.ResourceRequest](), validators.Body[contentValidator.UpdateResourceRequest]())
	mount(admin, "/lesson/:scope_id/activities", contentController.Activities,
		validators.Body[contentValidator.ActivityRequest](), validators.Body[contentValidator.UpdateActivityRequest]())
	mount(admin, "/assessment/:scope_id/sections", contentController.Sections,
		validators.Body[contentValidator.SectionRequest](), validators.Body[contentValidator.UpdateSectionRequest]())
	mount(admin, "/quiz/:scope_id/questions", contentController.QuizQuestions,
		validators.Body[contentValidator.QuestionRequest](), validators.Body[contentValidator.UpdateQuestionRequest]())
	mount(admin, "/section/:scope_id/questions", contentController.SectionQuestions,
		validators.Body[contentValidator.QuestionRequest](), validators.Body[contentValidator.UpdateQuestionRequest]())
	mount(admin, "/question/:scope_id/options", contentController.Options,
		validators.Body[contentValidator.OptionRequest](), validators.Body[contentValidator.UpdateOptionRequest]())

	lesson := validators.Params("lesson_id")
	quiz := validators.Params("quiz_id")
	admin.Get("/lesson/:lesson_id/quizzes", lesson, contentController.ListQuizzes)
	admin.Post("/lesson/:lesson_id/quizzes", lesson, validators.Body[contentValidator.QuizRequest](), contentController.CreateQuiz)
	admin.Get("/quiz/:quiz_id", quiz, contentController.GetQuiz)
	admin.Put("/quiz/:quiz_id", quiz, validators.Body[contentValidator.UpdateQuizRequest](), contentController.UpdateQuiz)
	admin.Delete("/quiz/:quiz_id", quiz, contentController.DeleteQuiz)

	course := validators.Params("course_id")
	admin.Get("/course/:course_id/assessment", course, contentController.GetAssessment)
	admin.Post("/course/:course_id/assessment", course, validators.Body[contentValidator.AssessmentRequest](), contentController.CreateAssessment)
	admin.Put("/course/:course_id/assessment", course, validators.Body[contentValidator.UpdateAssessmentRequest](), contentController.UpdateAssessment)
	admin.Delete("/course/:course_id/assessment", course, contentController.DeleteAssessment)
}
