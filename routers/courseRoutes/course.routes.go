package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	"coursehub/validators"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course", middleware.JWTMiddleware)

	userGroup.Get("/list", validators.Pagination(), controllers.GetAllCourses)
	userGroup.Get("/:course_id", courseValidator.CourseID(), controllers.GetCourseDetails)
	userGroup.Post("/:course_id/enroll", courseValidator.CourseID(), controllers.EnrollInCourse)
	userGroup.Post("/:course_id/feedback", courseValidator.CourseID(), courseValidator.Feedback(), controllers.SubmitFeedback)

	userEnrollGroup := app.Group("/user", middleware.JWTMiddleware)
	userEnrollGroup.Get("/enrollments", controllers.GetEnrollments)
	userEnrollGroup.Get("/certificates", controllers.GetUserCertificates)

	app.Get("/certificate/:number", controllers.VerifyCertificate)
}
