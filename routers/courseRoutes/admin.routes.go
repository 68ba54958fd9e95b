package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	"coursehub/validators"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.AdminOnly)

	adminGroup.Post("/create", courseValidator.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", validators.Pagination(), controllers.AdminGetAllCourses)
	adminGroup.Put("/:course_id", courseValidator.CourseID(), courseValidator.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:course_id", courseValidator.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Get("/:course_id", courseValidator.CourseID(), controllers.AdminGetCourseDetails)
	adminGroup.Post("/:course_id/publish", courseValidator.CourseID(), courseValidator.PublishCourse(), controllers.AdminPublishCourse)

	adminGroup.Get("/:course_id/enrollments", courseValidator.CourseID(), controllers.AdminGetCourseEnrollments)
	adminGroup.Get("/:course_id/certificates", courseValidator.CourseID(), validators.Pagination(), controllers.AdminGetIssuedCertificates)
	adminGroup.Get("/:course_id/feedback", courseValidator.CourseID(), validators.Pagination(), controllers.AdminListFeedback)
}
