package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/services/enrollment"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

func enrollments() *enrollment.Service {
	return enrollment.NewService(database.Database.Db, nil)
}

func EnrollInCourse(c *fiber.Ctx) error {
	e, err := enrollments().Enroll(c.UserContext(), middleware.Actor(c), validators.ID(c, "course_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled successfully!", e)
}

// GetEnrollments lists the caller's enrollments, hiding expired ones.
func GetEnrollments(c *fiber.Ctx) error {
	list, err := enrollments().ListActive(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", list)
}

func AdminGetCourseEnrollments(c *fiber.Ctx) error {
	list, err := enrollments().ListForCourse(c.UserContext(), middleware.Actor(c), validators.ID(c, "course_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", list)
}
