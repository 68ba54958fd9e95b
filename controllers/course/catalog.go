package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	"coursehub/services/apperr"
	"coursehub/validators"

	contentController "coursehub/controllers/content"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses
func GetAllCourses(c *fiber.Ctx) error {
	page := validators.PageOf(c)

	var courses []courseModels.Course
	var total int64

	db := database.Database.Db.WithContext(c.UserContext()).Model(&courseModels.Course{}).
		Where("is_deleted = ? AND is_published = ?", false, true)
	if search := c.Query("search"); search != "" {
		db = db.Where("title LIKE ?", "%"+search+"%")
	}
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	if err := db.Offset(page.Offset()).Limit(page.Limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// GetCourseDetails returns the published content tree without answer keys
func GetCourseDetails(c *fiber.Ctx) error {
	course, err := findCourse(c, true)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	tree, err := contentController.BuildCourseTree(c.UserContext(), *course, contentController.LearnerView)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", tree)
}
