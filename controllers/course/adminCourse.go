package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	"coursehub/services/apperr"
	"coursehub/validators"
	courseValidator "coursehub/validators/course"

	contentController "coursehub/controllers/content"

	"github.com/gofiber/fiber/v2"
)

func findCourse(c *fiber.Ctx, publishedOnly bool) (*courseModels.Course, error) {
	courseID := validators.ID(c, "course_id")
	q := database.Database.Db.WithContext(c.UserContext()).Where("id = ? AND is_deleted = ?", courseID, false)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var course courseModels.Course
	res := q.Limit(1).Find(&course)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "Course not found!")
	}
	return &course, nil
}

// AdminCreateCourse creates a new course in DRAFT
func AdminCreateCourse(c *fiber.Ctx) error {
	reqData := validators.Request[courseValidator.CreateCourseRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Author:       reqData.Author,
		Duration:     reqData.Duration,
		ThumbnailURL: reqData.ThumbnailURL,
		Status:       courseModels.StatusDraft,
	}
	if err := database.Database.Db.WithContext(c.UserContext()).Create(&course).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func AdminUpdateCourse(c *fiber.Ctx) error {
	reqData := validators.Request[courseValidator.UpdateCourseRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := findCourse(c, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	changes := map[string]interface{}{}
	if reqData.Title != nil {
		changes["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		changes["description"] = *reqData.Description
	}
	if reqData.Author != nil {
		changes["author"] = *reqData.Author
	}
	if reqData.Duration != nil {
		changes["duration"] = *reqData.Duration
	}
	if reqData.ThumbnailURL != nil {
		changes["thumbnail_url"] = *reqData.ThumbnailURL
	}
	if reqData.Status != nil {
		changes["status"] = *reqData.Status
	}

	if len(changes) > 0 {
		if err := database.Database.Db.WithContext(c.UserContext()).Model(course).Updates(changes).Error; err != nil {
			return middleware.ErrorResponse(c, apperr.Storage(err))
		}
		if course, err = findCourse(c, false); err != nil {
			return middleware.ErrorResponse(c, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminDeleteCourse soft deletes a course. Enrollments are kept.
func AdminDeleteCourse(c *fiber.Ctx) error {
	course, err := findCourse(c, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	err = database.Database.Db.WithContext(c.UserContext()).Model(course).Updates(map[string]interface{}{
		"is_deleted":   true,
		"is_published": false,
	}).Error
	if err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminGetAllCourses lists all courses for admin
func AdminGetAllCourses(c *fiber.Ctx) error {
	page := validators.PageOf(c)

	var courses []courseModels.Course
	var total int64

	db := database.Database.Db.WithContext(c.UserContext()).Model(&courseModels.Course{}).Where("is_deleted = ?", false)
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

// AdminGetCourseDetails returns the full content tree with answer keys
func AdminGetCourseDetails(c *fiber.Ctx) error {
	course, err := findCourse(c, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	tree, err := contentController.BuildCourseTree(c.UserContext(), *course, contentController.AdminView)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var enrollmentCount int64
	database.Database.Db.WithContext(c.UserContext()).Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Count(&enrollmentCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":           tree,
		"enrollment_count": enrollmentCount,
	})
}

// AdminPublishCourse publishes or unpublishes a course
func AdminPublishCourse(c *fiber.Ctx) error {
	reqData := validators.Request[courseValidator.PublishRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := findCourse(c, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	course.IsPublished = reqData.Publish
	if reqData.Publish {
		course.Status = courseModels.StatusActive
	}
	err = database.Database.Db.WithContext(c.UserContext()).Model(course).
		Select("is_published", "status").
		Updates(course).Error
	if err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	message := "Course unpublished successfully!"
	if reqData.Publish {
		message = "Course published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}
