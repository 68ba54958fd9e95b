package controllers

import (
	"time"

	"coursehub/database"
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	"coursehub/services/apperr"
	"coursehub/validators"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

// SubmitFeedback creates or replaces the caller's feedback for a course
func SubmitFeedback(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if err := actor.RequireLearner(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := validators.Request[courseValidator.FeedbackRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := findCourse(c, true)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	db := database.Database.Db.WithContext(c.UserContext())
	var count int64
	if err := db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", actor.UserID, course.ID, false).
		Count(&count).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	if count == 0 {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course before leaving feedback!", nil)
	}

	feedback := courseModels.Feedback{
		UserID:   actor.UserID,
		CourseID: course.ID,
		Rating:   reqData.Rating,
		Comment:  reqData.Comment,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     reqData.Rating,
			"comment":    reqData.Comment,
			"updated_at": time.Now(),
			"deleted_at": nil,
		}),
	}).Create(&feedback).Error
	if err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback saved!", feedback)
}

func AdminListFeedback(c *fiber.Ctx) error {
	page := validators.PageOf(c)
	courseID := validators.ID(c, "course_id")
	db := database.Database.Db.WithContext(c.UserContext())

	var feedback []courseModels.Feedback
	var total int64
	q := db.Model(&courseModels.Feedback{}).Where("course_id = ?", courseID)
	if err := q.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	if err := q.Offset(page.Offset()).Limit(page.Limit).Order("updated_at desc").Find(&feedback).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	var average float64
	if err := db.Model(&courseModels.Feedback{}).Where("course_id = ?", courseID).
		Select("COALESCE(AVG(rating), 0)").Scan(&average).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback fetched successfully!", fiber.Map{
		"feedback":       feedback,
		"average_rating": average,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}
