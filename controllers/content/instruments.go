package contentController

import (
	"fmt"
	"log"

	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/apperr"
	"coursehub/services/notify"
	"coursehub/validators"
	contentValidator "coursehub/validators/content"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func changed(c *fiber.Ctx, path string) {
	if err := notify.Default().Changed(c.UserContext(), path); err != nil {
		log.Printf("[CONTENT] change notification for %s failed: %v", path, err)
	}
}

// ListQuizzes returns the quizzes attached to a lesson.
func ListQuizzes(c *fiber.Ctx) error {
	lessonID := validators.ID(c, "lesson_id")
	var quizzes []quiz.Quiz
	err := database.Database.Db.WithContext(c.UserContext()).
		Where("lesson_id = ? AND is_deleted = ?", lessonID, false).
		Order("id asc").
		Find(&quizzes).Error
	if err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz list fetched.", quizzes)
}

func CreateQuiz(c *fiber.Ctx) error {
	if err := middleware.Actor(c).RequireAdmin(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := validators.Request[contentValidator.QuizRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx := c.UserContext()
	lessonID := validators.ID(c, "lesson_id")
	if err := findLive(ctx, &course.Lesson{}, lessonID, "lesson"); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	q := quiz.Quiz{LessonID: lessonID, Title: reqData.Title, Description: reqData.Description}
	if err := database.Database.Db.WithContext(ctx).Create(&q).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	changed(c, fmt.Sprintf("/lessons/%d", lessonID))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", q)
}

func UpdateQuiz(c *fiber.Ctx) error {
	if err := middleware.Actor(c).RequireAdmin(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := validators.Request[contentValidator.UpdateQuizRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx := c.UserContext()
	var q quiz.Quiz
	if err := findLive(ctx, &q, validators.ID(c, "quiz_id"), "quiz"); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	changes := map[string]interface{}{}
	set(changes, "title", reqData.Title)
	set(changes, "description", reqData.Description)
	if len(changes) > 0 {
		if err := database.Database.Db.WithContext(ctx).Model(&q).Updates(changes).Error; err != nil {
			return middleware.ErrorResponse(c, apperr.Storage(err))
		}
		changed(c, fmt.Sprintf("/quizzes/%d", q.ID))
	}
	if err := findLive(ctx, &q, q.ID, "quiz"); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", q)
}

// DeleteQuiz soft-deletes a quiz. Its questions stay but become unreachable.
func DeleteQuiz(c *fiber.Ctx) error {
	if err := middleware.Actor(c).RequireAdmin(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	ctx := c.UserContext()
	var q quiz.Quiz
	if err := findLive(ctx, &q, validators.ID(c, "quiz_id"), "quiz"); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := database.Database.Db.WithContext(ctx).Model(&q).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	changed(c, fmt.Sprintf("/lessons/%d", q.LessonID))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

// GetQuiz is the admin view, correct options included.
func GetQuiz(c *fiber.Ctx) error {
	view, err := BuildQuiz(c.UserContext(), validators.ID(c, "quiz_id"), AdminView)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched.", view)
}

func findAssessment(db *gorm.DB, courseID uint, includeDeleted bool) (*quiz.Assessment, error) {
	var a quiz.Assessment
	q := db.Where("course_id = ?", courseID)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	res := q.Limit(1).Find(&a)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &a, nil
}

// CreateAssessment attaches the single assessment of a course. A previously
// deleted one is revived in place.
func CreateAssessment(c *fiber.Ctx) error {
	if err := middleware.Actor(c).RequireAdmin(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := validators.Request[contentValidator.AssessmentRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx := c.UserContext()
	db := database.Database.Db.WithContext(ctx)
	courseID := validators.ID(c, "course_id")
	if err := findLive(ctx, &course.Course{}, courseID, "course"); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	existing, err := findAssessment(db, courseID, true)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if existing != nil && !existing.IsDeleted {
		return middleware.ErrorResponse(c, apperr.New(apperr.InvalidInput, "course %d already has an assessment", courseID))
	}

	var a quiz.Assessment
	if existing != nil {
		a = *existing
		a.Title, a.Description, a.IsDeleted = reqData.Title, reqData.Description, false
		err = db.Model(&a).Select("title", "description", "is_deleted").Updates(&a).Error
	} else {
		a = quiz.Assessment{CourseID: courseID, Title: reqData.Title, Description: reqData.Description}
		err = db.Create(&a).Error
	}
	if err != nil {
		if apperr.IsDuplicate(err) {
			return middleware.ErrorResponse(c, apperr.New(apperr.InvalidInput, "course %d already has an assessment", courseID))
		}
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	changed(c, fmt.Sprintf("/courses/%d", courseID))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assessment created successfully!", a)
}

func UpdateAssessment(c *fiber.Ctx) error {
	if err := middleware.Actor(c).RequireAdmin(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := validators.Request[contentValidator.UpdateAssessmentRequest](c)
	if reqData == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())
	courseID := validators.ID(c, "course_id")
	a, err := findAssessment(db, courseID, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if a == nil {
		return middleware.ErrorResponse(c, apperr.New(apperr.NotFound, "course %d has no assessment", courseID))
	}

	changes := map[string]interface{}{}
	set(changes, "title", reqData.Title)
	set(changes, "description", reqData.Description)
	if len(changes) > 0 {
		if err := db.Model(a).Updates(changes).Error; err != nil {
			return middleware.ErrorResponse(c, apperr.Storage(err))
		}
		changed(c, fmt.Sprintf("/assessments/%d", a.ID))
	}
	if a, err = findAssessment(db, courseID, false); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment updated successfully!", a)
}

func DeleteAssessment(c *fiber.Ctx) error {
	if err := middleware.Actor(c).RequireAdmin(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	db := database.Database.Db.WithContext(c.UserContext())
	courseID := validators.ID(c, "course_id")
	a, err := findAssessment(db, courseID, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if a == nil {
		return middleware.ErrorResponse(c, apperr.New(apperr.NotFound, "course %d has no assessment", courseID))
	}
	if err := db.Model(a).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	changed(c, fmt.Sprintf("/courses/%d", courseID))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment deleted successfully!", nil)
}

// GetAssessment is the admin view of a course assessment.
func GetAssessment(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	courseID := validators.ID(c, "course_id")
	a, err := findAssessment(db, courseID, false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if a == nil {
		return middleware.ErrorResponse(c, apperr.New(apperr.NotFound, "course %d has no assessment", courseID))
	}
	view, err := BuildAssessment(c.UserContext(), *a, AdminView)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment fetched.", view)
}
