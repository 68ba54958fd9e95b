// Package enrollment manages course enrollments. Expiry is applied lazily:
// reading a learner's enrollments flips overdue COMPLETED rows to EXPIRED.
package enrollment

import (
	"context"
	"log"
	"time"

	"coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/apperr"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: db, now: clock}
}

// Enroll registers the caller for a published course. Enrolling twice
// returns the existing enrollment.
func (s *Service) Enroll(ctx context.Context, actor access.Actor, courseID uint) (*course.Enrollment, error) {
	if err := actor.RequireLearner(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var count int64
	err := db.Model(&course.Course{}).
		Where("id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Count(&count).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if count == 0 {
		return nil, apperr.New(apperr.NotFound, "course %d not found", courseID)
	}

	if existing, err := s.find(db, actor.UserID, courseID); err != nil || existing != nil {
		return existing, err
	}

	e := course.Enrollment{UserID: actor.UserID, CourseID: courseID, Status: course.EnrollmentEnrolled}
	if err := db.Create(&e).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return s.find(db, actor.UserID, courseID)
		}
		return nil, apperr.Storage(err)
	}
	return &e, nil
}

// ListActive expires overdue completions for the caller, then returns every
// enrollment that is not expired.
func (s *Service) ListActive(ctx context.Context, actor access.Actor) ([]course.Enrollment, error) {
	if err := actor.RequireLearner(); err != nil {
		return nil, err
	}

	var list []course.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&course.Enrollment{}).
			Where("user_id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at < ?",
				actor.UserID, course.EnrollmentCompleted, s.now()).
			Update("status", course.EnrollmentExpired)
		if res.Error != nil {
			return apperr.Storage(res.Error)
		}
		if res.RowsAffected > 0 {
			log.Printf("[ENROLLMENT] expired %d enrollments for user %d", res.RowsAffected, actor.UserID)
		}

		err := tx.Preload("Course").
			Where("user_id = ? AND status <> ? AND is_deleted = ?", actor.UserID, course.EnrollmentExpired, false).
			Order("created_at desc").
			Find(&list).Error
		return apperr.Storage(err)
	})
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return list, nil
}

// ListForCourse is the admin view of a course's enrollments, all statuses.
func (s *Service) ListForCourse(ctx context.Context, actor access.Actor, courseID uint) ([]course.Enrollment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var list []course.Enrollment
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return list, nil
}

// DueForReminder returns completed enrollments that expire within the next
// days days and have not been reminded yet.
func (s *Service) DueForReminder(ctx context.Context, days int) ([]course.Enrollment, error) {
	from := s.now()
	until := now.With(from.AddDate(0, 0, days)).EndOfDay()

	var list []course.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("status = ? AND reminder_sent = ? AND is_deleted = ?", course.EnrollmentCompleted, false, false).
		Where("expires_at BETWEEN ? AND ?", from, until).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return list, nil
}

func (s *Service) MarkReminded(ctx context.Context, enrollmentID uint) error {
	err := s.db.WithContext(ctx).
		Model(&course.Enrollment{}).
		Where("id = ?", enrollmentID).
		Update("reminder_sent", true).Error
	return apperr.Storage(err)
}

func (s *Service) find(db *gorm.DB, userID, courseID uint) (*course.Enrollment, error) {
	var e course.Enrollment
	res := db.Where("user_id = ? AND course_id = ?", userID, courseID).Limit(1).Find(&e)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &e, nil
}
