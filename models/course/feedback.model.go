package course

import "gorm.io/gorm"

// Feedback is a learner's rating of a course, one per (user, course).
type Feedback struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_feedback_user_course"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_feedback_user_course"`
	Rating   int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment  string `json:"comment" gorm:"type:text"`
}
