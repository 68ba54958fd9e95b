package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentEnrolled  = "ENROLLED"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentExpired   = "EXPIRED"
)

// Enrollment tracks a user's access to a course. COMPLETED becomes EXPIRED
// once ExpiresAt has passed; the flip happens when the enrollments are read.
type Enrollment struct {
	gorm.Model
	UserID       uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID     uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	Course       *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Status       string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, COMPLETED, EXPIRED
	CompletedAt  *time.Time `json:"completed_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	ReminderSent bool       `json:"-" gorm:"default:false"`
	IsDeleted    bool       `json:"-" gorm:"default:false"`
}
