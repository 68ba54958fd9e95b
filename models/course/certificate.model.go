package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is issued when a learner submits the course assessment.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	CourseID          uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	SubmissionID      uint      `json:"submission_id" gorm:"not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	Score             int       `json:"score"`
	Percentage        int       `json:"percentage"`
	IssuedAt          time.Time `json:"issued_at"`
}
