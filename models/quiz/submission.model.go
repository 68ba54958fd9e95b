package quiz

import (
	"time"

	"gorm.io/datatypes"
)

// Answer is a learner's current choice for one question. It is overwritten
// in place until the owning instrument is submitted.
type Answer struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_answer_user_question"`
	QuestionID     uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_user_question"`
	OptionID       uint           `json:"option_id" gorm:"not null"`
	InstrumentKind InstrumentKind `json:"instrument_kind" gorm:"type:varchar(16);index:idx_answer_instrument"`
	InstrumentID   uint           `json:"instrument_id" gorm:"index:idx_answer_instrument"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Submission is the immutable scored record of one (user, instrument).
// Answers snapshots question -> option at submit time.
type Submission struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_user_instrument"`
	InstrumentKind InstrumentKind `json:"instrument_kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_submission_user_instrument"`
	InstrumentID   uint           `json:"instrument_id" gorm:"not null;uniqueIndex:idx_submission_user_instrument"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     int            `json:"percentage"`
	Completed      bool           `json:"completed"`
	Answers        datatypes.JSON `json:"answers"`
	CreatedAt      time.Time      `json:"created_at"`
}
