package quiz

import "gorm.io/gorm"

// InstrumentKind distinguishes the two things a learner submits against.
type InstrumentKind string

const (
	KindQuiz       InstrumentKind = "QUIZ"
	KindAssessment InstrumentKind = "ASSESSMENT"
)

func (k InstrumentKind) Valid() bool {
	return k == KindQuiz || k == KindAssessment
}

// Quiz is a scored question set attached to a lesson. Every question counts.
type Quiz struct {
	gorm.Model
	LessonID    uint   `json:"lesson_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// Assessment is the single end-of-course instrument, split into typed sections.
type Assessment struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"not null;uniqueIndex"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

const (
	SectionKnowledge = "KNOWLEDGE"
	SectionAttitude  = "ATTITUDE"
	SectionBehaviour = "BEHAVIOUR"
)

// AssessmentSection groups assessment questions. Only KNOWLEDGE sections are scored.
type AssessmentSection struct {
	gorm.Model
	AssessmentID uint   `json:"assessment_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Type         string `json:"type" gorm:"not null;default:'KNOWLEDGE'"` // KNOWLEDGE, ATTITUDE, BEHAVIOUR
	Position     int    `json:"position" gorm:"not null;default:0"`
	IsDeleted    bool   `json:"-" gorm:"default:false"`
}

// Question belongs to either a quiz or an assessment section, never both.
type Question struct {
	gorm.Model
	QuizID      *uint  `json:"quiz_id,omitempty" gorm:"index"`
	SectionID   *uint  `json:"section_id,omitempty" gorm:"index"`
	Prompt      string `json:"prompt" gorm:"type:text"`
	Explanation string `json:"explanation" gorm:"type:text"`
	Position    int    `json:"position" gorm:"not null;default:0"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

type Option struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	Position   int    `json:"position" gorm:"not null;default:0"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}
