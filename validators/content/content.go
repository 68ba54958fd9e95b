package contentValidator

import (
	"gorm.io/datatypes"
)

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type LessonRequest struct {
	Title    string `json:"title" validate:"required,min=2,max=200"`
	Summary  string `json:"summary" validate:"max=1000"`
	Body     string `json:"body"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
	Duration int    `json:"duration" validate:"gte=0"`
}

type UpdateLessonRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Summary     *string `json:"summary" validate:"omitempty,max=1000"`
	Body        *string `json:"body"`
	VideoURL    *string `json:"video_url" validate:"omitempty,url"`
	Duration    *int    `json:"duration" validate:"omitempty,gte=0"`
	IsPublished *bool   `json:"is_published"`
}

type ResourceRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Kind  string `json:"kind" validate:"required,oneof=LINK FILE VIDEO"`
	URL   string `json:"url" validate:"required,url"`
}

type UpdateResourceRequest struct {
	Title *string `json:"title" validate:"omitempty,max=200"`
	Kind  *string `json:"kind" validate:"omitempty,oneof=LINK FILE VIDEO"`
	URL   *string `json:"url" validate:"omitempty,url"`
}

type ActivityRequest struct {
	Title        string         `json:"title" validate:"required,max=200"`
	Instructions string         `json:"instructions"`
	Config       datatypes.JSON `json:"config"`
}

type UpdateActivityRequest struct {
	Title        *string        `json:"title" validate:"omitempty,max=200"`
	Instructions *string        `json:"instructions"`
	Config       datatypes.JSON `json:"config"`
}

type QuizRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type AssessmentRequest = QuizRequest

type UpdateAssessmentRequest = UpdateQuizRequest

type SectionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Type  string `json:"type" validate:"required,oneof=KNOWLEDGE ATTITUDE BEHAVIOUR"`
}

type UpdateSectionRequest struct {
	Title *string `json:"title" validate:"omitempty,max=200"`
	Type  *string `json:"type" validate:"omitempty,oneof=KNOWLEDGE ATTITUDE BEHAVIOUR"`
}

type QuestionRequest struct {
	Prompt      string `json:"prompt" validate:"required"`
	Explanation string `json:"explanation"`
}

type UpdateQuestionRequest struct {
	Prompt      *string `json:"prompt" validate:"omitempty,min=1"`
	Explanation *string `json:"explanation"`
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

type UpdateOptionRequest struct {
	Text      *string `json:"text" validate:"omitempty,min=1,max=1000"`
	IsCorrect *bool   `json:"is_correct"`
}

// ReorderRequest lists every live sibling id in its new order.
type ReorderRequest struct {
	IDs []uint `json:"ids" validate:"dive,gt=0"`
}

// MoveRequest names the new parent of an item.
type MoveRequest struct {
	To uint `json:"to" validate:"required,gt=0"`
}
