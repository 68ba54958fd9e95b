package courseValidator

import (
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Author       string `json:"author" validate:"max=100"`
	Duration     int64  `json:"duration" validate:"gte=0"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

// UpdateCourseRequest only touches the fields that are present.
type UpdateCourseRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Author       *string `json:"author" validate:"omitempty,max=100"`
	Duration     *int64  `json:"duration" validate:"omitempty,gte=0"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	Status       *string `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

type PublishRequest struct {
	Publish bool `json:"publish"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func CreateCourse() fiber.Handler {
	return validators.Body[CreateCourseRequest]()
}

func UpdateCourse() fiber.Handler {
	return validators.Body[UpdateCourseRequest]()
}

func PublishCourse() fiber.Handler {
	return validators.Body[PublishRequest]()
}

func Feedback() fiber.Handler {
	return validators.Body[FeedbackRequest]()
}

// CourseID validates the :course_id route param.
func CourseID() fiber.Handler {
	return validators.Params("course_id")
}
