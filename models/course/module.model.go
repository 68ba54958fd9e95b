package course

import "gorm.io/gorm"

// Module is an ordered chapter of a course.
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position" gorm:"not null;default:0"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
