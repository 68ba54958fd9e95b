package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ResourceLink  = "LINK"
	ResourceFile  = "FILE"
	ResourceVideo = "VIDEO"
)

// Lesson is an ordered unit inside a module.
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Body        string `json:"body" gorm:"type:text"`
	VideoURL    string `json:"video_url"`
	Duration    int    `json:"duration" gorm:"default:0"` // minutes
	Position    int    `json:"position" gorm:"not null;default:0"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// LessonResource is a downloadable or linked attachment of a lesson.
type LessonResource struct {
	gorm.Model
	LessonID  uint   `json:"lesson_id" gorm:"index;not null"`
	Title     string `json:"title"`
	Kind      string `json:"kind" gorm:"default:'LINK'"` // LINK, FILE, VIDEO
	URL       string `json:"url"`
	Position  int    `json:"position" gorm:"not null;default:0"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
}

// LessonActivity is a practice task attached to a lesson. Config holds the
// activity-specific settings as JSON.
type LessonActivity struct {
	gorm.Model
	LessonID     uint           `json:"lesson_id" gorm:"index;not null"`
	Title        string         `json:"title"`
	Instructions string         `json:"instructions" gorm:"type:text"`
	Config       datatypes.JSON `json:"config"`
	Position     int            `json:"position" gorm:"not null;default:0"`
	IsDeleted    bool           `json:"-" gorm:"default:false"`
}
