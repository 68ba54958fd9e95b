package ordering

import (
	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/apperr"

	"gorm.io/gorm"
)

var ModulesInCourse = Relation[course.Module]{
	Name:        "module",
	ParentTable: "courses",
	ScopeColumn: "course_id",
	Attach: func(m *course.Module, scopeID uint, position int) {
		m.CourseID = scopeID
		m.Position = position
	},
	Path: pathf("/courses/%d"),
}

var LessonsInModule = Relation[course.Lesson]{
	Name:        "lesson",
	ParentTable: "modules",
	ScopeColumn: "module_id",
	Attach: func(l *course.Lesson, scopeID uint, position int) {
		l.ModuleID = scopeID
		l.Position = position
	},
	Path: pathf("/modules/%d"),
}

var ResourcesInLesson = Relation[course.LessonResource]{
	Name:        "resource",
	ParentTable: "lessons",
	ScopeColumn: "lesson_id",
	Attach: func(r *course.LessonResource, scopeID uint, position int) {
		r.LessonID = scopeID
		r.Position = position
	},
	Path: pathf("/lessons/%d"),
}

var ActivitiesInLesson = Relation[course.LessonActivity]{
	Name:        "activity",
	ParentTable: "lessons",
	ScopeColumn: "lesson_id",
	Attach: func(a *course.LessonActivity, scopeID uint, position int) {
		a.LessonID = scopeID
		a.Position = position
	},
	Path: pathf("/lessons/%d"),
}

var SectionsInAssessment = Relation[quiz.AssessmentSection]{
	Name:        "section",
	ParentTable: "assessments",
	ScopeColumn: "assessment_id",
	Attach: func(s *quiz.AssessmentSection, scopeID uint, position int) {
		s.AssessmentID = scopeID
		s.Position = position
	},
	Path: pathf("/assessments/%d"),
}

// QuestionsInQuiz and QuestionsInSection share the questions table; a
// question carries exactly one of quiz_id and section_id.
var QuestionsInQuiz = Relation[quiz.Question]{
	Name:        "question",
	ParentTable: "quizzes",
	ScopeColumn: "quiz_id",
	Attach: func(q *quiz.Question, scopeID uint, position int) {
		id := scopeID
		q.QuizID = &id
		q.SectionID = nil
		q.Position = position
	},
	Path:       pathf("/quizzes/%d"),
	BeforeMove: rejectAnswered,
}

var QuestionsInSection = Relation[quiz.Question]{
	Name:        "question",
	ParentTable: "assessment_sections",
	ScopeColumn: "section_id",
	Attach: func(q *quiz.Question, scopeID uint, position int) {
		id := scopeID
		q.SectionID = &id
		q.QuizID = nil
		q.Position = position
	},
	Path:       pathf("/sections/%d"),
	BeforeMove: rejectAnswered,
}

var OptionsInQuestion = Relation[quiz.Option]{
	Name:        "option",
	ParentTable: "questions",
	ScopeColumn: "question_id",
	Attach: func(o *quiz.Option, scopeID uint, position int) {
		o.QuestionID = scopeID
		o.Position = position
	},
	Path: pathf("/questions/%d"),
}

// rejectAnswered keeps answered questions where they are, so saved answers
// never change instrument.
func rejectAnswered(tx *gorm.DB, q *quiz.Question) error {
	var count int64
	if err := tx.Model(&quiz.Answer{}).Where("question_id = ?", q.ID).Count(&count).Error; err != nil {
		return apperr.Storage(err)
	}
	if count > 0 {
		return apperr.New(apperr.InvalidInput, "question %d already has answers", q.ID)
	}
	return nil
}
