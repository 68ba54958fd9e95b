package contentController

import (
	"context"

	"coursehub/database"
	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/apperr"
	"coursehub/services/ordering"
)

// Viewer picks what the tree exposes. Learners never see correct options or
// unpublished lessons.
type Viewer int

const (
	AdminView Viewer = iota
	LearnerView
)

type OptionView struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Position  int    `json:"position"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type QuestionView struct {
	ID          uint         `json:"id"`
	Prompt      string       `json:"prompt"`
	Explanation string       `json:"explanation,omitempty"`
	Position    int          `json:"position"`
	Options     []OptionView `json:"options"`
}

type QuizView struct {
	quiz.Quiz
	Questions []QuestionView `json:"questions"`
}

type SectionView struct {
	quiz.AssessmentSection
	Questions []QuestionView `json:"questions"`
}

type AssessmentView struct {
	quiz.Assessment
	Sections []SectionView `json:"sections"`
}

type LessonView struct {
	course.Lesson
	Resources  []course.LessonResource `json:"resources"`
	Activities []course.LessonActivity `json:"activities"`
	Quizzes    []quiz.Quiz             `json:"quizzes"`
}

type ModuleView struct {
	course.Module
	Lessons []LessonView `json:"lessons"`
}

type CourseView struct {
	course.Course
	Modules    []ModuleView     `json:"modules"`
	Assessment *quiz.Assessment `json:"assessment,omitempty"`
}

// BuildCourseTree loads the whole ordered content tree of a course.
func BuildCourseTree(ctx context.Context, c course.Course, viewer Viewer) (*CourseView, error) {
	view := &CourseView{Course: c, Modules: []ModuleView{}}

	modules, err := manager(ordering.ModulesInCourse).List(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		mv := ModuleView{Module: m, Lessons: []LessonView{}}
		lessons, err := manager(ordering.LessonsInModule).List(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range lessons {
			if viewer == LearnerView && !l.IsPublished {
				continue
			}
			lv, err := buildLesson(ctx, l)
			if err != nil {
				return nil, err
			}
			mv.Lessons = append(mv.Lessons, *lv)
		}
		view.Modules = append(view.Modules, mv)
	}

	var a quiz.Assessment
	res := database.Database.Db.WithContext(ctx).
		Where("course_id = ? AND is_deleted = ?", c.ID, false).
		Limit(1).
		Find(&a)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected > 0 {
		view.Assessment = &a
	}
	return view, nil
}

func buildLesson(ctx context.Context, l course.Lesson) (*LessonView, error) {
	lv := &LessonView{Lesson: l}
	var err error
	if lv.Resources, err = manager(ordering.ResourcesInLesson).List(ctx, l.ID); err != nil {
		return nil, err
	}
	if lv.Activities, err = manager(ordering.ActivitiesInLesson).List(ctx, l.ID); err != nil {
		return nil, err
	}
	err = database.Database.Db.WithContext(ctx).
		Where("lesson_id = ? AND is_deleted = ?", l.ID, false).
		Order("id asc").
		Find(&lv.Quizzes).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return lv, nil
}

func BuildQuiz(ctx context.Context, quizID uint, viewer Viewer) (*QuizView, error) {
	var q quiz.Quiz
	if err := findLive(ctx, &q, quizID, "quiz"); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(ctx, ordering.QuestionsInQuiz, q.ID, viewer)
	if err != nil {
		return nil, err
	}
	return &QuizView{Quiz: q, Questions: questions}, nil
}

func BuildAssessment(ctx context.Context, a quiz.Assessment, viewer Viewer) (*AssessmentView, error) {
	view := &AssessmentView{Assessment: a, Sections: []SectionView{}}
	sections, err := manager(ordering.SectionsInAssessment).List(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		questions, err := buildQuestions(ctx, ordering.QuestionsInSection, s.ID, viewer)
		if err != nil {
			return nil, err
		}
		view.Sections = append(view.Sections, SectionView{AssessmentSection: s, Questions: questions})
	}
	return view, nil
}

func buildQuestions(ctx context.Context, rel ordering.Relation[quiz.Question], scopeID uint, viewer Viewer) ([]QuestionView, error) {
	questions, err := manager(rel).List(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	out := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		options, err := manager(ordering.OptionsInQuestion).List(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		qv := QuestionView{ID: q.ID, Prompt: q.Prompt, Position: q.Position, Options: make([]OptionView, 0, len(options))}
		if viewer == AdminView {
			qv.Explanation = q.Explanation
		}
		for _, o := range options {
			ov := OptionView{ID: o.ID, Text: o.Text, Position: o.Position}
			if viewer == AdminView {
				correct := o.IsCorrect
				ov.IsCorrect = &correct
			}
			qv.Options = append(qv.Options, ov)
		}
		out = append(out, qv)
	}
	return out, nil
}

func findLive(ctx context.Context, dest interface{}, id uint, name string) error {
	res := database.Database.Db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Limit(1).
		Find(dest)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "%s %d not found", name, id)
	}
	return nil
}
