package contentController

import (
	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/ordering"
	contentValidator "coursehub/validators/content"
)

var Modules = newHandlers("Module", ordering.ModulesInCourse,
	func(r *contentValidator.ModuleRequest) *course.Module {
		return &course.Module{Title: r.Title, Description: r.Description}
	},
	func(r *contentValidator.UpdateModuleRequest) map[string]interface{} {
		changes := map[string]interface{}{}
		set(changes, "title", r.Title)
		set(changes, "description", r.Description)
		return changes
	})

var Lessons = newHandlers("Lesson", ordering.LessonsInModule,
	func(r *contentValidator.LessonRequest) *course.Lesson {
		return &course.Lesson{
			Title:    r.Title,
			Summary:  r.Summary,
			Body:     r.Body,
			VideoURL: r.VideoURL,
			Duration: r.Duration,
		}
	},
	func(r *contentValidator.UpdateLessonRequest) map[string]interface{} {
		changes := map[string]interface{}{}
		set(changes, "title", r.Title)
		set(changes, "summary", r.Summary)
		set(changes, "body", r.Body)
		set(changes, "video_url", r.VideoURL)
		set(changes, "duration", r.Duration)
		set(changes, "is_published", r.IsPublished)
		return changes
	})

var Resources = newHandlers("Resource", ordering.ResourcesInLesson,
	func(r *contentValidator.ResourceRequest) *course.LessonResource {
		return &course.LessonResource{Title: r.Title, Kind: r.Kind, URL: r.URL}
	},
	func(r *contentValidator.UpdateResourceRequest) map[string]interface{} {
		changes := map[string]interface{}{}
		set(changes, "title", r.Title)
		set(changes, "kind", r.Kind)
		set(changes, "url", r.URL)
		return changes
	})

var Activities = newHandlers("Activity", ordering.ActivitiesInLesson,
	func(r *contentValidator.ActivityRequest) *course.LessonActivity {
		return &course.LessonActivity{Title: r.Title, Instructions: r.Instructions, Config: r.Config}
	},
	func(r *contentValidator.UpdateActivityRequest) map[string]interface{} {
		changes := map[string]interface{}{}
		set(changes, "title", r.Title)
		set(changes, "instructions", r.Instructions)
		if len(r.Config) > 0 {
			changes["config"] = r.Config
		}
		return changes
	})

var Sections = newHandlers("Section", ordering.SectionsInAssessment,
	func(r *contentValidator.SectionRequest) *quiz.AssessmentSection {
		return &quiz.AssessmentSection{Title: r.Title, Type: r.Type}
	},
	func(r *contentValidator.UpdateSectionRequest) map[string]interface{} {
		changes := map[string]interface{}{}
		set(changes, "title", r.Title)
		set(changes, "type", r.Type)
		return changes
	})

func buildQuestion(r *contentValidator.QuestionRequest) *quiz.Question {
	return &quiz.Question{Prompt: r.Prompt, Explanation: r.Explanation}
}

func patchQuestion(r *contentValidator.UpdateQuestionRequest) map[string]interface{} {
	changes := map[string]interface{}{}
	set(changes, "prompt", r.Prompt)
	set(changes, "explanation", r.Explanation)
	return changes
}

var (
	QuizQuestions    = newHandlers("Question", ordering.QuestionsInQuiz, buildQuestion, patchQuestion)
	SectionQuestions = newHandlers("Question", ordering.QuestionsInSection, buildQuestion, patchQuestion)
)

var Options = newHandlers("Option", ordering.OptionsInQuestion,
	func(r *contentValidator.OptionRequest) *quiz.Option {
		return &quiz.Option{Text: r.Text, IsCorrect: r.IsCorrect}
	},
	func(r *contentValidator.UpdateOptionRequest) map[string]interface{} {
		changes := map[string]interface{}{}
		set(changes, "text", r.Text)
		set(changes, "is_correct", r.IsCorrect)
		return changes
	})
