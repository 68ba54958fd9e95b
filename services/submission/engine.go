// Package submission owns a learner's answers to a quiz or assessment and the
// one-time scored submission that freezes them.
package submission

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/access"
	"coursehub/services/apperr"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Instrument identifies what is being answered.
type Instrument struct {
	Kind quiz.InstrumentKind
	ID   uint
}

type AnswerInput struct {
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`
}

type State string

const (
	NotStarted State = "NOT_STARTED"
	InProgress State = "IN_PROGRESS"
	Submitted  State = "SUBMITTED"
)

// Progress is the learner's view of an instrument before or after submitting.
type Progress struct {
	State    State         `json:"state"`
	Answered int           `json:"answered"`
	Total    int           `json:"total"`
	Answers  map[uint]uint `json:"answers"` // question id -> option id
	Result   *Result       `json:"result,omitempty"`
}

type Options struct {
	// EnrollmentValidityDays is how long a completed course stays active.
	EnrollmentValidityDays int
	Now                    func() time.Time
}

type Engine struct {
	db           *gorm.DB
	validityDays int
	now          func() time.Time
}

func NewEngine(db *gorm.DB, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.EnrollmentValidityDays <= 0 {
		opts.EnrollmentValidityDays = 365
	}
	return &Engine{db: db, validityDays: opts.EnrollmentValidityDays, now: opts.Now}
}

type scopedQuestion struct {
	ID     uint
	Scored bool
}

type instrumentQuestions struct {
	courseID  uint // assessments only
	questions []scopedQuestion
}

func (iq instrumentQuestions) ids() []uint {
	ids := make([]uint, len(iq.questions))
	for i, q := range iq.questions {
		ids[i] = q.ID
	}
	return ids
}

// RecordAnswer saves or overwrites the learner's choice for one question.
func (e *Engine) RecordAnswer(ctx context.Context, actor access.Actor, questionID, optionID uint) error {
	if err := actor.RequireLearner(); err != nil {
		return err
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inst, err := instrumentOf(tx, questionID)
		if err != nil {
			return err
		}
		if err := requireInstrument(tx, inst); err != nil {
			return err
		}
		if err := checkOption(tx, questionID, optionID); err != nil {
			return err
		}
		if err := ensureOpen(tx, actor.UserID, inst); err != nil {
			return err
		}
		return upsertAnswer(tx, actor.UserID, inst, questionID, optionID)
	})
	return apperr.Storage(err)
}

// Submit scores the instrument and records the submission. final answers are
// saved first; every question must then have an answer.
func (e *Engine) Submit(ctx context.Context, actor access.Actor, inst Instrument, final []AnswerInput) (Result, error) {
	if err := actor.RequireLearner(); err != nil {
		return Result{}, err
	}
	if !inst.Kind.Valid() {
		return Result{}, apperr.New(apperr.InvalidInput, "unknown instrument kind %q", inst.Kind)
	}

	var result Result
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireInstrument(tx, inst); err != nil {
			return err
		}
		if err := ensureOpen(tx, actor.UserID, inst); err != nil {
			return err
		}
		iq, err := questionsOf(tx, inst)
		if err != nil {
			return err
		}

		scored := make(map[uint]bool, len(iq.questions))
		for _, q := range iq.questions {
			scored[q.ID] = q.Scored
		}
		for _, a := range final {
			if _, ok := scored[a.QuestionID]; !ok {
				return apperr.New(apperr.InvalidInput, "question %d is not part of this %s", a.QuestionID, inst.Kind)
			}
			if err := checkOption(tx, a.QuestionID, a.OptionID); err != nil {
				return err
			}
			if err := upsertAnswer(tx, actor.UserID, inst, a.QuestionID, a.OptionID); err != nil {
				return err
			}
		}

		answers, err := answersFor(tx, actor.UserID, inst, iq.ids())
		if err != nil {
			return err
		}
		chosen, err := chosenOptions(tx, answers)
		if err != nil {
			return err
		}

		// An answer whose option was deleted or moved away counts as missing.
		items := make([]Item, 0, len(answers))
		snapshot := make(map[uint]uint, len(answers))
		for _, a := range answers {
			o, ok := chosen[a.OptionID]
			if !ok || o.QuestionID != a.QuestionID {
				continue
			}
			items = append(items, Item{Scored: scored[a.QuestionID], Correct: o.IsCorrect})
			snapshot[a.QuestionID] = a.OptionID
		}
		if len(items) != len(iq.questions) {
			return apperr.New(apperr.IncompleteAnswers, "answered %d of %d questions", len(items), len(iq.questions))
		}
		result = Score(items)

		raw, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		sub := quiz.Submission{
			UserID:         actor.UserID,
			InstrumentKind: inst.Kind,
			InstrumentID:   inst.ID,
			Score:          result.Score,
			TotalQuestions: result.Total,
			Percentage:     result.Percentage,
			Completed:      true,
			Answers:        datatypes.JSON(raw),
			CreatedAt:      e.now(),
		}
		if err := tx.Create(&sub).Error; err != nil {
			if apperr.IsDuplicate(err) {
				return apperr.New(apperr.AlreadySubmitted, "%s %d already submitted", inst.Kind, inst.ID)
			}
			return apperr.Storage(err)
		}

		if inst.Kind == quiz.KindAssessment {
			return e.completeCourse(tx, actor.UserID, iq.courseID, sub)
		}
		return nil
	})
	if err != nil {
		return Result{}, apperr.Storage(err)
	}

	log.Printf("[SUBMISSION] user %d submitted %s %d: %d/%d (%d%%)",
		actor.UserID, inst.Kind, inst.ID, result.Score, result.Total, result.Percentage)
	return result, nil
}

// Progress reports the state machine position and saved answers.
func (e *Engine) Progress(ctx context.Context, actor access.Actor, inst Instrument) (*Progress, error) {
	if err := actor.RequireLearner(); err != nil {
		return nil, err
	}
	if !inst.Kind.Valid() {
		return nil, apperr.New(apperr.InvalidInput, "unknown instrument kind %q", inst.Kind)
	}

	db := e.db.WithContext(ctx)
	iq, err := questionsOf(db, inst)
	if err != nil {
		return nil, err
	}
	answers, err := answersFor(db, actor.UserID, inst, iq.ids())
	if err != nil {
		return nil, err
	}

	p := &Progress{
		State:    NotStarted,
		Answered: len(answers),
		Total:    len(iq.questions),
		Answers:  make(map[uint]uint, len(answers)),
	}
	for _, a := range answers {
		p.Answers[a.QuestionID] = a.OptionID
	}
	if len(answers) > 0 {
		p.State = InProgress
	}

	sub, err := findSubmission(db, actor.UserID, inst)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		p.State = Submitted
		p.Result = &Result{Score: sub.Score, Total: sub.TotalQuestions, Percentage: sub.Percentage}
	}
	return p, nil
}

// Submission returns the stored submission for the caller.
func (e *Engine) Submission(ctx context.Context, actor access.Actor, inst Instrument) (*quiz.Submission, error) {
	if err := actor.RequireLearner(); err != nil {
		return nil, err
	}
	sub, err := findSubmission(e.db.WithContext(ctx), actor.UserID, inst)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.New(apperr.NotFound, "no submission for %s %d", inst.Kind, inst.ID)
	}
	return sub, nil
}

func (e *Engine) completeCourse(tx *gorm.DB, userID, courseID uint, sub quiz.Submission) error {
	completedAt := e.now()
	expiresAt := now.With(completedAt.AddDate(0, 0, e.validityDays)).EndOfDay()

	enrollment := course.Enrollment{
		UserID:      userID,
		CourseID:    courseID,
		Status:      course.EnrollmentCompleted,
		CompletedAt: &completedAt,
		ExpiresAt:   &expiresAt,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "expires_at", "reminder_sent", "is_deleted", "updated_at"}),
	}).Create(&enrollment).Error
	if err != nil {
		return apperr.Storage(err)
	}

	cert := course.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		SubmissionID:      sub.ID,
		CertificateNumber: uuid.NewString(),
		Score:             sub.Score,
		Percentage:        sub.Percentage,
		IssuedAt:          completedAt,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func instrumentOf(tx *gorm.DB, questionID uint) (Instrument, error) {
	var q quiz.Question
	res := tx.Where("id = ? AND is_deleted = ?", questionID, false).Limit(1).Find(&q)
	if res.Error != nil {
		return Instrument{}, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return Instrument{}, apperr.New(apperr.NotFound, "question %d not found", questionID)
	}

	switch {
	case q.QuizID != nil:
		if err := requireLive(tx, &quiz.Quiz{}, *q.QuizID, "quiz"); err != nil {
			return Instrument{}, err
		}
		return Instrument{Kind: quiz.KindQuiz, ID: *q.QuizID}, nil
	case q.SectionID != nil:
		var s quiz.AssessmentSection
		res := tx.Where("id = ? AND is_deleted = ?", *q.SectionID, false).Limit(1).Find(&s)
		if res.Error != nil {
			return Instrument{}, apperr.Storage(res.Error)
		}
		if res.RowsAffected == 0 {
			return Instrument{}, apperr.New(apperr.NotFound, "section %d not found", *q.SectionID)
		}
		if err := requireLive(tx, &quiz.Assessment{}, s.AssessmentID, "assessment"); err != nil {
			return Instrument{}, err
		}
		return Instrument{Kind: quiz.KindAssessment, ID: s.AssessmentID}, nil
	default:
		return Instrument{}, apperr.New(apperr.NotFound, "question %d is not attached to a quiz or assessment", questionID)
	}
}

func questionsOf(tx *gorm.DB, inst Instrument) (instrumentQuestions, error) {
	var iq instrumentQuestions

	if inst.Kind == quiz.KindQuiz {
		if err := requireLive(tx, &quiz.Quiz{}, inst.ID, "quiz"); err != nil {
			return iq, err
		}
		var ids []uint
		err := tx.Model(&quiz.Question{}).
			Where("quiz_id = ? AND is_deleted = ?", inst.ID, false).
			Order("position asc").
			Pluck("id", &ids).Error
		if err != nil {
			return iq, apperr.Storage(err)
		}
		for _, id := range ids {
			iq.questions = append(iq.questions, scopedQuestion{ID: id, Scored: true})
		}
		return iq, nil
	}

	var a quiz.Assessment
	res := tx.Where("id = ? AND is_deleted = ?", inst.ID, false).Limit(1).Find(&a)
	if res.Error != nil {
		return iq, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return iq, apperr.New(apperr.NotFound, "assessment %d not found", inst.ID)
	}
	iq.courseID = a.CourseID

	var sections []quiz.AssessmentSection
	if err := tx.Where("assessment_id = ? AND is_deleted = ?", a.ID, false).Order("position asc").Find(&sections).Error; err != nil {
		return iq, apperr.Storage(err)
	}
	if len(sections) == 0 {
		return iq, nil
	}
	knowledge := make(map[uint]bool, len(sections))
	sectionIDs := make([]uint, len(sections))
	for i, s := range sections {
		sectionIDs[i] = s.ID
		knowledge[s.ID] = s.Type == quiz.SectionKnowledge
	}

	var questions []quiz.Question
	err := tx.Select("id", "section_id").
		Where("section_id IN ? AND is_deleted = ?", sectionIDs, false).
		Order("position asc").
		Find(&questions).Error
	if err != nil {
		return iq, apperr.Storage(err)
	}
	for _, q := range questions {
		iq.questions = append(iq.questions, scopedQuestion{ID: q.ID, Scored: knowledge[*q.SectionID]})
	}
	return iq, nil
}

// lockInstrument takes a row lock on the quiz or assessment, serialising
// answer writes against its submission. It reports whether the row is live.
func lockInstrument(tx *gorm.DB, inst Instrument) (bool, error) {
	table := "quizzes"
	if inst.Kind == quiz.KindAssessment {
		table = "assessments"
	}
	var row struct{ ID uint }
	res := tx.Table(table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ? AND is_deleted = ? AND deleted_at IS NULL", inst.ID, false).
		Limit(1).
		Find(&row)
	if res.Error != nil {
		return false, apperr.Storage(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func requireInstrument(tx *gorm.DB, inst Instrument) error {
	live, err := lockInstrument(tx, inst)
	if err != nil {
		return err
	}
	if !live {
		return apperr.New(apperr.NotFound, "%s %d not found", strings.ToLower(string(inst.Kind)), inst.ID)
	}
	return nil
}

func requireLive(tx *gorm.DB, model interface{}, id uint, name string) error {
	var count int64
	if err := tx.Model(model).Where("id = ? AND is_deleted = ?", id, false).Count(&count).Error; err != nil {
		return apperr.Storage(err)
	}
	if count == 0 {
		return apperr.New(apperr.NotFound, "%s %d not found", name, id)
	}
	return nil
}

func checkOption(tx *gorm.DB, questionID, optionID uint) error {
	var count int64
	err := tx.Model(&quiz.Option{}).
		Where("id = ? AND question_id = ? AND is_deleted = ?", optionID, questionID, false).
		Count(&count).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if count == 0 {
		return apperr.New(apperr.InvalidInput, "option %d does not belong to question %d", optionID, questionID)
	}
	return nil
}

func ensureOpen(tx *gorm.DB, userID uint, inst Instrument) error {
	var count int64
	err := tx.Model(&quiz.Submission{}).
		Where("user_id = ? AND instrument_kind = ? AND instrument_id = ?", userID, inst.Kind, inst.ID).
		Count(&count).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if count > 0 {
		return apperr.New(apperr.AlreadySubmitted, "%s %d already submitted", inst.Kind, inst.ID)
	}
	return nil
}

// upsertAnswer writes the choice and retags the row with inst. A row still
// tagged with an instrument that was already submitted stays frozen.
func upsertAnswer(tx *gorm.DB, userID uint, inst Instrument, questionID, optionID uint) error {
	var existing quiz.Answer
	res := tx.Where("user_id = ? AND question_id = ?", userID, questionID).Limit(1).Find(&existing)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected > 0 && (existing.InstrumentKind != inst.Kind || existing.InstrumentID != inst.ID) {
		prior := Instrument{Kind: existing.InstrumentKind, ID: existing.InstrumentID}
		if _, err := lockInstrument(tx, prior); err != nil {
			return err
		}
		if err := ensureOpen(tx, userID, prior); err != nil {
			return err
		}
	}

	answer := quiz.Answer{
		UserID:         userID,
		QuestionID:     questionID,
		OptionID:       optionID,
		InstrumentKind: inst.Kind,
		InstrumentID:   inst.ID,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_id", "instrument_kind", "instrument_id", "updated_at"}),
	}).Create(&answer).Error
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// answersFor returns the answers given for inst. Rows tagged with another
// instrument do not count.
func answersFor(tx *gorm.DB, userID uint, inst Instrument, questionIDs []uint) ([]quiz.Answer, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var answers []quiz.Answer
	err := tx.Where("user_id = ? AND instrument_kind = ? AND instrument_id = ? AND question_id IN ?",
		userID, inst.Kind, inst.ID, questionIDs).
		Find(&answers).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return answers, nil
}

// chosenOptions loads the live options picked by answers, keyed by id.
func chosenOptions(tx *gorm.DB, answers []quiz.Answer) (map[uint]quiz.Option, error) {
	out := make(map[uint]quiz.Option, len(answers))
	if len(answers) == 0 {
		return out, nil
	}
	ids := make([]uint, len(answers))
	for i, a := range answers {
		ids[i] = a.OptionID
	}
	var options []quiz.Option
	err := tx.Select("id", "question_id", "is_correct").
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&options).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	for _, o := range options {
		out[o.ID] = o
	}
	return out, nil
}

func findSubmission(tx *gorm.DB, userID uint, inst Instrument) (*quiz.Submission, error) {
	var sub quiz.Submission
	res := tx.Where("user_id = ? AND instrument_kind = ? AND instrument_id = ?", userID, inst.Kind, inst.ID).
		Limit(1).
		Find(&sub)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &sub, nil
}
