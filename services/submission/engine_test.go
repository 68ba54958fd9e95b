package submission

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"coursehub/database"
	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/access"
	"coursehub/services/apperr"
	"coursehub/services/ordering"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	learner = access.Actor{UserID: 7, Role: access.RoleUser}
	admin   = access.Actor{UserID: 1, Role: access.RoleAdmin}
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", database.SqliteDSN(filepath.Join(t.TempDir(), "submission.db")), gormLogger.Silent)
	require.NoError(t, err)
	return db
}

func newEngine(db *gorm.DB) *Engine {
	return NewEngine(db, Options{EnrollmentValidityDays: 30, Now: func() time.Time { return fixedNow }})
}

// seededQuestion has one correct and one wrong option.
type seededQuestion struct {
	ID      uint
	Correct uint
	Wrong   uint
}

func seedQuestion(t *testing.T, db *gorm.DB, q quiz.Question) seededQuestion {
	t.Helper()
	require.NoError(t, db.Create(&q).Error)
	right := quiz.Option{QuestionID: q.ID, Text: "right", IsCorrect: true, Position: 1}
	wrong := quiz.Option{QuestionID: q.ID, Text: "wrong", Position: 2}
	require.NoError(t, db.Create(&right).Error)
	require.NoError(t, db.Create(&wrong).Error)
	return seededQuestion{ID: q.ID, Correct: right.ID, Wrong: wrong.ID}
}

func seedQuiz(t *testing.T, db *gorm.DB, n int) (quiz.Quiz, []seededQuestion) {
	t.Helper()
	qz := quiz.Quiz{LessonID: 1, Title: "checkpoint"}
	require.NoError(t, db.Create(&qz).Error)
	var qs []seededQuestion
	for i := 0; i < n; i++ {
		id := qz.ID
		qs = append(qs, seedQuestion(t, db, quiz.Question{QuizID: &id, Prompt: "q", Position: i + 1}))
	}
	return qz, qs
}

type seededAssessment struct {
	Assessment quiz.Assessment
	Course     course.Course
	Knowledge  []seededQuestion
	Attitude   []seededQuestion
}

func seedAssessment(t *testing.T, db *gorm.DB, knowledge, attitude int) seededAssessment {
	t.Helper()
	c := course.Course{Title: "Leadership", IsPublished: true}
	require.NoError(t, db.Create(&c).Error)
	a := quiz.Assessment{CourseID: c.ID, Title: "final"}
	require.NoError(t, db.Create(&a).Error)

	out := seededAssessment{Assessment: a, Course: c}
	add := func(kind string, n, pos int) []seededQuestion {
		if n == 0 {
			return nil
		}
		s := quiz.AssessmentSection{AssessmentID: a.ID, Type: kind, Title: kind, Position: pos}
		require.NoError(t, db.Create(&s).Error)
		var qs []seededQuestion
		for i := 0; i < n; i++ {
			id := s.ID
			qs = append(qs, seedQuestion(t, db, quiz.Question{SectionID: &id, Prompt: kind, Position: i + 1}))
		}
		return qs
	}
	out.Knowledge = add(quiz.SectionKnowledge, knowledge, 1)
	out.Attitude = add(quiz.SectionAttitude, attitude, 2)
	return out
}

func quizRef(q quiz.Quiz) Instrument { return Instrument{Kind: quiz.KindQuiz, ID: q.ID} }

func TestQuizScoring(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 4)
	ctx := context.Background()

	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Correct))
	require.NoError(t, e.RecordAnswer(ctx, learner, qs[1].ID, qs[1].Correct))
	require.NoError(t, e.RecordAnswer(ctx, learner, qs[2].ID, qs[2].Wrong))

	res, err := e.Submit(ctx, learner, quizRef(qz), []AnswerInput{{QuestionID: qs[3].ID, OptionID: qs[3].Correct}})
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 3, Total: 4, Percentage: 75}, res)

	sub, err := e.Submission(ctx, learner, quizRef(qz))
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Score)
	assert.Equal(t, 4, sub.TotalQuestions)
	assert.Equal(t, 75, sub.Percentage)
	assert.True(t, sub.Completed)
}

func TestAssessmentScoresKnowledgeOnly(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	sa := seedAssessment(t, db, 2, 3)
	ctx := context.Background()

	require.NoError(t, e.RecordAnswer(ctx, learner, sa.Knowledge[0].ID, sa.Knowledge[0].Correct))
	require.NoError(t, e.RecordAnswer(ctx, learner, sa.Knowledge[1].ID, sa.Knowledge[1].Wrong))
	for _, q := range sa.Attitude {
		require.NoError(t, e.RecordAnswer(ctx, learner, q.ID, q.Correct))
	}

	res, err := e.Submit(ctx, learner, Instrument{Kind: quiz.KindAssessment, ID: sa.Assessment.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 1, Total: 2, Percentage: 50}, res)

	var answers int64
	require.NoError(t, db.Model(&quiz.Answer{}).Where("user_id = ?", learner.UserID).Count(&answers).Error)
	assert.EqualValues(t, 5, answers)

	var enrollment course.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", learner.UserID, sa.Course.ID).First(&enrollment).Error)
	assert.Equal(t, course.EnrollmentCompleted, enrollment.Status)
	require.NotNil(t, enrollment.ExpiresAt)
	assert.Equal(t, "2026-04-09", enrollment.ExpiresAt.UTC().Format("2006-01-02"))

	var cert course.Certificate
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", learner.UserID, sa.Course.ID).First(&cert).Error)
	assert.NotEmpty(t, cert.CertificateNumber)
	assert.Equal(t, 50, cert.Percentage)
}

func TestAssessmentSubmitUpgradesExistingEnrollment(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	sa := seedAssessment(t, db, 1, 0)
	ctx := context.Background()
	require.NoError(t, db.Create(&course.Enrollment{UserID: learner.UserID, CourseID: sa.Course.ID, Status: course.EnrollmentEnrolled}).Error)

	_, err := e.Submit(ctx, learner, Instrument{Kind: quiz.KindAssessment, ID: sa.Assessment.ID},
		[]AnswerInput{{QuestionID: sa.Knowledge[0].ID, OptionID: sa.Knowledge[0].Correct}})
	require.NoError(t, err)

	var rows []course.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", learner.UserID, sa.Course.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, course.EnrollmentCompleted, rows[0].Status)
	assert.NotNil(t, rows[0].CompletedAt)
}

func TestAssessmentWithoutKnowledgeSection(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	sa := seedAssessment(t, db, 0, 2)
	ctx := context.Background()

	final := []AnswerInput{
		{QuestionID: sa.Attitude[0].ID, OptionID: sa.Attitude[0].Correct},
		{QuestionID: sa.Attitude[1].ID, OptionID: sa.Attitude[1].Wrong},
	}
	res, err := e.Submit(ctx, learner, Instrument{Kind: quiz.KindAssessment, ID: sa.Assessment.ID}, final)
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 0, Total: 0, Percentage: 0}, res)
}

func TestIncompleteSubmitIsRejected(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 5)
	ctx := context.Background()

	for _, q := range qs[:4] {
		require.NoError(t, e.RecordAnswer(ctx, learner, q.ID, q.Correct))
	}

	_, err := e.Submit(ctx, learner, quizRef(qz), nil)
	assert.ErrorIs(t, err, apperr.ErrIncompleteAnswers)

	var subs int64
	require.NoError(t, db.Model(&quiz.Submission{}).Count(&subs).Error)
	assert.Zero(t, subs)

	// answers are still mutable
	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong))
	p, err := e.Progress(ctx, learner, quizRef(qz))
	require.NoError(t, err)
	assert.Equal(t, InProgress, p.State)
	assert.Equal(t, 4, p.Answered)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, qs[0].Wrong, p.Answers[qs[0].ID])
}

func TestIncompleteSubmitRollsBackFinalAnswers(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 3)
	ctx := context.Background()

	_, err := e.Submit(ctx, learner, quizRef(qz), []AnswerInput{{QuestionID: qs[0].ID, OptionID: qs[0].Correct}})
	assert.ErrorIs(t, err, apperr.ErrIncompleteAnswers)

	var answers int64
	require.NoError(t, db.Model(&quiz.Answer{}).Count(&answers).Error)
	assert.Zero(t, answers)
}

func TestAnswersAreImmutableAfterSubmit(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 2)
	ctx := context.Background()

	for _, q := range qs {
		require.NoError(t, e.RecordAnswer(ctx, learner, q.ID, q.Correct))
	}
	_, err := e.Submit(ctx, learner, quizRef(qz), nil)
	require.NoError(t, err)

	err = e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong)
	assert.ErrorIs(t, err, apperr.ErrAlreadySubmitted)

	var a quiz.Answer
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", learner.UserID, qs[0].ID).First(&a).Error)
	assert.Equal(t, qs[0].Correct, a.OptionID)

	_, err = e.Submit(ctx, learner, quizRef(qz), nil)
	assert.ErrorIs(t, err, apperr.ErrAlreadySubmitted)

	p, err := e.Progress(ctx, learner, quizRef(qz))
	require.NoError(t, err)
	assert.Equal(t, Submitted, p.State)
	require.NotNil(t, p.Result)
	assert.Equal(t, 100, p.Result.Percentage)
}

func TestRecordAnswerIsAnUpsert(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	_, qs := seedQuiz(t, db, 1)
	ctx := context.Background()

	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong))
	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong))
	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Correct))

	var answers []quiz.Answer
	require.NoError(t, db.Where("user_id = ?", learner.UserID).Find(&answers).Error)
	require.Len(t, answers, 1)
	assert.Equal(t, qs[0].Correct, answers[0].OptionID)
	assert.Equal(t, quiz.KindQuiz, answers[0].InstrumentKind)
}

func TestRecordAnswerRejectsForeignOption(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	_, qs := seedQuiz(t, db, 2)
	ctx := context.Background()

	err := e.RecordAnswer(ctx, learner, qs[0].ID, qs[1].Correct)
	assert.ErrorIs(t, err, apperr.ErrInvalidOption)

	err = e.RecordAnswer(ctx, learner, 9999, qs[1].Correct)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = e.RecordAnswer(ctx, access.Actor{}, qs[0].ID, qs[0].Correct)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestSubmitRejectsQuestionFromAnotherInstrument(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, _ := seedQuiz(t, db, 1)
	_, other := seedQuiz(t, db, 1)

	_, err := e.Submit(context.Background(), learner, quizRef(qz),
		[]AnswerInput{{QuestionID: other[0].ID, OptionID: other[0].Correct}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSubmitUnknownInstrument(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)

	_, err := e.Submit(context.Background(), learner, Instrument{Kind: quiz.KindQuiz, ID: 404}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.Submit(context.Background(), learner, Instrument{Kind: "EXAM", ID: 1}, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestConcurrentSubmitCreatesOneSubmission(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 3)
	ctx := context.Background()
	for _, q := range qs {
		require.NoError(t, e.RecordAnswer(ctx, learner, q.ID, q.Correct))
	}

	const racers = 4
	var wg sync.WaitGroup
	errs := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = e.Submit(ctx, learner, quizRef(qz), nil)
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrAlreadySubmitted)
	}
	assert.Equal(t, 1, ok)

	var subs int64
	require.NoError(t, db.Model(&quiz.Submission{}).Count(&subs).Error)
	assert.EqualValues(t, 1, subs)
}

func TestProgressNotStarted(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, _ := seedQuiz(t, db, 2)

	p, err := e.Progress(context.Background(), learner, quizRef(qz))
	require.NoError(t, err)
	assert.Equal(t, NotStarted, p.State)
	assert.Equal(t, 0, p.Answered)
	assert.Equal(t, 2, p.Total)

	_, err = e.Submission(context.Background(), learner, quizRef(qz))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnsweredQuestionCannotMove(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 1)
	other, _ := seedQuiz(t, db, 1)
	ctx := context.Background()

	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong))

	questions := ordering.NewManager(db, ordering.QuestionsInQuiz, nil)
	_, err := questions.Move(ctx, admin, qz.ID, other.ID, qs[0].ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	var q quiz.Question
	require.NoError(t, db.First(&q, qs[0].ID).Error)
	require.NotNil(t, q.QuizID)
	assert.Equal(t, qz.ID, *q.QuizID)
}

func TestAnswerStaysFrozenWhenQuestionChangesInstrument(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 1)
	other, _ := seedQuiz(t, db, 0)
	ctx := context.Background()

	_, err := e.Submit(ctx, learner, quizRef(qz), []AnswerInput{{QuestionID: qs[0].ID, OptionID: qs[0].Wrong}})
	require.NoError(t, err)

	// rows written before answered questions were pinned
	require.NoError(t, db.Model(&quiz.Question{}).Where("id = ?", qs[0].ID).Update("quiz_id", other.ID).Error)

	err = e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Correct)
	assert.ErrorIs(t, err, apperr.ErrAlreadySubmitted)

	var a quiz.Answer
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", learner.UserID, qs[0].ID).First(&a).Error)
	assert.Equal(t, qs[0].Wrong, a.OptionID)
	assert.Equal(t, qz.ID, a.InstrumentID)

	_, err = e.Submit(ctx, learner, quizRef(other), nil)
	assert.ErrorIs(t, err, apperr.ErrIncompleteAnswers)
}

func TestOpenAnswerFollowsQuestionToNewInstrument(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 1)
	other, _ := seedQuiz(t, db, 0)
	ctx := context.Background()

	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong))
	require.NoError(t, db.Model(&quiz.Question{}).Where("id = ?", qs[0].ID).Update("quiz_id", other.ID).Error)

	// the old tag does not count for the new quiz until answered there
	_, err := e.Submit(ctx, learner, quizRef(other), nil)
	assert.ErrorIs(t, err, apperr.ErrIncompleteAnswers)

	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Correct))
	var a quiz.Answer
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", learner.UserID, qs[0].ID).First(&a).Error)
	assert.Equal(t, other.ID, a.InstrumentID)

	res, err := e.Submit(ctx, learner, quizRef(other), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 1, Total: 1, Percentage: 100}, res)

	p, err := e.Progress(ctx, learner, quizRef(qz))
	require.NoError(t, err)
	assert.Equal(t, NotStarted, p.State)
}

func TestDeletedOptionCountsAsUnanswered(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 1)
	ctx := context.Background()

	require.NoError(t, e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong))
	options := ordering.NewManager(db, ordering.OptionsInQuestion, nil)
	require.NoError(t, options.Delete(ctx, admin, qs[0].ID, qs[0].Wrong))

	_, err := e.Submit(ctx, learner, quizRef(qz), nil)
	assert.ErrorIs(t, err, apperr.ErrIncompleteAnswers)

	res, err := e.Submit(ctx, learner, quizRef(qz), []AnswerInput{{QuestionID: qs[0].ID, OptionID: qs[0].Correct}})
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 1, Total: 1, Percentage: 100}, res)
}

func TestRecordAnswerOnDeletedQuiz(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 1)
	require.NoError(t, db.Model(&qz).Update("is_deleted", true).Error)

	err := e.RecordAnswer(context.Background(), learner, qs[0].ID, qs[0].Correct)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnswerRacingSubmitNeverChangesSnapshot(t *testing.T) {
	db := newTestDB(t)
	e := newEngine(db)
	qz, qs := seedQuiz(t, db, 2)
	ctx := context.Background()
	for _, q := range qs {
		require.NoError(t, e.RecordAnswer(ctx, learner, q.ID, q.Correct))
	}

	var wg sync.WaitGroup
	var answerErr, submitErr error
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		answerErr = e.RecordAnswer(ctx, learner, qs[0].ID, qs[0].Wrong)
	}()
	go func() {
		defer wg.Done()
		<-start
		_, submitErr = e.Submit(ctx, learner, quizRef(qz), nil)
	}()
	close(start)
	wg.Wait()

	require.NoError(t, submitErr)
	if answerErr != nil {
		assert.ErrorIs(t, answerErr, apperr.ErrAlreadySubmitted)
	}

	sub, err := e.Submission(ctx, learner, quizRef(qz))
	require.NoError(t, err)
	var a quiz.Answer
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", learner.UserID, qs[0].ID).First(&a).Error)
	assert.JSONEq(t, fmt.Sprintf(`{"%d":%d,"%d":%d}`, qs[0].ID, a.OptionID, qs[1].ID, qs[1].Correct), string(sub.Answers))
}
