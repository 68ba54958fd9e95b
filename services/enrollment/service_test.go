package enrollment

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"coursehub/database"
	"coursehub/models/course"
	"coursehub/services/access"
	"coursehub/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var learner = access.Actor{UserID: 11, Role: access.RoleUser}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", database.SqliteDSN(filepath.Join(t.TempDir(), "enrollment.db")), gormLogger.Silent)
	require.NoError(t, err)
	return db
}

func publishedCourse(t *testing.T, db *gorm.DB, title string) course.Course {
	t.Helper()
	c := course.Course{Title: title, IsPublished: true, Status: course.StatusActive}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func ptr(t time.Time) *time.Time { return &t }

func TestExpiredEnrollmentIsFlippedOnRead(t *testing.T) {
	db := newTestDB(t)
	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(db, func() time.Time { return clock })

	stale := publishedCourse(t, db, "stale")
	fresh := publishedCourse(t, db, "fresh")
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: learner.UserID, CourseID: stale.ID, Status: course.EnrollmentCompleted,
		ExpiresAt: ptr(clock.Add(-time.Hour)),
	}).Error)
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: learner.UserID, CourseID: fresh.ID, Status: course.EnrollmentCompleted,
		ExpiresAt: ptr(clock.Add(24 * time.Hour)),
	}).Error)

	list, err := svc.ListActive(context.Background(), learner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].CourseID)
	require.NotNil(t, list[0].Course)
	assert.Equal(t, "fresh", list[0].Course.Title)

	var e course.Enrollment
	require.NoError(t, db.Where("course_id = ?", stale.ID).First(&e).Error)
	assert.Equal(t, course.EnrollmentExpired, e.Status)

	// still excluded on later reads
	list, err = svc.ListActive(context.Background(), learner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExpiryIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(db, func() time.Time { return clock })
	c := publishedCourse(t, db, "go")
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: learner.UserID, CourseID: c.ID, Status: course.EnrollmentCompleted,
		ExpiresAt: ptr(clock.Add(-time.Minute)),
	}).Error)

	_, err := svc.ListActive(context.Background(), learner)
	require.NoError(t, err)

	// moving the clock back does not revive it
	clock = clock.Add(-48 * time.Hour)
	list, err := svc.ListActive(context.Background(), learner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEnrollIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	c := publishedCourse(t, db, "go")

	first, err := svc.Enroll(context.Background(), learner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentEnrolled, first.Status)

	second, err := svc.Enroll(context.Background(), learner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := svc.ListActive(context.Background(), learner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	draft := course.Course{Title: "draft"}
	require.NoError(t, db.Create(&draft).Error)

	_, err := svc.Enroll(context.Background(), learner, draft.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Enroll(context.Background(), access.Actor{}, draft.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestDueForReminder(t *testing.T) {
	db := newTestDB(t)
	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(db, func() time.Time { return clock })

	soon := publishedCourse(t, db, "soon")
	later := publishedCourse(t, db, "later")
	reminded := publishedCourse(t, db, "reminded")
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: 1, CourseID: soon.ID, Status: course.EnrollmentCompleted, ExpiresAt: ptr(clock.AddDate(0, 0, 3)),
	}).Error)
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: 1, CourseID: later.ID, Status: course.EnrollmentCompleted, ExpiresAt: ptr(clock.AddDate(0, 0, 30)),
	}).Error)
	require.NoError(t, db.Create(&course.Enrollment{
		UserID: 1, CourseID: reminded.ID, Status: course.EnrollmentCompleted, ExpiresAt: ptr(clock.AddDate(0, 0, 2)),
		ReminderSent: true,
	}).Error)

	due, err := svc.DueForReminder(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].CourseID)

	require.NoError(t, svc.MarkReminded(context.Background(), due[0].ID))
	due, err = svc.DueForReminder(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestListForCourseIsAdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	c := publishedCourse(t, db, "go")
	_, err := svc.Enroll(context.Background(), learner, c.ID)
	require.NoError(t, err)

	_, err = svc.ListForCourse(context.Background(), learner, c.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	list, err := svc.ListForCourse(context.Background(), access.Actor{UserID: 1, Role: access.RoleAdmin}, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
