package ordering

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"coursehub/database"
	"coursehub/models/course"
	"coursehub/models/quiz"
	"coursehub/services/access"
	"coursehub/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var admin = access.Actor{UserID: 1, Role: access.RoleAdmin}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) Changed(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", database.SqliteDSN(filepath.Join(t.TempDir(), "ordering.db")), gormLogger.Silent)
	require.NoError(t, err)
	return db
}

func newCourse(t *testing.T, db *gorm.DB) course.Course {
	t.Helper()
	c := course.Course{Title: "Go in practice"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func appendModules(t *testing.T, m *Manager[course.Module], courseID uint, n int) []uint {
	t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		mod := course.Module{Title: fmt.Sprintf("module %d", i)}
		require.NoError(t, m.Append(context.Background(), admin, courseID, &mod))
		ids = append(ids, mod.ID)
	}
	return ids
}

func positionsOf(t *testing.T, m *Manager[course.Module], courseID uint) ([]uint, []int) {
	t.Helper()
	mods, err := m.List(context.Background(), courseID)
	require.NoError(t, err)
	ids := make([]uint, len(mods))
	pos := make([]int, len(mods))
	for i, mod := range mods {
		ids[i] = mod.ID
		pos[i] = mod.Position
	}
	return ids, pos
}

func assertDense(t *testing.T, pos []int) {
	t.Helper()
	sorted := append([]int(nil), pos...)
	sort.Ints(sorted)
	for i, p := range sorted {
		require.Equal(t, i+1, p, "positions %v are not 1..N", pos)
	}
}

func TestAppendAssignsNextPosition(t *testing.T) {
	db := newTestDB(t)
	rec := &recorder{}
	m := NewManager(db, ModulesInCourse, rec)
	c := newCourse(t, db)

	appendModules(t, m, c.ID, 3)

	_, pos := positionsOf(t, m, c.ID)
	assert.Equal(t, []int{1, 2, 3}, pos)
	assert.Len(t, rec.paths, 3)
	assert.Equal(t, fmt.Sprintf("/courses/%d", c.ID), rec.paths[0])
}

func TestAppendToMissingScope(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)

	err := m.Append(context.Background(), admin, 999, &course.Module{Title: "orphan"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMutationsRequireAdmin(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	learner := access.Actor{UserID: 2, Role: access.RoleUser}

	assert.ErrorIs(t, m.Append(context.Background(), learner, c.ID, &course.Module{}), apperr.ErrUnauthorized)
	assert.ErrorIs(t, m.Delete(context.Background(), learner, c.ID, 1), apperr.ErrUnauthorized)
	assert.ErrorIs(t, m.Reorder(context.Background(), learner, c.ID, nil), apperr.ErrUnauthorized)
}

func TestDeleteRenumbersSurvivors(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	ids := appendModules(t, m, c.ID, 5)

	// delete position 2 of 5
	require.NoError(t, m.Delete(context.Background(), admin, c.ID, ids[1]))

	got, pos := positionsOf(t, m, c.ID)
	assert.Equal(t, []uint{ids[0], ids[2], ids[3], ids[4]}, got)
	assert.Equal(t, []int{1, 2, 3, 4}, pos)
}

func TestDeleteRepairsExistingGaps(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	ids := appendModules(t, m, c.ID, 4)

	require.NoError(t, db.Model(&course.Module{}).Where("id = ?", ids[3]).Update("position", 9).Error)
	require.NoError(t, m.Delete(context.Background(), admin, c.ID, ids[0]))

	got, pos := positionsOf(t, m, c.ID)
	assert.Equal(t, []uint{ids[1], ids[2], ids[3]}, got)
	assert.Equal(t, []int{1, 2, 3}, pos)
}

func TestDeleteLastMemberLeavesEmptyScope(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	ids := appendModules(t, m, c.ID, 1)

	require.NoError(t, m.Delete(context.Background(), admin, c.ID, ids[0]))

	got, _ := positionsOf(t, m, c.ID)
	assert.Empty(t, got)
}

func TestDeleteNonMember(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	a := newCourse(t, db)
	b := newCourse(t, db)
	idsA := appendModules(t, m, a.ID, 2)
	appendModules(t, m, b.ID, 2)

	err := m.Delete(context.Background(), admin, b.ID, idsA[0])
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = m.Delete(context.Background(), admin, a.ID, 12345)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, pos := positionsOf(t, m, a.ID)
	assert.Equal(t, []int{1, 2}, pos)
}

func TestReorderAppliesPermutation(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	ids := appendModules(t, m, c.ID, 4)

	want := []uint{ids[2], ids[0], ids[3], ids[1]}
	require.NoError(t, m.Reorder(context.Background(), admin, c.ID, want))

	got, pos := positionsOf(t, m, c.ID)
	assert.Equal(t, want, got)
	assert.Equal(t, []int{1, 2, 3, 4}, pos)

	// same order twice is idempotent
	require.NoError(t, m.Reorder(context.Background(), admin, c.ID, want))
	got, _ = positionsOf(t, m, c.ID)
	assert.Equal(t, want, got)
}

func TestReorderRejectsMismatchedSets(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	ids := appendModules(t, m, c.ID, 3)
	other := newCourse(t, db)
	foreign := appendModules(t, m, other.ID, 1)

	cases := map[string][]uint{
		"missing":   {ids[0], ids[1]},
		"extra":     {ids[0], ids[1], ids[2], foreign[0]},
		"duplicate": {ids[0], ids[1], ids[1]},
		"foreign":   {ids[0], ids[1], foreign[0]},
		"empty":     {},
	}
	for name, list := range cases {
		t.Run(name, func(t *testing.T) {
			err := m.Reorder(context.Background(), admin, c.ID, list)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)

			got, pos := positionsOf(t, m, c.ID)
			assert.Equal(t, ids, got)
			assert.Equal(t, []int{1, 2, 3}, pos)
		})
	}
}

func TestReorderSmallScopesAreNoops(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)

	require.NoError(t, m.Reorder(context.Background(), admin, c.ID, nil))

	ids := appendModules(t, m, c.ID, 1)
	require.NoError(t, m.Reorder(context.Background(), admin, c.ID, ids))
	_, pos := positionsOf(t, m, c.ID)
	assert.Equal(t, []int{1}, pos)
}

func TestMoveBetweenScopes(t *testing.T) {
	db := newTestDB(t)
	c := newCourse(t, db)
	modules := NewManager(db, ModulesInCourse, nil)
	lessons := NewManager(db, LessonsInModule, nil)
	mods := appendModules(t, modules, c.ID, 2)

	var src []uint
	for i := 0; i < 3; i++ {
		l := course.Lesson{Title: fmt.Sprintf("lesson %d", i)}
		require.NoError(t, lessons.Append(context.Background(), admin, mods[0], &l))
		src = append(src, l.ID)
	}
	dst := course.Lesson{Title: "already there"}
	require.NoError(t, lessons.Append(context.Background(), admin, mods[1], &dst))

	moved, err := lessons.Move(context.Background(), admin, mods[0], mods[1], src[0])
	require.NoError(t, err)
	assert.Equal(t, mods[1], moved.ModuleID)
	assert.Equal(t, 2, moved.Position)

	left, err := lessons.List(context.Background(), mods[0])
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, src[1], left[0].ID)
	assert.Equal(t, 1, left[0].Position)
	assert.Equal(t, 2, left[1].Position)

	_, err = lessons.Move(context.Background(), admin, mods[1], mods[1], dst.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestQuestionRelationsShareTable(t *testing.T) {
	db := newTestDB(t)
	q := quiz.Quiz{Title: "checkpoint"}
	require.NoError(t, db.Create(&q).Error)
	a := quiz.Assessment{CourseID: 1, Title: "final"}
	require.NoError(t, db.Create(&a).Error)

	sections := NewManager(db, SectionsInAssessment, nil)
	s := quiz.AssessmentSection{Title: "knowledge", Type: quiz.SectionKnowledge}
	require.NoError(t, sections.Append(context.Background(), admin, a.ID, &s))

	inQuiz := NewManager(db, QuestionsInQuiz, nil)
	inSection := NewManager(db, QuestionsInSection, nil)
	for i := 0; i < 2; i++ {
		require.NoError(t, inQuiz.Append(context.Background(), admin, q.ID, &quiz.Question{Prompt: "q"}))
		require.NoError(t, inSection.Append(context.Background(), admin, s.ID, &quiz.Question{Prompt: "s"}))
	}

	qs, err := inQuiz.List(context.Background(), q.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Nil(t, qs[0].SectionID)
	assert.Equal(t, []int{1, 2}, []int{qs[0].Position, qs[1].Position})

	ss, err := inSection.List(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, ss, 2)
	assert.Nil(t, ss[1].QuizID)
	assert.Equal(t, 2, ss[1].Position)
}

func TestConcurrentAppendsStayDense(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- m.Append(context.Background(), admin, c.ID, &course.Module{Title: fmt.Sprintf("m%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	_, pos := positionsOf(t, m, c.ID)
	assert.Len(t, pos, 8)
	assertDense(t, pos)
}

// Random Append/Delete/Reorder sequences always leave dense 1..N positions and
// keep the relative order of untouched members.
func TestRandomOperationSequencesKeepDenseOrdering(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, ModulesInCourse, nil)
	c := newCourse(t, db)
	rng := rand.New(rand.NewSource(42))

	var model []uint
	for step := 0; step < 120; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(model) == 0:
			mod := course.Module{Title: fmt.Sprintf("step %d", step)}
			require.NoError(t, m.Append(context.Background(), admin, c.ID, &mod))
			model = append(model, mod.ID)
		case op == 1:
			k := rng.Intn(len(model))
			require.NoError(t, m.Delete(context.Background(), admin, c.ID, model[k]))
			model = append(model[:k], model[k+1:]...)
		default:
			perm := append([]uint(nil), model...)
			rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
			require.NoError(t, m.Reorder(context.Background(), admin, c.ID, perm))
			model = perm
		}

		ids, pos := positionsOf(t, m, c.ID)
		assertDense(t, pos)
		require.Equal(t, len(model), len(ids))
		if len(model) > 0 {
			require.Equal(t, model, ids, "step %d", step)
		}
	}
}
