package courses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseboard/courseboard/internal/shared"
)

type mockRepository struct {
	courses map[int64]*Course
	byName  map[string]*Course
	nextID  int64

	deletedIDs []int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		courses: make(map[int64]*Course),
		byName:  make(map[string]*Course),
		nextID:  1,
	}
}

func (m *mockRepository) Create(ctx context.Context, name string) (*Course, error) {
	if _, ok := m.byName[name]; ok {
		return nil, ErrCourseNameTaken
	}
	c := &Course{ID: m.nextID, Name: name}
	m.nextID++
	m.courses[c.ID] = c
	m.byName[name] = c
	copied := *c
	return &copied, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context) ([]Course, error) {
	var list []Course
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.courses[id]; ok {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (m *mockRepository) Rename(ctx context.Context, id int64, name string) (*Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if other, ok := m.byName[name]; ok && other.ID != id {
		return nil, ErrCourseNameTaken
	}
	delete(m.byName, c.Name)
	c.Name = name
	m.byName[name] = c
	copied := *c
	return &copied, nil
}

func (m *mockRepository) DeleteCascade(ctx context.Context, id int64) error {
	c, ok := m.courses[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.byName, c.Name)
	delete(m.courses, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func TestCreateCourse(t *testing.T) {
	svc := NewService(newMockRepository())

	course, err := svc.Create(context.Background(), "  Compilers ")
	require.NoError(t, err)
	assert.Equal(t, "Compilers", course.Name, "name should be trimmed")
}

func TestCreateCourseBlankName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), " ")
	assert.ErrorIs(t, err, ErrCourseNameRequired)
}

func TestCreateCourseDuplicateName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), "Compilers")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "Compilers")
	assert.ErrorIs(t, err, ErrCourseNameTaken)
}

func TestRenameCourse(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), "Compilers")
	require.NoError(t, err)

	renamed, err := svc.Rename(context.Background(), created.ID, "Advanced Compilers")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Compilers", renamed.Name)
	assert.Equal(t, created.ID, renamed.ID)
}

func TestRenameCourseCollision(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), "Compilers")
	require.NoError(t, err)
	other, err := svc.Create(context.Background(), "Databases")
	require.NoError(t, err)

	_, err = svc.Rename(context.Background(), other.ID, "Compilers")
	assert.ErrorIs(t, err, ErrCourseNameTaken)
}

func TestRenameMissingCourse(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Rename(context.Background(), 42, "Anything")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteCourse(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), "Compilers")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, []int64{created.ID}, repo.deletedIDs)

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
