package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schoolbot/internal/catalog"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	s, _ := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s, _ := createTestStore(t)

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestOpen_Idempotent(t *testing.T) {
	s, path := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, catalog.Defaults()))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	v, err := again.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	snap, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Subjects, 10)
}

func TestLoad_EmptyDatabase(t *testing.T) {
	s, _ := createTestStore(t)

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, catalog.ErrNoSnapshot)

	_, err = s.Revision(context.Background())
	assert.ErrorIs(t, err, catalog.ErrNoSnapshot)
}

func TestSaveLoad_PreservesOrderAndEmptyDays(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	in := catalog.Snapshot{
		Subjects: []catalog.Subject{
			{Key: "phys", Name: "Физика", Homework: "§12"},
			{Key: "math", Name: "Математика"},
		},
		Schedule: map[catalog.Day][]string{
			catalog.Monday:  {"math", "phys", "math"},
			catalog.Sunday:  {},
			catalog.Tuesday: {"phys"},
		},
	}
	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.Subjects, out.Subjects, "subject list order kept")
	assert.Equal(t, []string{"math", "phys", "math"}, out.Schedule[catalog.Monday])
	assert.Equal(t, []string{"phys"}, out.Schedule[catalog.Tuesday])

	sun, ok := out.Schedule[catalog.Sunday]
	require.True(t, ok, "empty day is still present")
	assert.Empty(t, sun)

	_, ok = out.Schedule[catalog.Wednesday]
	assert.False(t, ok)
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, catalog.Defaults()))
	require.NoError(t, s.Save(ctx, catalog.Empty()))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Subjects)
	assert.Empty(t, out.Schedule)

	rev, err := s.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
}

func TestSave_DanglingKeyRollsBack(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, catalog.Defaults()))

	bad := catalog.Snapshot{
		Subjects: []catalog.Subject{{Key: "math", Name: "Математика"}},
		Schedule: map[catalog.Day][]string{catalog.Monday: {"ghost"}},
	}
	require.Error(t, s.Save(ctx, bad))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Subjects, 10, "failed save leaves previous snapshot")

	rev, err := s.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
}

func TestStore_BacksCatalog(t *testing.T) {
	s, path := createTestStore(t)
	ctx := context.Background()

	c := catalog.New(s)
	require.NoError(t, c.Load(ctx), "first load seeds defaults")
	require.NoError(t, c.SetHomework(ctx, "math", "стр. 30"))
	require.NoError(t, c.DeleteDay(ctx, catalog.Saturday))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	c2 := catalog.New(reopened, catalog.WithSnapshot(catalog.Empty()))
	require.NoError(t, c2.Load(ctx))

	math, ok := c2.Subject("math")
	require.True(t, ok)
	assert.Equal(t, "стр. 30", math.Homework)
	assert.False(t, c2.HasDay(catalog.Saturday))
	assert.True(t, c2.HasDay(catalog.Monday))
}
