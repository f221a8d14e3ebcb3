package storage

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/mapty/internal/workout"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func backends(t *testing.T) map[string]KeyValueStore {
	t.Helper()
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	sqliteStore, err := OpenSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })
	return map[string]KeyValueStore{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestKeyValueStore_SetGetRemove(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get("workout")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("workout", []byte(`[1]`)))
			require.NoError(t, kv.Set("workout", []byte(`[1,2]`)))

			v, ok, err := kv.Get("workout")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, string(v))

			require.NoError(t, kv.Remove("workout"))
			require.NoError(t, kv.Remove("workout"))
			_, ok, err = kv.Get("workout")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, fs.Set("../escape", []byte("x")))
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLiteStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("workout", []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteStore(dir)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get("workout")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestWorkoutRepository_RoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewWorkoutRepository(kv, testLogger())
			in := []workout.Workout{
				workout.NewRunning(5, 30, workout.Coords{51.5, -0.12}, 150),
				workout.NewCycling(20, 60, workout.Coords{48.85, 2.35}, 400),
				workout.NewRunning(10, 55, workout.Coords{40.7, -74}, 168),
			}
			require.NoError(t, repo.Save(in))

			out := repo.Load()
			require.Len(t, out, len(in))
			for i := range in {
				assert.Equal(t, in[i].ID, out[i].ID)
				assert.Equal(t, in[i].Kind, out[i].Kind)
				assert.Equal(t, in[i].Distance, out[i].Distance)
				assert.Equal(t, in[i].Duration, out[i].Duration)
				assert.Equal(t, in[i].Coordinates, out[i].Coordinates)
				assert.Equal(t, in[i].Description, out[i].Description)
			}
			assert.Equal(t, 6.0, out[0].Running.Pace)
			assert.Equal(t, 20.0, out[1].Cycling.Speed)
		})
	}
}

func TestWorkoutRepository_SaveOverwrites(t *testing.T) {
	repo := NewWorkoutRepository(NewMemoryStore(), testLogger())
	require.NoError(t, repo.Save([]workout.Workout{workout.NewRunning(1, 5, workout.Coords{}, 100)}))
	require.NoError(t, repo.Save(nil))
	assert.Empty(t, repo.Load())
}

func TestWorkoutRepository_LoadEmptyOrMalformed(t *testing.T) {
	kv := NewMemoryStore()
	repo := NewWorkoutRepository(kv, testLogger())
	assert.Empty(t, repo.Load())

	require.NoError(t, kv.Set(WorkoutsKey, []byte(`{not json`)))
	assert.Empty(t, repo.Load())

	require.NoError(t, kv.Set(WorkoutsKey, []byte(`[{"id":"1","kind":"rowing"}]`)))
	assert.Empty(t, repo.Load())

	require.NoError(t, kv.Set(WorkoutsKey, []byte(`null`)))
	assert.Empty(t, repo.Load())
}

func TestWorkoutRepository_ClearRemovesKey(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	repo := NewWorkoutRepository(fs, testLogger())

	require.NoError(t, repo.Save([]workout.Workout{workout.NewCycling(3, 10, workout.Coords{}, 0)}))
	_, err = os.Stat(filepath.Join(dir, WorkoutsKey+".json"))
	require.NoError(t, err)

	require.NoError(t, repo.Clear())
	_, err = os.Stat(filepath.Join(dir, WorkoutsKey+".json"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, repo.Load())
}
