package session

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/example/verbadiem/internal/database"
	"github.com/example/verbadiem/internal/migration"
	"github.com/example/verbadiem/internal/store"
	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietOptions = Options{Logger: log.New(io.Discard, "", 0)}

func openSQLBackend(t *testing.T) *store.SQLBackend {
	t.Helper()
	db, err := database.Connect("sqlite", filepath.Join(t.TempDir(), "sessions.db"), "")
	require.NoError(t, err)
	return store.NewSQLBackend(db)
}

func TestRegistry(t *testing.T) {
	backend := store.NewMemoryBackend()
	var configured []int64
	r := NewRegistry(backend, quietOptions, func(id int64, opts *Options) {
		configured = append(configured, id)
	})
	defer r.Close()

	ctx := context.Background()
	a, err := r.Get(ctx, 1)
	require.NoError(t, err)
	again, err := r.Get(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, a, again)
	b, err := r.Get(ctx, 2)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, []int64{1, 2}, configured)

	require.NoError(t, a.Start())
	_, err = a.CreateCollection("Verbs")
	require.NoError(t, err)

	profiles, err := r.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, profiles)

	_, ok := r.Loaded(3)
	assert.False(t, ok)
}

func TestRegistryLoadSurvivesCancelledRequest(t *testing.T) {
	backend := openSQLBackend(t)
	defer backend.Close()

	seeded := models.DefaultProgress()
	seeded.XP = 400
	seeded.LearnedWords["Ephemeral"] = models.DailyWord{Word: "Ephemeral", Translation: "Efêmero"}
	require.NoError(t, migration.Save(context.Background(), backend.Profile(42), seeded))
	require.NoError(t, backend.Profile(42).Set(context.Background(), store.KeyHasVisited, "true"))

	r := NewRegistry(backend, quietOptions, nil)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o, err := r.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 400, o.Progress().XP)
	assert.Equal(t, ScreenHome, o.Screen())

	_, err = o.CreateCollection("Verbs")
	require.NoError(t, err)

	stored, err := migration.Load(context.Background(), backend.Profile(42), nil)
	require.NoError(t, err)
	assert.Equal(t, 400, stored.XP)
	assert.Contains(t, stored.LearnedWords, "Ephemeral")
	assert.Len(t, stored.Collections, 1)
}

func TestRegistryDoesNotCacheFailedLoad(t *testing.T) {
	backend := openSQLBackend(t)
	require.NoError(t, backend.Close())

	r := NewRegistry(backend, quietOptions, nil)
	defer r.Close()

	_, err := r.Get(context.Background(), 42)
	assert.Error(t, err)
	_, ok := r.Loaded(42)
	assert.False(t, ok)

	err = r.Visit(context.Background(), 42, func(*Orchestrator) { t.Fatal("visited an unreadable profile") })
	assert.Error(t, err)
}

func TestRegistryVisit(t *testing.T) {
	backend := store.NewMemoryBackend()
	r := NewRegistry(backend, quietOptions, nil)
	defer r.Close()
	ctx := context.Background()

	var visited *Orchestrator
	require.NoError(t, r.Visit(ctx, 5, func(o *Orchestrator) {
		visited = o
		assert.Equal(t, ScreenWelcome, o.Screen())
	}))
	_, ok := r.Loaded(5)
	assert.False(t, ok, "a visit does not keep the profile open")

	open, err := r.Get(ctx, 5)
	require.NoError(t, err)
	assert.NotSame(t, visited, open)

	require.NoError(t, r.Visit(ctx, 5, func(o *Orchestrator) {
		assert.Same(t, open, o)
	}))
}
