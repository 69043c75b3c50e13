package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"devregistry/db"
	"devregistry/mirror"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service    *DeveloperService
	store      *db.SQLiteStore
	mirrorPath string
	recorder   *countingRecorder
	logs       *test.Hook
}

type countingRecorder struct {
	mu       sync.Mutex
	created  int
	failures int
}

func (r *countingRecorder) IncrementDevelopersCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) IncrementMirrorAppendFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := db.OpenSQLite(filepath.Join(dir, "developers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger, hook := test.NewNullLogger()
	recorder := &countingRecorder{}
	mirrorPath := filepath.Join(dir, "developers.json")

	return &fixture{
		service:    NewDeveloperService(store, mirror.New(mirrorPath), WithRecorder(recorder), WithLogger(logger)),
		store:      store,
		mirrorPath: mirrorPath,
		recorder:   recorder,
		logs:       hook,
	}
}

func (f *fixture) mirrorEntries(t *testing.T) []db.Developer {
	t.Helper()
	data, err := os.ReadFile(f.mirrorPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var entries []db.Developer
	require.NoError(t, jsoniter.Unmarshal(data, &entries))
	return entries
}

func ana() db.Developer {
	return db.Developer{Nome: "Ana", Email: "ana@x.com", DateOfBirth: "1990-01-01"}
}

func TestCreate_shouldAssignPrefixedUniqueIds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		developer, err := f.service.Create(ctx, ana())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(developer.Id, db.DeveloperIDPrefix))
		assert.Greater(t, len(developer.Id), len(db.DeveloperIDPrefix))
		assert.False(t, seen[developer.Id])
		seen[developer.Id] = true
	}
}

func TestCreate_shouldIgnoreCallerId(t *testing.T) {
	f := newFixture(t)

	input := ana()
	input.Id = "dev_mine"
	developer, err := f.service.Create(context.Background(), input)

	require.NoError(t, err)
	assert.NotEqual(t, "dev_mine", developer.Id)
}

func TestCreate_nSequentialCreatesLandInBothSinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 7
	var created []db.Developer
	for i := 0; i < n; i++ {
		developer, err := f.service.Create(ctx, ana())
		require.NoError(t, err)
		created = append(created, developer)
	}

	all, err := f.service.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
	assert.Equal(t, created, f.mirrorEntries(t))
	assert.Equal(t, n, f.recorder.created)
	assert.Zero(t, f.recorder.failures)
}

func TestCreate_concurrentCreatesKeepAllRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(ctx, ana())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := f.service.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, f.mirrorEntries(t), 2)
}

type failingStore struct {
	db.Store
	err error
}

func (s failingStore) SaveDeveloper(context.Context, db.Developer) error {
	return s.err
}

func TestCreate_whenStoreFails_shouldNotTouchMirror(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "developers.json")
	boom := errors.New("insert failed")
	logger, _ := test.NewNullLogger()
	svc := NewDeveloperService(failingStore{err: boom}, mirror.New(mirrorPath), WithLogger(logger))

	_, err := svc.Create(context.Background(), ana())

	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(mirrorPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

type brokenMirror struct{}

func (brokenMirror) Append(any) error { return errors.New("disk full") }

func TestCreate_whenMirrorFails_shouldStillReturnSavedRow(t *testing.T) {
	f := newFixture(t)
	f.service.mirror = brokenMirror{}

	developer, err := f.service.Create(context.Background(), ana())
	require.NoError(t, err)

	stored, err := f.service.FindOne(context.Background(), developer.Id)
	require.NoError(t, err)
	assert.Equal(t, developer, stored)
	assert.Equal(t, 1, f.recorder.failures)

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, developer.Id, entry.Data["developer_id"])
}

func TestFindAll_whenEmpty_shouldReturnEmptySlice(t *testing.T) {
	f := newFixture(t)

	all, err := f.service.FindAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestUnknownId_shouldReportNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nome := "Nobody"

	_, err := f.service.FindOne(ctx, "dev_unknown")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = f.service.Update(ctx, "dev_unknown", db.DeveloperPatch{Nome: &nome})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = f.service.Remove(ctx, "dev_unknown")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdate_shouldChangeOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, ana())
	require.NoError(t, err)

	email := "ana.maria@x.com"
	updated, err := f.service.Update(ctx, created.Id, db.DeveloperPatch{Email: &email})
	require.NoError(t, err)

	expected := created
	expected.Email = email
	assert.Equal(t, expected, updated)

	stored, err := f.service.FindOne(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, expected, stored)

	// the mirror keeps the creation payload
	assert.Equal(t, []db.Developer{created}, f.mirrorEntries(t))
}

func TestUpdate_withEmptyPatch_shouldReturnExistingRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, ana())
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, created.Id, db.DeveloperPatch{})
	require.NoError(t, err)
	assert.Equal(t, created, updated)
}

func TestRemove_shouldDeleteFromStoreOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, ana())
	require.NoError(t, err)

	removed, err := f.service.Remove(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created, removed)

	_, err = f.service.FindOne(ctx, created.Id)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Len(t, f.mirrorEntries(t), 1)
}
