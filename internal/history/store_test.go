package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syy321818/blogbuilder/internal/site"
)

func sampleReport(runID string, started time.Time) *site.RunReport {
	return &site.RunReport{
		RunID:         runID,
		StartedAt:     started,
		Duration:      450 * time.Millisecond,
		Outcome:       site.OutcomeSuccess,
		UnitsParsed:   3,
		PagesPlanned:  7,
		PagesRendered: 7,
	}
}

func TestStoreAppendAndGet(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	report := sampleReport("run-1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.Append(context.Background(), report))

	got, err := store.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, report.Outcome, got.Outcome)
	assert.Equal(t, report.PagesRendered, got.PagesRendered)
}

func TestStoreGetUnknownRun(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "nope")
	assert.ErrorContains(t, err, "not found")
}

func TestStoreDuplicateRunID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	report := sampleReport("run-dup", time.Now().UTC())
	require.NoError(t, store.Append(context.Background(), report))
	assert.Error(t, store.Append(context.Background(), report))
}

func TestStoreRecentNewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		r := sampleReport(id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Append(context.Background(), r))
	}

	recent, err := store.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-c", recent[0].RunID)
	assert.Equal(t, "run-b", recent[1].RunID)
	assert.Equal(t, site.OutcomeSuccess, recent[0].Outcome)
	assert.Equal(t, 450*time.Millisecond, recent[0].Duration)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), sampleReport("run-x", time.Now().UTC())))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	recent, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "run-x", recent[0].RunID)
}
