package sync_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/comments/models"
	commentsync "comment-mirror/feature/comments/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFetcher serves scripted upstream state. It is safe for concurrent
// use because all maps are populated before the run starts.
type fakeFetcher struct {
	media        map[int64][]models.Raw
	mediaErr     map[int64]error
	mediaPartial map[int64]bool
	comments     map[int64]models.Raw
	user         map[int64][]models.Raw
}

func (f *fakeFetcher) FetchMediaComments(ctx context.Context, mediaID int64) (api.FetchResult, error) {
	if err := f.mediaErr[mediaID]; err != nil {
		return api.FetchResult{}, err
	}
	return api.FetchResult{Comments: f.media[mediaID], Partial: f.mediaPartial[mediaID]}, nil
}

func (f *fakeFetcher) FetchUserComments(ctx context.Context, userID int64) (api.FetchResult, error) {
	return api.FetchResult{Comments: f.user[userID]}, nil
}

func (f *fakeFetcher) FetchComment(ctx context.Context, commentID int64) (models.Raw, error) {
	raw, ok := f.comments[commentID]
	if !ok {
		return nil, api.ErrNotFound
	}
	return raw, nil
}

func raw(commentID, mediaID int64, content string) models.Raw {
	return models.Raw{
		"comment_id": float64(commentID),
		"user_id":    float64(7),
		"media_id":   float64(mediaID),
		"content":    content,
		"timestamp":  "2024-03-01T10:30:00Z",
		"upvotes":    float64(1),
		"downvotes":  float64(0),
	}
}

func newOrchestrator(t *testing.T, f *fakeFetcher) (*commentsync.Orchestrator, *mirror.Store) {
	t.Helper()
	store, err := mirror.Open(filepath.Join(t.TempDir(), "mirror.tsv"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return commentsync.New(commentsync.Config{BatchSize: 50}, f, store, zap.NewNop()), store
}

func TestBackfill_EndToEnd(t *testing.T) {
	f := &fakeFetcher{
		media: map[int64][]models.Raw{
			101: {raw(1, 101, "a"), raw(2, 101, "b"), raw(3, 101, "c")},
			102: {}, // 404 on page 1 upstream: zero comments
		},
	}
	o, store := newOrchestrator(t, f)

	report, err := o.Backfill(context.Background(), []int64{101, 102})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Targets)
	assert.Equal(t, 3, report.New)
	assert.Equal(t, 1, report.Empty)
	assert.Zero(t, report.Failed)

	assert.Equal(t, 3, store.Len())
	assert.True(t, store.IsScraped(101))
	assert.True(t, store.IsScraped(102))

	got, ok := store.Get(2)
	require.True(t, ok)
	assert.Equal(t, models.MarkerNew, got.Changes)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), models.EmptyMarker)
}

func TestBackfill_SkipsScrapedTargets(t *testing.T) {
	f := &fakeFetcher{media: map[int64][]models.Raw{101: {raw(1, 101, "a")}}}
	o, _ := newOrchestrator(t, f)

	_, err := o.Backfill(context.Background(), []int64{101})
	require.NoError(t, err)

	report, err := o.Backfill(context.Background(), []int64{101})
	require.NoError(t, err)
	assert.Zero(t, report.Targets)
}

func TestBackfill_FailureIsolation(t *testing.T) {
	f := &fakeFetcher{
		media:    map[int64][]models.Raw{102: {raw(10, 102, "survives")}},
		mediaErr: map[int64]error{101: fmt.Errorf("connection reset")},
	}
	o, store := newOrchestrator(t, f)

	report, err := o.Backfill(context.Background(), []int64{101, 102})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.New)
	assert.True(t, store.Has(10))
	// The failed target stays unscraped so the next run retries it.
	assert.False(t, store.IsScraped(101))
}

func TestBackfill_PartialTargetNotMarkedEmpty(t *testing.T) {
	f := &fakeFetcher{
		media:        map[int64][]models.Raw{101: {}},
		mediaPartial: map[int64]bool{101: true},
	}
	o, store := newOrchestrator(t, f)

	report, err := o.Backfill(context.Background(), []int64{101})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, report.Empty)
	assert.False(t, store.IsScraped(101))
}

func TestGapFill(t *testing.T) {
	f := &fakeFetcher{
		media: map[int64][]models.Raw{101: {raw(1, 101, "a"), raw(4, 101, "d")}},
		comments: map[int64]models.Raw{
			2: raw(2, 101, "recovered"),
			// 3 is absent upstream
		},
	}
	o, store := newOrchestrator(t, f)

	_, err := o.Backfill(context.Background(), []int64{101})
	require.NoError(t, err)

	report, err := o.GapFill(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Targets)
	assert.Equal(t, 1, report.New)
	assert.Equal(t, 1, report.Absent)
	assert.True(t, store.Has(2))
	assert.True(t, store.IsAbsent(3))

	// The absent marker persists, so the next gap-fill has nothing left:
	// every ID in [1, max] is either stored or confirmed absent.
	report, err = o.GapFill(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Targets)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), models.AbsentMarker)

	// A reload sees the marker too.
	require.NoError(t, store.Close())
	reloaded, err := mirror.Open(store.Path(), zap.NewNop())
	require.NoError(t, err)
	defer reloaded.Close()
	assert.True(t, reloaded.IsAbsent(3))
	assert.Empty(t, reloaded.MissingIDs())
}

func TestGapFill_EmptyMirrorIsFatal(t *testing.T) {
	o, _ := newOrchestrator(t, &fakeFetcher{})
	_, err := o.GapFill(context.Background())
	assert.Error(t, err)
}

func TestIncremental_Idempotent(t *testing.T) {
	f := &fakeFetcher{
		media: map[int64][]models.Raw{101: {raw(1, 101, "a"), raw(2, 101, "b")}},
	}
	o, store := newOrchestrator(t, f)

	first, err := o.Incremental(context.Background(), []int64{101}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.New)

	afterFirst, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	second, err := o.Incremental(context.Background(), []int64{101}, nil)
	require.NoError(t, err)
	assert.Zero(t, second.New)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 2, second.Unchanged)

	afterSecond, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestIncremental_DetectsBodyEdit(t *testing.T) {
	f := &fakeFetcher{
		media: map[int64][]models.Raw{101: {raw(1, 101, "A")}},
	}
	o, store := newOrchestrator(t, f)

	_, err := o.Incremental(context.Background(), []int64{101}, nil)
	require.NoError(t, err)

	f.media[101] = []models.Raw{raw(1, 101, "B")}
	report, err := o.Incremental(context.Background(), []int64{101}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	got, _ := store.Get(1)
	assert.Equal(t, "B", got.Content)
	assert.Contains(t, got.Changes, "content")
}

func TestIncremental_RescanAllWhenNoActiveSet(t *testing.T) {
	f := &fakeFetcher{
		media: map[int64][]models.Raw{
			101: {raw(1, 101, "a")},
			105: {raw(9, 105, "z")},
		},
	}
	o, _ := newOrchestrator(t, f)

	_, err := o.Backfill(context.Background(), []int64{101, 105})
	require.NoError(t, err)

	report, err := o.Incremental(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Targets)
	assert.Equal(t, 2, report.Unchanged)
}

func TestIncremental_DeletionHints(t *testing.T) {
	f := &fakeFetcher{
		media: map[int64][]models.Raw{101: {raw(1, 101, "a")}},
	}
	o, store := newOrchestrator(t, f)

	_, err := o.Incremental(context.Background(), []int64{101}, nil)
	require.NoError(t, err)

	report, err := o.Incremental(context.Background(), []int64{101}, []int64{1, 999})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	got, _ := store.Get(1)
	assert.True(t, got.Deleted)
	assert.Contains(t, got.Changes, "deleted")
	// The row survives; deletion never removes it from the mirror.
	assert.Equal(t, 1, store.Len())
}

func TestSyncWindow_FiltersByTimestamp(t *testing.T) {
	inside := raw(1, 101, "inside")
	outside := raw(2, 101, "outside")
	outside["timestamp"] = "2020-01-01T00:00:00Z"

	f := &fakeFetcher{media: map[int64][]models.Raw{101: {inside, outside}}}
	o, store := newOrchestrator(t, f)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	report, err := o.SyncWindow(context.Background(), 101, from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, report.New)
	assert.True(t, store.Has(1))
	assert.False(t, store.Has(2))
}

func TestSyncAuthor_WritesSeparateMirror(t *testing.T) {
	f := &fakeFetcher{
		user: map[int64][]models.Raw{7: {raw(1, 101, "mine"), raw(5, 103, "also mine")}},
	}
	o, store := newOrchestrator(t, f)

	outPath := filepath.Join(t.TempDir(), "user_7.tsv")
	report, err := o.SyncAuthor(context.Background(), 7, outPath)
	require.NoError(t, err)

	assert.Equal(t, 2, report.New)
	// The shared mirror is untouched.
	assert.Zero(t, store.Len())

	out, err := mirror.Open(outPath, zap.NewNop())
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, 2, out.Len())
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[101, "102", 103]`), 0644))

	ids, err := commentsync.LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102, 103}, ids)

	_, err = commentsync.LoadCatalog(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
