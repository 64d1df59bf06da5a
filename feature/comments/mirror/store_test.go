package mirror

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"comment-mirror/feature/comments/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testComment(id, mediaID int64, content string) models.Comment {
	return models.Comment{
		ID:                id,
		UserID:            7,
		MediaID:           mediaID,
		ParentID:          models.Null,
		Content:           content,
		Timestamp:         "2024-03-01T10:30:00Z",
		Tag:               models.Null,
		UserVoteType:      models.Null,
		Username:          "alice",
		ProfilePictureURL: models.Null,
	}
}

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(filepath.Join(dir, "mirror.tsv"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_NewStore(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	assert.Zero(t, s.Len())
	assert.Zero(t, s.MaxID())
	assert.Empty(t, s.MissingIDs())
}

func TestOpen_LockIsExclusive(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	_, err := Open(s.Path(), zap.NewNop())
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAppend_PersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.tsv")

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	a, err := s.NewAppender()
	require.NoError(t, err)

	wrote, err := a.Append(testComment(1, 101, "first"))
	require.NoError(t, err)
	assert.True(t, wrote)

	// Duplicate IDs are refused in append mode.
	wrote, err = a.Append(testComment(1, 101, "first again"))
	require.NoError(t, err)
	assert.False(t, wrote)

	require.NoError(t, a.AppendEmptyMarker(102))
	require.NoError(t, a.Close())
	require.NoError(t, s.Close())

	reloaded, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer reloaded.Close()

	assert.Equal(t, 1, reloaded.Len())
	assert.True(t, reloaded.IsScraped(101))
	assert.True(t, reloaded.IsScraped(102))
	assert.False(t, reloaded.IsScraped(103))

	got, ok := reloaded.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "first", got.Content)
}

func TestCommitRewrite_Deterministic(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	s.Merge(testComment(3, 101, "c"), models.ChangeNew)
	s.Merge(testComment(1, 101, "a"), models.ChangeNew)
	s.Merge(testComment(2, 105, "b"), models.ChangeNew)
	s.MarkEmpty(102)

	require.NoError(t, s.CommitRewrite())
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.CommitRewrite())
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	// Same index, byte-identical file: rows sorted by ID, markers first.
	assert.Equal(t, first, second)

	lines := strings.Split(strings.TrimRight(string(first), "\n"), "\n")
	assert.Equal(t, models.Header(), lines[0])
	assert.Contains(t, lines[1], models.EmptyMarker)
	assert.Len(t, lines, 5)
}

func TestCommitRewrite_DropsMarkerOnceMediaHasComments(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	s.MarkEmpty(102)
	require.NoError(t, s.CommitRewrite())

	// A later gap-fill finds a comment under the previously empty media.
	s.Merge(testComment(9, 102, "late arrival"), models.ChangeNew)
	require.NoError(t, s.CommitRewrite())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), models.EmptyMarker)
	assert.True(t, s.IsScraped(102))
}

func TestMerge_UnchangedIsNoOp(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	stored := testComment(1, 101, "original")
	stored.Changes = models.MarkerNew
	s.Merge(stored, models.ChangeNew)

	tampered := testComment(1, 101, "would overwrite")
	s.Merge(tampered, models.ChangeUnchanged)

	got, _ := s.Get(1)
	assert.Equal(t, "original", got.Content)
}

func TestMissingIDs(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	s.Merge(testComment(1, 101, "a"), models.ChangeNew)
	s.Merge(testComment(4, 101, "d"), models.ChangeNew)

	assert.Equal(t, []int64{2, 3}, s.MissingIDs())
}

func TestLoad_CorruptColumnCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.tsv")
	content := models.Header() + "\n" + "1\t2\t3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Open(path, zap.NewNop())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoad_CorruptHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.tsv")
	require.NoError(t, os.WriteFile(path, []byte("not\ta\theader\n"), 0644))

	_, err := Open(path, zap.NewNop())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoad_DuplicatesKeepLastAndReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.tsv")

	older := testComment(5, 101, "older")
	newer := testComment(5, 101, "newer")
	content := models.Header() + "\n" +
		models.EncodeRow(older) + "\n" +
		models.EncodeRow(newer) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	got, _ := s.Get(5)
	assert.Equal(t, "newer", got.Content)

	report := s.Verify()
	assert.Equal(t, []int64{5}, report.DuplicateIDs)
	assert.Equal(t, 1, report.Comments)

	// A rewrite commit deduplicates the file.
	require.NoError(t, s.CommitRewrite())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\t101\t"))
}

func TestLoad_DuplicateAcrossMediaFollowsKeptRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.tsv")

	// The same comment ID written under two media IDs; the loader keeps
	// the last row, so media 101 must not be counted as scraped anymore.
	content := models.Header() + "\n" +
		models.EncodeRow(testComment(5, 101, "misfiled")) + "\n" +
		models.EncodeRow(testComment(5, 202, "moved")) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.IsScraped(101))
	assert.True(t, s.IsScraped(202))
	assert.Equal(t, []int64{202}, s.MediaWithComments())
}

func TestAbsentMarker_PersistsAndShrinksBacklog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.tsv")

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	a, err := s.NewAppender()
	require.NoError(t, err)
	_, err = a.Append(testComment(1, 101, "a"))
	require.NoError(t, err)
	_, err = a.Append(testComment(4, 101, "d"))
	require.NoError(t, err)
	require.NoError(t, a.AppendAbsentMarker(3))
	// Known and already-marked IDs are no-ops.
	require.NoError(t, a.AppendAbsentMarker(1))
	require.NoError(t, a.AppendAbsentMarker(3))
	require.NoError(t, a.Close())

	assert.True(t, s.IsAbsent(3))
	assert.False(t, s.IsAbsent(1))
	assert.Equal(t, []int64{2}, s.MissingIDs())
	assert.Equal(t, 1, s.Verify().AbsentIDs)

	// One marker row on disk, surviving a rewrite and a reload.
	require.NoError(t, s.CommitRewrite())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), models.AbsentMarker))

	require.NoError(t, s.Close())
	reloaded, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer reloaded.Close()
	assert.True(t, reloaded.IsAbsent(3))
	assert.Equal(t, []int64{2}, reloaded.MissingIDs())
}

func TestVerify(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	s.Merge(testComment(1, 101, "a"), models.ChangeNew)
	s.Merge(testComment(3, 101, "c"), models.ChangeNew)
	s.MarkEmpty(102)

	report := s.Verify()
	assert.Equal(t, 2, report.Comments)
	assert.Equal(t, 1, report.Media)
	assert.Equal(t, 1, report.EmptyMedia)
	assert.Equal(t, int64(3), report.MaxID)
	assert.Equal(t, 1, report.MissingIDs)
	assert.Empty(t, report.DuplicateIDs)
}
