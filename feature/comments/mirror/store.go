package mirror

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"comment-mirror/core/utils"
	"comment-mirror/feature/comments/models"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

var (
	// ErrLocked reports that another run holds the store's advisory lock.
	ErrLocked = errors.New("mirror is locked by another run")

	// ErrCorrupt reports a malformed store file. Corruption is fatal for a
	// run: continuing would silently drop data on the next commit.
	ErrCorrupt = errors.New("mirror file is corrupt")
)

// Store owns the on-disk mirror for the duration of one run. It loads the
// file into an index keyed by comment ID and tracks which media IDs have
// been scraped, including media confirmed empty via sentinel rows.
//
// The index is only ever mutated by the orchestrating goroutine; workers
// hand their results back over channels and never touch the store.
type Store struct {
	path string
	log  *zap.Logger
	lock *flock.Flock

	index      map[int64]models.Comment
	mediaRows  map[int64]int
	emptyMedia map[int64]struct{}
	absent     map[int64]struct{}
	duplicates []int64
}

// Open acquires an exclusive advisory lock next to path and loads the
// existing mirror, if any. Close must be called to release the lock.
func Open(path string, log *zap.Logger) (*Store, error) {
	s := &Store{
		path:       path,
		log:        log,
		lock:       flock.New(path + ".lock"),
		index:      make(map[int64]models.Comment),
		mediaRows:  make(map[int64]int),
		emptyMedia: make(map[int64]struct{}),
		absent:     make(map[int64]struct{}),
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire mirror lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	if err := s.load(); err != nil {
		_ = s.lock.Unlock()
		return nil, err
	}
	return s, nil
}

// Close releases the advisory lock.
func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Path returns the mirror file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open mirror: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Comment bodies can be long; the default token limit is too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			if line != models.Header() {
				return fmt.Errorf("%w: unexpected header at line 1", ErrCorrupt)
			}
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(models.Columns) {
			return fmt.Errorf("%w: line %d has %d columns, expected %d",
				ErrCorrupt, lineNo, len(fields), len(models.Columns))
		}

		// Sentinel rows record media confirmed empty or comment IDs
		// confirmed absent; they carry no comment.
		if fields[4] == models.EmptyMarker {
			s.emptyMedia[utils.ToInt64(fields[2])] = struct{}{}
			continue
		}
		if fields[4] == models.AbsentMarker {
			s.absent[utils.ToInt64(fields[0])] = struct{}{}
			continue
		}

		c, err := models.DecodeRow(fields)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrCorrupt, lineNo, err)
		}
		if prev, seen := s.index[c.ID]; seen {
			// Historic append-mode runs could double-write; keep the last
			// occurrence and surface the duplicate through Verify. The
			// media attribution follows the kept row.
			s.duplicates = append(s.duplicates, c.ID)
			if prev.MediaID != c.MediaID {
				s.decMediaRow(prev.MediaID)
				s.mediaRows[c.MediaID]++
			}
		} else {
			s.mediaRows[c.MediaID]++
		}
		s.index[c.ID] = c
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read mirror: %w", err)
	}

	s.log.Debug("Mirror loaded",
		zap.Int("comments", len(s.index)),
		zap.Int("media", len(s.mediaRows)),
		zap.Int("empty_media", len(s.emptyMedia)),
	)
	return nil
}

// Len returns the number of comment rows in the index.
func (s *Store) Len() int {
	return len(s.index)
}

// Get returns the stored comment for id.
func (s *Store) Get(id int64) (models.Comment, bool) {
	c, ok := s.index[id]
	return c, ok
}

// Has reports whether id is already in the index.
func (s *Store) Has(id int64) bool {
	_, ok := s.index[id]
	return ok
}

// MaxID returns the highest known comment ID, or 0 when the mirror is empty.
func (s *Store) MaxID() int64 {
	var max int64
	for id := range s.index {
		if id > max {
			max = id
		}
	}
	return max
}

// MissingIDs returns every ID in [1, MaxID] that has neither a row nor a
// confirmed-absent marker, ascending. This is the gap-fill work list; it
// shrinks to empty once every gap is either filled or confirmed absent.
func (s *Store) MissingIDs() []int64 {
	max := s.MaxID()
	var missing []int64
	for id := int64(1); id <= max; id++ {
		if s.Has(id) {
			continue
		}
		if _, ok := s.absent[id]; ok {
			continue
		}
		missing = append(missing, id)
	}
	return missing
}

// IsAbsent reports whether a comment ID was confirmed to not exist upstream.
func (s *Store) IsAbsent(id int64) bool {
	_, ok := s.absent[id]
	return ok
}

// IsScraped reports whether a media ID has been fully scraped at least once,
// either because it has comment rows or because it was confirmed empty.
func (s *Store) IsScraped(mediaID int64) bool {
	if _, ok := s.emptyMedia[mediaID]; ok {
		return true
	}
	return s.mediaRows[mediaID] > 0
}

// MediaWithComments returns every media ID with at least one comment row,
// ascending. This is the incremental re-scan target list.
func (s *Store) MediaWithComments() []int64 {
	ids := make([]int64, 0, len(s.mediaRows))
	for id := range s.mediaRows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Comments returns every stored comment ordered by ID.
func (s *Store) Comments() []models.Comment {
	out := make([]models.Comment, 0, len(s.index))
	for _, c := range s.index {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CommentsForMedia returns the stored comments under one media ID, by ID.
func (s *Store) CommentsForMedia(mediaID int64) []models.Comment {
	var out []models.Comment
	for _, c := range s.index {
		if c.MediaID == mediaID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Merge applies a classified comment to the in-memory index. Unchanged
// comments are a no-op so a no-op refetch never rewrites the stored row.
func (s *Store) Merge(c models.Comment, kind models.ChangeKind) {
	switch kind {
	case models.ChangeUnchanged:
		return
	case models.ChangeNew:
		if _, seen := s.index[c.ID]; !seen {
			s.mediaRows[c.MediaID]++
		}
		s.index[c.ID] = c
	case models.ChangeUpdated:
		if prev, seen := s.index[c.ID]; seen && prev.MediaID != c.MediaID {
			s.decMediaRow(prev.MediaID)
			s.mediaRows[c.MediaID]++
		}
		s.index[c.ID] = c
	}
}

func (s *Store) decMediaRow(mediaID int64) {
	s.mediaRows[mediaID]--
	if s.mediaRows[mediaID] <= 0 {
		delete(s.mediaRows, mediaID)
	}
}

// MarkEmpty records that a media ID was checked and has zero comments.
func (s *Store) MarkEmpty(mediaID int64) {
	s.emptyMedia[mediaID] = struct{}{}
}

// MarkAbsent records that a comment ID was confirmed to not exist upstream.
func (s *Store) MarkAbsent(id int64) {
	if s.Has(id) {
		return
	}
	s.absent[id] = struct{}{}
}

// CommitRewrite persists the entire index in one pass. It writes to a
// temporary file in the same directory and renames it over the mirror, so
// an interrupted run can never leave a truncated store behind.
func (s *Store) CommitRewrite() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".mirror-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	write := func(line string) error {
		_, werr := w.WriteString(line + "\n")
		return werr
	}

	err = write(models.Header())

	// Sentinel rows first, for media still confirmed empty. A media that
	// has since gained comments drops its marker here.
	if err == nil {
		empty := make([]int64, 0, len(s.emptyMedia))
		for id := range s.emptyMedia {
			if s.mediaRows[id] == 0 {
				empty = append(empty, id)
			}
		}
		sort.Slice(empty, func(i, j int) bool { return empty[i] < empty[j] })
		for _, id := range empty {
			if err = write(models.EncodeEmptyMarker(id)); err != nil {
				break
			}
		}
	}

	// Then confirmed-absent comment IDs. An ID that somehow gained a row
	// since drops its marker the same way.
	if err == nil {
		absent := make([]int64, 0, len(s.absent))
		for id := range s.absent {
			if !s.Has(id) {
				absent = append(absent, id)
			}
		}
		sort.Slice(absent, func(i, j int) bool { return absent[i] < absent[j] })
		for _, id := range absent {
			if err = write(models.EncodeAbsentMarker(id)); err != nil {
				break
			}
		}
	}

	if err == nil {
		for _, c := range s.Comments() {
			if err = write(models.EncodeRow(c)); err != nil {
				break
			}
		}
	}

	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write mirror: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod mirror: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace mirror: %w", err)
	}

	s.log.Info("Mirror committed",
		zap.Int("comments", len(s.index)),
		zap.Int("empty_media", len(s.emptyMedia)),
	)
	return nil
}
