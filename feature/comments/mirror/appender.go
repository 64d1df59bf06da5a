package mirror

import (
	"bufio"
	"fmt"
	"os"

	"comment-mirror/feature/comments/models"
)

// Appender writes newly observed rows to the end of the mirror, flushing
// after every row so a crash loses at most the row being written. It is
// only valid for passes that never revisit existing comments (backfill and
// gap-fill); incremental sync must use CommitRewrite instead.
type Appender struct {
	store *Store
	f     *os.File
	w     *bufio.Writer
}

// NewAppender opens the mirror for appending, writing the header first if
// the file is new or empty.
func (s *Store) NewAppender() (*Appender, error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror for append: %w", err)
	}

	a := &Appender{store: s, f: f, w: bufio.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat mirror: %w", err)
	}
	if info.Size() == 0 {
		if err := a.writeLine(models.Header()); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return a, nil
}

// Append writes one comment row. It returns false without writing when the
// ID is already in the index, preserving the one-row-per-ID invariant even
// if two strategies overlap.
func (a *Appender) Append(c models.Comment) (bool, error) {
	if a.store.Has(c.ID) {
		return false, nil
	}
	if err := a.writeLine(models.EncodeRow(c)); err != nil {
		return false, err
	}
	a.store.Merge(c, models.ChangeNew)
	return true, nil
}

// AppendEmptyMarker writes the sentinel row for a media ID confirmed to
// have zero comments.
func (a *Appender) AppendEmptyMarker(mediaID int64) error {
	if err := a.writeLine(models.EncodeEmptyMarker(mediaID)); err != nil {
		return err
	}
	a.store.MarkEmpty(mediaID)
	return nil
}

// AppendAbsentMarker writes the sentinel row for a comment ID upstream
// confirmed does not exist, so later gap-fills skip it.
func (a *Appender) AppendAbsentMarker(commentID int64) error {
	if a.store.Has(commentID) || a.store.IsAbsent(commentID) {
		return nil
	}
	if err := a.writeLine(models.EncodeAbsentMarker(commentID)); err != nil {
		return err
	}
	a.store.MarkAbsent(commentID)
	return nil
}

func (a *Appender) writeLine(line string) error {
	if _, err := a.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to mirror: %w", err)
	}
	if err := a.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush mirror: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (a *Appender) Close() error {
	if err := a.w.Flush(); err != nil {
		_ = a.f.Close()
		return err
	}
	return a.f.Close()
}
