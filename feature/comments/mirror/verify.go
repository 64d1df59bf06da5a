package mirror

// VerifyReport summarizes the structural health of the loaded mirror.
type VerifyReport struct {
	// Comments is the number of comment rows.
	Comments int `json:"comments"`
	// Media is the number of media IDs with at least one comment.
	Media int `json:"media"`
	// EmptyMedia is the number of media confirmed to have zero comments.
	EmptyMedia int `json:"empty_media"`
	// MaxID is the highest comment ID seen.
	MaxID int64 `json:"max_id"`
	// MissingIDs is how many IDs in [1, MaxID] are neither stored nor
	// confirmed absent, i.e. the remaining gap-fill backlog.
	MissingIDs int `json:"missing_ids"`
	// AbsentIDs is the number of comment IDs confirmed to not exist
	// upstream.
	AbsentIDs int `json:"absent_ids"`
	// DuplicateIDs lists comment IDs that appeared on more than one row.
	// The loader keeps the last occurrence; a rewrite commit removes the
	// duplicates from disk.
	DuplicateIDs []int64 `json:"duplicate_ids"`
}

// Verify inspects the loaded index and reports duplicates, the gap backlog,
// and aggregate counts. Structural corruption (wrong column count, bad keys)
// is caught earlier, at load time, because it is fatal.
func (s *Store) Verify() VerifyReport {
	return VerifyReport{
		Comments:     len(s.index),
		Media:        len(s.MediaWithComments()),
		EmptyMedia:   len(s.emptyMedia),
		MaxID:        s.MaxID(),
		MissingIDs:   len(s.MissingIDs()),
		AbsentIDs:    len(s.absent),
		DuplicateIDs: append([]int64(nil), s.duplicates...),
	}
}
