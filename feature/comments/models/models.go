package models

// Sentinel values used in the tab-delimited mirror.
const (
	// Null is written for optional fields that upstream omitted, so every
	// row keeps the full column count.
	Null = "NULL"

	// EmptyMarker is the content of the reserved row recording that a media
	// ID was checked and confirmed to have zero comments.
	EmptyMarker = "EMPTY_MARKER"

	// AbsentMarker is the content of the reserved row recording that a
	// comment ID was point-fetched and upstream confirmed it does not
	// exist. Gap-fill skips confirmed-absent IDs on later runs.
	AbsentMarker = "ABSENT_MARKER"

	// MarkerNew is the changes value for a comment observed for the first time.
	MarkerNew = "NEW"
)

// Columns is the fixed schema of the mirror file, in storage order.
// Every row, including empty markers, carries exactly this many columns.
var Columns = []string{
	"comment_id",
	"user_id",
	"media_id",
	"parent_comment_id",
	"content",
	"timestamp",
	"deleted",
	"tag",
	"upvotes",
	"downvotes",
	"user_vote_type",
	"username",
	"profile_picture_url",
	"is_mod",
	"is_admin",
	"reply_count",
	"total_votes",
	"changes",
}

// Raw is one comment as decoded from an upstream API response, before
// normalization. Field types vary between payloads, so it stays untyped
// until Normalize coerces it.
type Raw map[string]any

// Comment is one canonical comment row of the mirror.
type Comment struct {
	// ID is the unique comment identifier, the mirror's primary key.
	ID int64
	// UserID is the author's identifier.
	UserID int64
	// MediaID is the media entry the comment belongs to.
	MediaID int64
	// ParentID is the parent comment ID for replies, or the Null sentinel.
	ParentID string
	// Content is the comment body with tabs and newlines collapsed to spaces.
	Content string
	// Timestamp is the upstream creation time, stored verbatim.
	Timestamp string
	// Deleted marks comments the upstream reports as removed. Rows are never
	// physically dropped from the mirror.
	Deleted bool
	// Tag is the optional upstream classification, or the Null sentinel.
	Tag string
	// Upvotes and Downvotes are the raw vote counters.
	Upvotes   int
	Downvotes int
	// UserVoteType is the authenticated viewer's vote on the comment.
	UserVoteType string
	// Username is the author's display name.
	Username string
	// ProfilePictureURL is the author's avatar, or the Null sentinel.
	ProfilePictureURL string
	// IsMod and IsAdmin are the author's role flags.
	IsMod   bool
	IsAdmin bool
	// ReplyCount is the number of direct replies upstream reports.
	ReplyCount int
	// TotalVotes is always recomputed as Upvotes-Downvotes, never trusted
	// from upstream.
	TotalVotes int
	// Changes records how this row last changed: empty, MarkerNew, or a
	// comma-joined list of changed column names.
	Changes string
}

// ChangeKind classifies a refetched comment against the stored mirror.
type ChangeKind int

const (
	// ChangeUnchanged means the stored row is identical and must be kept verbatim.
	ChangeUnchanged ChangeKind = iota
	// ChangeNew means the comment was not in the mirror before.
	ChangeNew
	// ChangeUpdated means at least one field differs from the stored row.
	ChangeUpdated
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}
