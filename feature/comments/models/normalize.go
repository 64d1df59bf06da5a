package models

import (
	"strconv"
	"strings"
	"time"

	"comment-mirror/core/utils"
)

// Normalize maps a raw upstream comment into the canonical row shape.
// It is a pure mapping: absent strings become the Null sentinel, counters
// default to zero, boolean flags are coerced from whatever shape upstream
// used, and the vote total is recomputed from the raw counters.
func Normalize(raw Raw) Comment {
	up := utils.ToInt(raw["upvotes"])
	down := utils.ToInt(raw["downvotes"])

	return Comment{
		ID:                utils.ToInt64(raw["comment_id"]),
		UserID:            utils.ToInt64(raw["user_id"]),
		MediaID:           utils.ToInt64(raw["media_id"]),
		ParentID:          nullable(raw["parent_comment_id"]),
		Content:           CleanText(utils.ToString(raw["content"])),
		Timestamp:         utils.ToString(raw["timestamp"]),
		Deleted:           utils.ToBool(raw["deleted"]),
		Tag:               nullable(raw["tag"]),
		Upvotes:           up,
		Downvotes:         down,
		UserVoteType:      nullable(raw["user_vote_type"]),
		Username:          nullable(raw["username"]),
		ProfilePictureURL: nullable(raw["profile_picture_url"]),
		IsMod:             utils.ToBool(raw["is_mod"]),
		IsAdmin:           utils.ToBool(raw["is_admin"]),
		ReplyCount:        utils.ToInt(raw["reply_count"]),
		// Upstream sends total_votes too, but it is derived state and
		// occasionally stale there, so it is always recomputed here.
		TotalVotes: up - down,
	}
}

// CleanText replaces embedded tab and newline characters with spaces.
// The mirror is tab-delimited with one line per row, so these bytes must
// never reach the file.
func CleanText(s string) string {
	r := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
	return r.Replace(s)
}

// nullable renders an optional upstream value, substituting the Null
// sentinel when the field is absent or empty.
func nullable(v any) string {
	if v == nil {
		return Null
	}
	s := utils.ToString(v)
	if s == "" {
		return Null
	}
	return CleanText(s)
}

// timestampLayouts are the formats the upstream has been observed to use.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp interprets a stored timestamp value. The second return is
// false when the value is empty or in no known format; callers filtering by
// time window should treat such rows as outside the window.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == Null {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Plain unix seconds
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), true
	}
	return time.Time{}, false
}
