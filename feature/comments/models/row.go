package models

import (
	"fmt"
	"strconv"
	"strings"

	"comment-mirror/core/utils"
)

// Header returns the tab-joined header line of the mirror file.
func Header() string {
	return strings.Join(Columns, "\t")
}

// EncodeRow renders a comment as one tab-delimited line (without newline).
// Booleans are written as 0/1 so the representation is canonical regardless
// of what shape upstream delivered them in.
func EncodeRow(c Comment) string {
	fields := []string{
		strconv.FormatInt(c.ID, 10),
		strconv.FormatInt(c.UserID, 10),
		strconv.FormatInt(c.MediaID, 10),
		c.ParentID,
		c.Content,
		c.Timestamp,
		bool01(c.Deleted),
		c.Tag,
		strconv.Itoa(c.Upvotes),
		strconv.Itoa(c.Downvotes),
		c.UserVoteType,
		c.Username,
		c.ProfilePictureURL,
		bool01(c.IsMod),
		bool01(c.IsAdmin),
		strconv.Itoa(c.ReplyCount),
		strconv.Itoa(c.TotalVotes),
		CleanText(c.Changes),
	}
	return strings.Join(fields, "\t")
}

// EncodeEmptyMarker renders the reserved row recording a media ID that was
// checked and had zero comments. Only media_id and content are set; all
// other columns stay blank to keep the column count stable.
func EncodeEmptyMarker(mediaID int64) string {
	fields := make([]string, len(Columns))
	fields[2] = strconv.FormatInt(mediaID, 10)
	fields[4] = EmptyMarker
	return strings.Join(fields, "\t")
}

// EncodeAbsentMarker renders the reserved row recording a comment ID that
// was point-fetched and confirmed absent upstream. Only comment_id and
// content are set.
func EncodeAbsentMarker(commentID int64) string {
	fields := make([]string, len(Columns))
	fields[0] = strconv.FormatInt(commentID, 10)
	fields[4] = AbsentMarker
	return strings.Join(fields, "\t")
}

// DecodeRow parses one data line back into a Comment. The caller has already
// verified the column count and ruled out marker rows.
func DecodeRow(fields []string) (Comment, error) {
	if len(fields) != len(Columns) {
		return Comment{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Comment{}, fmt.Errorf("malformed comment_id %q: %w", fields[0], err)
	}

	return Comment{
		ID:                id,
		UserID:            utils.ToInt64(fields[1]),
		MediaID:           utils.ToInt64(fields[2]),
		ParentID:          fields[3],
		Content:           fields[4],
		Timestamp:         fields[5],
		Deleted:           utils.ToBool(fields[6]),
		Tag:               fields[7],
		Upvotes:           utils.ToInt(fields[8]),
		Downvotes:         utils.ToInt(fields[9]),
		UserVoteType:      fields[10],
		Username:          fields[11],
		ProfilePictureURL: fields[12],
		IsMod:             utils.ToBool(fields[13]),
		IsAdmin:           utils.ToBool(fields[14]),
		ReplyCount:        utils.ToInt(fields[15]),
		TotalVotes:        utils.ToInt(fields[16]),
		Changes:           fields[17],
	}, nil
}

func bool01(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
