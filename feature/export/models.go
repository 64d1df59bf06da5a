package export

import "comment-mirror/feature/comments/models"

// MirrorComment is the relational shape of one mirror row. Columns track
// the flat-file schema one to one so both stores answer the same queries.
type MirrorComment struct {
	ID                int64  `gorm:"column:comment_id;primaryKey"`
	UserID            int64  `gorm:"column:user_id;index"`
	MediaID           int64  `gorm:"column:media_id;index"`
	ParentID          string `gorm:"column:parent_comment_id"`
	Content           string `gorm:"column:content"`
	Timestamp         string `gorm:"column:timestamp"`
	Deleted           bool   `gorm:"column:deleted"`
	Tag               string `gorm:"column:tag"`
	Upvotes           int    `gorm:"column:upvotes"`
	Downvotes         int    `gorm:"column:downvotes"`
	UserVoteType      string `gorm:"column:user_vote_type"`
	Username          string `gorm:"column:username"`
	ProfilePictureURL string `gorm:"column:profile_picture_url"`
	IsMod             bool   `gorm:"column:is_mod"`
	IsAdmin           bool   `gorm:"column:is_admin"`
	ReplyCount        int    `gorm:"column:reply_count"`
	TotalVotes        int    `gorm:"column:total_votes"`
	Changes           string `gorm:"column:changes"`
}

// TableName overrides the table name for the export schema.
func (MirrorComment) TableName() string {
	return "comments"
}

// FromComment converts a mirror record to its relational shape.
func FromComment(c models.Comment) MirrorComment {
	return MirrorComment{
		ID:                c.ID,
		UserID:            c.UserID,
		MediaID:           c.MediaID,
		ParentID:          c.ParentID,
		Content:           c.Content,
		Timestamp:         c.Timestamp,
		Deleted:           c.Deleted,
		Tag:               c.Tag,
		Upvotes:           c.Upvotes,
		Downvotes:         c.Downvotes,
		UserVoteType:      c.UserVoteType,
		Username:          c.Username,
		ProfilePictureURL: c.ProfilePictureURL,
		IsMod:             c.IsMod,
		IsAdmin:           c.IsAdmin,
		ReplyCount:        c.ReplyCount,
		TotalVotes:        c.TotalVotes,
		Changes:           c.Changes,
	}
}
