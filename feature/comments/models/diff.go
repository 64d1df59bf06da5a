package models

import "strings"

// ChangedFields compares two comments field by field and returns the column
// names that differ, in schema order. The key and the changes column itself
// are never compared.
func ChangedFields(old, new Comment) []string {
	var changed []string
	add := func(column string, differs bool) {
		if differs {
			changed = append(changed, column)
		}
	}

	add("user_id", old.UserID != new.UserID)
	add("media_id", old.MediaID != new.MediaID)
	add("parent_comment_id", old.ParentID != new.ParentID)
	add("content", old.Content != new.Content)
	add("timestamp", old.Timestamp != new.Timestamp)
	add("deleted", old.Deleted != new.Deleted)
	add("tag", old.Tag != new.Tag)
	add("upvotes", old.Upvotes != new.Upvotes)
	add("downvotes", old.Downvotes != new.Downvotes)
	add("user_vote_type", old.UserVoteType != new.UserVoteType)
	add("username", old.Username != new.Username)
	add("profile_picture_url", old.ProfilePictureURL != new.ProfilePictureURL)
	add("is_mod", old.IsMod != new.IsMod)
	add("is_admin", old.IsAdmin != new.IsAdmin)
	add("reply_count", old.ReplyCount != new.ReplyCount)
	add("total_votes", old.TotalVotes != new.TotalVotes)

	return changed
}

// Classify compares a freshly normalized comment against its stored
// counterpart (nil when unseen) and returns the row to keep plus the kind
// of change.
//
// New rows get the MarkerNew changes value. Updated rows get a comma-joined
// list of the changed column names. Unchanged rows return the stored row
// verbatim so a no-op refetch never rewrites history.
func Classify(incoming Comment, existing *Comment) (Comment, ChangeKind) {
	if existing == nil {
		incoming.Changes = MarkerNew
		return incoming, ChangeNew
	}

	changed := ChangedFields(*existing, incoming)
	if len(changed) == 0 {
		return *existing, ChangeUnchanged
	}

	incoming.Changes = strings.Join(changed, ",")
	return incoming, ChangeUpdated
}
