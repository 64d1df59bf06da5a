package api

import (
	"context"
	"fmt"
	"net/http"

	"comment-mirror/feature/comments/models"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// FetchResult is the outcome of a paginated fetch for one target.
type FetchResult struct {
	// Comments holds every raw comment collected, across all pages.
	Comments []models.Raw

	// Partial is true when pagination stopped for a reason other than a
	// clean end-of-sequence (unexpected status, exhausted transport
	// retries, malformed page). A partial target must not be marked as
	// fully scraped, so the next run revisits it.
	Partial bool
}

// FetchMediaComments fetches every comment page for one media ID, in order,
// starting at page 1. A 404 or an empty page ends the sequence cleanly; a
// 429 suspends this worker for the cooldown and retries the same page.
// The returned error is non-nil only when ctx was cancelled.
func (c *Client) FetchMediaComments(ctx context.Context, mediaID int64) (FetchResult, error) {
	return c.fetchPages(ctx, func(page int) string {
		return fmt.Sprintf("%s/comments/%d/%d?sort=newest", c.cfg.BaseURL, mediaID, page)
	}, zap.Int64("media_id", mediaID))
}

// FetchUserComments fetches every comment page authored by one user, under
// the same pagination contract as FetchMediaComments.
func (c *Client) FetchUserComments(ctx context.Context, userID int64) (FetchResult, error) {
	return c.fetchPages(ctx, func(page int) string {
		return fmt.Sprintf("%s/comments/user/%d/%d?sort=newest", c.cfg.BaseURL, userID, page)
	}, zap.Int64("user_id", userID))
}

func (c *Client) fetchPages(ctx context.Context, urlForPage func(page int) string, target zap.Field) (FetchResult, error) {
	var result FetchResult

	page := 1
	attempts := 0
	retries := c.cfg.PageRetries
	if retries < 1 {
		retries = 3
	}

	for {
		status, body, err := c.get(ctx, urlForPage(page))
		if err != nil {
			if ctx.Err() != nil {
				result.Partial = true
				return result, ctx.Err()
			}
			attempts++
			if attempts >= retries {
				c.log.Warn("Page fetch abandoned after transport retries",
					target, zap.Int("page", page), zap.Error(err))
				result.Partial = true
				return result, nil
			}
			if serr := c.sleep(ctx, c.retryDelay); serr != nil {
				result.Partial = true
				return result, serr
			}
			continue
		}

		switch status {
		case http.StatusNotFound:
			// End of pagination; the target simply has no further pages.
			return result, nil
		case http.StatusTooManyRequests:
			c.log.Debug("Rate limited, cooling down", target, zap.Int("page", page))
			if serr := c.sleep(ctx, c.cooldown); serr != nil {
				result.Partial = true
				return result, serr
			}
			continue
		case http.StatusOK:
			// handled below
		default:
			// The upstream does not distinguish outages from end-of-data.
			// Keep what was fetched, but flag the target so it is retried
			// on the next run instead of being marked fully scraped.
			c.log.Warn("Unexpected upstream status, stopping target",
				target, zap.Int("page", page), zap.Int("status", status))
			result.Partial = true
			return result, nil
		}

		var payload struct {
			Comments []models.Raw `json:"comments"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			c.log.Warn("Malformed page payload, stopping target",
				target, zap.Int("page", page), zap.Error(err))
			result.Partial = true
			return result, nil
		}
		if len(payload.Comments) == 0 {
			return result, nil
		}

		result.Comments = append(result.Comments, payload.Comments...)
		page++
		attempts = 0

		if serr := c.sleep(ctx, c.pageDelay); serr != nil {
			result.Partial = true
			return result, serr
		}
	}
}

// FetchComment looks up a single comment by ID. It retries indefinitely on
// rate-limit responses and returns ErrNotFound when upstream confirms the ID
// does not exist. Any other non-200 status is ErrUnexpectedStatus: the ID's
// absence is NOT confirmed and callers must not record it as checked.
func (c *Client) FetchComment(ctx context.Context, commentID int64) (models.Raw, error) {
	requestURL := fmt.Sprintf("%s/comments/%d", c.cfg.BaseURL, commentID)

	attempts := 0
	retries := c.cfg.PageRetries
	if retries < 1 {
		retries = 3
	}

	for {
		status, body, err := c.get(ctx, requestURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			attempts++
			if attempts >= retries {
				return nil, fmt.Errorf("comment %d fetch failed: %w", commentID, err)
			}
			if serr := c.sleep(ctx, c.retryDelay); serr != nil {
				return nil, serr
			}
			continue
		}

		switch status {
		case http.StatusTooManyRequests:
			if serr := c.sleep(ctx, c.cooldown); serr != nil {
				return nil, serr
			}
			continue
		case http.StatusNotFound:
			return nil, ErrNotFound
		case http.StatusOK:
			var raw models.Raw
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, fmt.Errorf("malformed comment %d payload: %w", commentID, err)
			}
			return raw, nil
		default:
			return nil, fmt.Errorf("%w: %d for comment %d", ErrUnexpectedStatus, status, commentID)
		}
	}
}
