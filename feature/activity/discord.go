package activity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	mediaPattern   = regexp.MustCompile(`\* Media: (\d+)`)
	deletedPattern = regexp.MustCompile(`\* Deleted: (\d+)`)
)

// Discord scans the bot's feed channel for comment activity. The bot posts
// one message per event with a "* Media: <id>" line, and "* Deleted: <id>"
// when a comment is removed.
type Discord struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

type message struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
}

// NewDiscord creates a feed over the configured channel.
func NewDiscord(cfg Config, log *zap.Logger) *Discord {
	return &Discord{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  log,
	}
}

// Scan walks the channel backwards in pages of 100 until it crosses the
// window cutoff, collecting media and deletion events. Feed errors after
// the first page return what was collected so far; a stale feed only
// narrows the sync, it never corrupts it.
func (d *Discord) Scan(ctx context.Context) (*Activity, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(d.cfg.WindowHours) * time.Hour)
	d.log.Info("Scanning activity feed",
		zap.String("channel_id", d.cfg.ChannelID),
		zap.Time("cutoff", cutoff),
	)

	media := map[int64]struct{}{}
	deleted := map[int64]struct{}{}
	before := ""

	for {
		msgs, err := d.fetchPage(ctx, before)
		if err != nil {
			if len(media) == 0 && len(deleted) == 0 {
				return nil, err
			}
			d.log.Warn("Feed scan cut short", zap.Error(err))
			break
		}
		if len(msgs) == 0 {
			break
		}

		reachedCutoff := false
		for _, m := range msgs {
			ts, err := time.Parse(time.RFC3339, m.Timestamp)
			if err == nil && ts.Before(cutoff) {
				reachedCutoff = true
				break
			}
			collect(mediaPattern, m.Content, media)
			collect(deletedPattern, m.Content, deleted)
		}
		if reachedCutoff {
			break
		}
		next := msgs[len(msgs)-1].ID
		if next == before {
			// A feed that keeps serving the same page would loop forever.
			d.log.Warn("Feed cursor did not advance, stopping scan",
				zap.String("cursor", next))
			break
		}
		before = next
	}

	act := &Activity{
		MediaIDs:          sortedKeys(media),
		DeletedCommentIDs: sortedKeys(deleted),
	}
	d.log.Info("Feed scan complete",
		zap.Int("active_media", len(act.MediaIDs)),
		zap.Int("deleted_comments", len(act.DeletedCommentIDs)),
	)
	return act, nil
}

func (d *Discord) fetchPage(ctx context.Context, before string) ([]message, error) {
	url := fmt.Sprintf("%s/channels/%s/messages?limit=100", d.cfg.BaseURL, d.cfg.ChannelID)
	if before != "" {
		url += "&before=" + before
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Authorization", d.cfg.Token)

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var msgs []message
	if err := json.Unmarshal(body, &msgs); err != nil {
		return nil, fmt.Errorf("malformed feed response: %w", err)
	}
	return msgs, nil
}

func collect(p *regexp.Regexp, content string, into map[int64]struct{}) {
	for _, m := range p.FindAllStringSubmatch(content, -1) {
		var id int64
		if _, err := fmt.Sscanf(m[1], "%d", &id); err == nil && id > 0 {
			into[id] = struct{}{}
		}
	}
}

func sortedKeys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
