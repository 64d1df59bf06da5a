package sync

import (
	"fmt"
	"os"

	"comment-mirror/core/utils"

	"github.com/goccy/go-json"
)

// LoadCatalog reads the candidate media-ID list: a flat JSON array of
// integers, though IDs have also been seen serialized as strings. A missing
// or unreadable catalog is fatal for a backfill run, before any fetching.
func LoadCatalog(path string) ([]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media catalog %s: %w", path, err)
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed media catalog %s: %w", path, err)
	}

	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if id := utils.ToInt64(v); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
