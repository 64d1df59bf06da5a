package comments

import (
	"fmt"

	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a comment ID has no row in the mirror.
var ErrNotFound = fmt.Errorf("comment not found")

// Service answers read-only queries against an opened mirror.
type Service struct {
	store  *mirror.Store
	logger *zap.Logger
}

// NewService creates a new comments service.
func NewService(store *mirror.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetComment returns one comment by ID.
func (s *Service) GetComment(id int64) (models.Comment, error) {
	c, ok := s.store.Get(id)
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return c, nil
}

// GetMediaComments returns every stored comment for one media ID, sorted
// by comment ID.
func (s *Service) GetMediaComments(mediaID int64) []models.Comment {
	return s.store.CommentsForMedia(mediaID)
}

// GetStats returns the mirror's integrity report.
func (s *Service) GetStats() mirror.VerifyReport {
	return s.store.Verify()
}
