package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carbontrack/carbontrack-server/internal/domain"
	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/search"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

// reindexBatchSize bounds memory while rebuilding the index from the store.
const reindexBatchSize = 500

// SearchService bridges the activity index with the store. Index writes are
// best effort: a failure is logged and the store stays the source of truth.
type SearchService struct {
	index  *search.ActivityIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.ActivityIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a company-scoped full-text query.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"q": "is required",
		})
	}
	if params.Category != "" && !domain.Category(params.Category).Valid() {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"category": "is not a known activity category",
		})
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		if errors.Is(err, search.ErrMissingCompany) {
			return nil, domainerrors.Unauthorized("authentication required")
		}
		return nil, fmt.Errorf("search activities: %w", err)
	}
	return result, nil
}

// IndexActivity adds or replaces an activity's document.
func (s *SearchService) IndexActivity(a *domain.Activity) {
	if err := s.index.IndexDocument(search.NewActivityDocument(a)); err != nil {
		s.logger.Warn("failed to index activity", "activity_id", a.ID, "error", err)
	}
}

// RemoveActivity drops an activity's document.
func (s *SearchService) RemoveActivity(activityID string) {
	if err := s.index.DeleteDocument(activityID); err != nil {
		s.logger.Warn("failed to remove activity from index", "activity_id", activityID, "error", err)
	}
}

// Reindex rebuilds the index from every stored activity.
// Rows that fail to load are skipped and counted.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	var (
		batch   = make([]*search.ActivityDocument, 0, reindexBatchSize)
		indexed int
		skipped int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.index.IndexDocuments(batch); err != nil {
			return err
		}
		indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	for a, err := range s.store.StreamActivities(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				return indexed, ctx.Err()
			}
			skipped++
			s.logger.Warn("skipping activity during reindex", "error", err)
			continue
		}
		batch = append(batch, search.NewActivityDocument(a))
		if len(batch) == reindexBatchSize {
			if err := flush(); err != nil {
				return indexed, fmt.Errorf("index batch: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return indexed, fmt.Errorf("index batch: %w", err)
	}

	s.logger.Info("search index rebuilt", "indexed", indexed, "skipped", skipped)
	return indexed, nil
}

// EnsureIndexed rebuilds the index when it was created empty on this start.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if !s.index.Created() {
		return nil
	}
	_, err := s.Reindex(ctx)
	return err
}

// Ping reports whether the index can answer queries.
func (s *SearchService) Ping(_ context.Context) error {
	_, err := s.index.DocumentCount()
	return err
}
