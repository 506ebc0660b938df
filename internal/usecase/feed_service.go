package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/cjfeed/backend/internal/domain"
	"github.com/cjfeed/backend/internal/infrastructure/cj"
	"go.uber.org/zap"
)

// FeedServiceConfig holds configuration for the feed service
type FeedServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	MapOptions      cj.MapOptions
}

// SkipObserver is notified whenever a detail lookup is dropped from the feed
type SkipObserver interface {
	Inc()
}

// FeedService fetches products from CJ and normalizes them for the feed
type FeedService struct {
	catalog         domain.CatalogClient
	logger          *zap.Logger
	skipped         SkipObserver
	defaultPageSize int
	maxPageSize     int
	mapOptions      cj.MapOptions
}

// NewFeedService creates a new feed service with dependencies
func NewFeedService(
	catalog domain.CatalogClient,
	logger *zap.Logger,
	skipped SkipObserver,
	config FeedServiceConfig,
) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}

	defaultPageSize := config.DefaultPageSize
	if defaultPageSize < 1 {
		defaultPageSize = domain.DefaultPageSize
	}
	maxPageSize := config.MaxPageSize
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}

	return &FeedService{
		catalog:         catalog,
		logger:          logger,
		skipped:         skipped,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		mapOptions:      config.MapOptions,
	}
}

// BuildFeed looks up the products a query asks for and returns them in
// canonical form, in upstream order.
// Flow: check credentials -> fetch raw records -> map each record
func (s *FeedService) BuildFeed(ctx context.Context, query domain.FeedQuery) ([]domain.Product, error) {
	raws, err := s.FetchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	return cj.MapToProducts(raws, s.mapOptions), nil
}

// FetchProducts returns the raw records for query.
// A keyword search fails as a whole on any upstream error. A batch of ids
// drops each id whose lookup comes back with a non-success status.
func (s *FeedService) FetchProducts(ctx context.Context, query domain.FeedQuery) ([]domain.RawProduct, error) {
	if err := s.catalog.CheckCredentials(); err != nil {
		return nil, err
	}

	query = s.normalizeQuery(query)

	switch {
	case query.HasKeyword():
		return s.catalog.SearchProducts(ctx, query.Keyword, query.PageNum, query.PageSize)
	case query.HasIDs():
		return s.fetchByIDs(ctx, SplitIDs(query.IDs))
	default:
		return []domain.RawProduct{}, nil
	}
}

// fetchByIDs looks ids up one at a time, in order, folding each outcome into
// the result: a product is appended, a skippable failure contributes nothing,
// and any other error aborts the batch.
func (s *FeedService) fetchByIDs(ctx context.Context, ids []string) ([]domain.RawProduct, error) {
	out := make([]domain.RawProduct, 0, len(ids))
	for _, id := range ids {
		product, err := s.catalog.GetProductDetail(ctx, id)
		if err != nil {
			if !isSkippable(err) {
				return nil, err
			}
			s.logger.Warn("skipping product detail", zap.String("id", id), zap.Error(err))
			if s.skipped != nil {
				s.skipped.Inc()
			}
			continue
		}
		if product == nil {
			continue
		}
		out = append(out, product)
	}
	return out, nil
}

// isSkippable reports whether a detail lookup failure should drop the id
// instead of failing the feed
func isSkippable(err error) bool {
	var upstreamErr *domain.UpstreamError
	return errors.As(err, &upstreamErr)
}

// normalizeQuery trims the search terms and applies paging defaults
func (s *FeedService) normalizeQuery(query domain.FeedQuery) domain.FeedQuery {
	query.Keyword = strings.TrimSpace(query.Keyword)
	query.IDs = strings.TrimSpace(query.IDs)

	if query.PageNum < 1 {
		query.PageNum = domain.DefaultPageNum
	}
	if query.PageSize < 1 {
		query.PageSize = s.defaultPageSize
	}
	if query.PageSize > s.maxPageSize {
		query.PageSize = s.maxPageSize
	}
	return query
}

// SplitIDs splits a comma-separated id list, trimming each entry and
// dropping empty ones
func SplitIDs(ids string) []string {
	parts := strings.Split(ids, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}
