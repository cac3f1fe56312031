package books

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"book-club-go/internal/domain/apperr"
	"book-club-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/singleflight"
)

const (
	maxTitleLength     = 500
	defaultSearchLimit = 10
)

type Service struct {
	repo     Repository
	provider Provider
	cache    SearchCache
	cacheTTL time.Duration
	limit    int
	group    singleflight.Group
	log      logger.Logger
}

type ServiceOption func(*Service)

func WithSearchCache(cache SearchCache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
		s.cacheTTL = ttl
	}
}

func WithSearchLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func NewService(repo Repository, provider Provider, log logger.Logger, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:     repo,
		provider: provider,
		cache:    noopCache{},
		limit:    defaultSearchLimit,
		log:      log,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) GetBook(ctx context.Context, bookID string) (*Book, error) {
	return s.repo.GetBook(ctx, bookID)
}

// Search queries the catalog. Provider failures and blank queries yield an
// empty result, never an error. Concurrent identical queries share one call.
func (s *Service) Search(ctx context.Context, query string) []Metadata {
	query = strings.TrimSpace(query)
	if query == "" || s.provider == nil {
		return []Metadata{}
	}

	key := strings.ToLower(query) + ":" + strconv.Itoa(s.limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		results, err := s.provider.Search(ctx, query, s.limit)
		if err != nil {
			return nil, err
		}
		if results == nil {
			results = []Metadata{}
		}
		s.cache.Set(key, results, s.cacheTTL)
		return results, nil
	})
	if err != nil {
		s.log.Warn("books.search: provider failed", "query", query, "err", err)
		return []Metadata{}
	}
	return value.([]Metadata)
}

// ResolveBook returns the stored book for a catalog id, importing it from the
// provider on first use, or creates a manual entry. Must not be called inside
// a write transaction.
func (s *Service) ResolveBook(ctx context.Context, input ResolveInput) (*Book, error) {
	externalID := strings.TrimSpace(input.GoogleBooksID)
	if externalID != "" {
		return s.importBook(ctx, externalID)
	}
	return s.createManual(ctx, input)
}

func (s *Service) importBook(ctx context.Context, externalID string) (*Book, error) {
	existing, err := s.repo.GetBookByGoogleID(ctx, externalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	if s.provider == nil {
		return nil, ErrCatalogBookNotFound
	}
	metadata, err := s.provider.Find(ctx, externalID)
	if err != nil {
		if !errors.Is(err, ErrCatalogBookNotFound) {
			s.log.Warn("books.resolve: provider failed", "google_books_id", externalID, "err", err)
		}
		return nil, ErrCatalogBookNotFound
	}
	if metadata == nil {
		return nil, ErrCatalogBookNotFound
	}
	metadata.ExternalID = externalID

	book := metadata.ToBook()
	book.ID = uuid.NewString()
	if err := validateBook(&book); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBook(ctx, &book); err != nil {
		if errors.Is(err, ErrCatalogIDTaken) {
			return s.repo.GetBookByGoogleID(ctx, externalID)
		}
		return nil, err
	}
	return &book, nil
}

func (s *Service) createManual(ctx context.Context, input ResolveInput) (*Book, error) {
	book := Book{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Authors:     parseAuthors(input.Authors),
		Description: optionalString(input.Description),
		ISBN:        optionalString(input.ISBN),
		PageCount:   input.PageCount,
	}
	if err := validateBook(&book); err != nil {
		return nil, err
	}
	if err := s.repo.CreateBook(ctx, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func validateBook(book *Book) error {
	if book.Title == "" {
		return apperr.Invalid("title", "is required")
	}
	if len([]rune(book.Title)) > maxTitleLength {
		return apperr.Invalid("title", "is too long")
	}
	if book.PageCount != nil && *book.PageCount <= 0 {
		return apperr.Invalid("page_count", "must be greater than zero")
	}
	return nil
}

func parseAuthors(value string) pq.StringArray {
	parts := strings.Split(value, ",")
	authors := make(pq.StringArray, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
