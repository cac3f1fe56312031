package questions

import (
	"context"
	"errors"
	"time"

	booksdomain "book-club-go/internal/domain/books"
	"book-club-go/internal/telemetry"
	"book-club-go/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCount            = 3
	defaultTimeout          = 20 * time.Second
	defaultFreshFor         = 180 * 24 * time.Hour
	defaultDescriptionLimit = 500
)

var errEmptyCompletion = errors.New("completion contained no questions")

// Generator produces discussion questions. It never fails: any upstream
// problem yields the static fallback list for the language.
type Generator struct {
	repo             Repository
	completer        Completer
	catalog          Catalog
	count            int
	timeout          time.Duration
	freshFor         time.Duration
	descriptionLimit int
	tracer           trace.Tracer
	log              logger.Logger
	now              func() time.Time
}

type Option func(*Generator)

func WithCatalog(catalog Catalog) Option {
	return func(g *Generator) {
		g.catalog = catalog
	}
}

func WithCount(count int) Option {
	return func(g *Generator) {
		if count > 0 {
			g.count = count
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

func WithFreshFor(freshFor time.Duration) Option {
	return func(g *Generator) {
		if freshFor > 0 {
			g.freshFor = freshFor
		}
	}
}

func WithDescriptionLimit(limit int) Option {
	return func(g *Generator) {
		if limit > 0 {
			g.descriptionLimit = limit
		}
	}
}

// NewGenerator builds a generator. A nil completer means AI is disabled and
// only stored or fallback questions are served.
func NewGenerator(repo Repository, completer Completer, log logger.Logger, opts ...Option) *Generator {
	g := &Generator{
		repo:             repo,
		completer:        completer,
		catalog:          DefaultCatalog(),
		count:            defaultCount,
		timeout:          defaultTimeout,
		freshFor:         defaultFreshFor,
		descriptionLimit: defaultDescriptionLimit,
		tracer:           telemetry.Tracer("questions"),
		log:              log,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateForBook reuses enough fresh stored questions when available and
// otherwise asks the completer.
func (g *Generator) GenerateForBook(ctx context.Context, book *booksdomain.Book, language string) []Question {
	existing, err := g.repo.ListFresh(ctx, book.ID, language, g.now().Add(-g.freshFor), g.count)
	if err != nil {
		logger.WithTrace(ctx, g.log).Warn("questions.generate: stored lookup failed", "book_id", book.ID, "error", err)
	} else if len(existing) >= g.count {
		return existing
	}
	return g.generate(ctx, book, language)
}

// RegenerateForBook always asks the completer.
func (g *Generator) RegenerateForBook(ctx context.Context, book *booksdomain.Book, language string) []Question {
	return g.generate(ctx, book, language)
}

func (g *Generator) generate(ctx context.Context, book *booksdomain.Book, language string) []Question {
	ctx, span := g.tracer.Start(ctx, "questions.generate", trace.WithAttributes(
		attribute.String("book.id", book.ID),
		attribute.String("language", language),
	))
	defer span.End()

	texts, err := g.complete(ctx, book, language)
	if err != nil {
		span.RecordError(err)
		logger.WithTrace(ctx, g.log).Warn("questions.generate: using fallback", "book_id", book.ID, "language", language, "error", err)
		return g.fallback(book.ID, language)
	}

	now := g.now()
	questions := make([]Question, 0, len(texts))
	for _, text := range texts {
		questions = append(questions, Question{
			ID:        uuid.NewString(),
			BookID:    book.ID,
			Language:  language,
			Text:      text,
			Source:    SourceAIGenerated,
			CreatedAt: now,
		})
	}
	if err := g.repo.CreateQuestions(ctx, questions); err != nil {
		logger.WithTrace(ctx, g.log).Warn("questions.generate: store failed", "book_id", book.ID, "error", err)
	}
	return questions
}

func (g *Generator) complete(ctx context.Context, book *booksdomain.Book, language string) ([]string, error) {
	if g.completer == nil {
		return nil, errors.New("completer not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.completer.Complete(ctx, g.catalog.Prompt(book, language, g.count, g.descriptionLimit))
	if err != nil {
		return nil, err
	}
	texts := ParseQuestions(response, g.count)
	if len(texts) == 0 {
		return nil, errEmptyCompletion
	}
	return texts, nil
}

func (g *Generator) fallback(bookID, language string) []Question {
	texts := g.catalog.FallbackFor(language, g.count)
	questions := make([]Question, 0, len(texts))
	for _, text := range texts {
		questions = append(questions, Question{
			BookID:   bookID,
			Language: language,
			Text:     text,
			Source:   SourceFallback,
		})
	}
	return questions
}
