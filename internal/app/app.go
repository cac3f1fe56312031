package app

import (
	"context"
	"errors"
	"net/http"

	"book-club-go/internal/broadcast"
	"book-club-go/internal/config"
	"book-club-go/internal/db"
	booksdomain "book-club-go/internal/domain/books"
	clubsdomain "book-club-go/internal/domain/clubs"
	guidedomain "book-club-go/internal/domain/guide"
	meetingsdomain "book-club-go/internal/domain/meetings"
	messagesdomain "book-club-go/internal/domain/messages"
	questionsdomain "book-club-go/internal/domain/questions"
	selectiondomain "book-club-go/internal/domain/selection"
	userdomain "book-club-go/internal/domain/user"
	"book-club-go/internal/integrations/azureai"
	"book-club-go/internal/integrations/googlebooks"
	"book-club-go/internal/repository/inmemory"
	booksrepo "book-club-go/internal/repository/postgres/books"
	clubsrepo "book-club-go/internal/repository/postgres/clubs"
	guiderepo "book-club-go/internal/repository/postgres/guide"
	meetingsrepo "book-club-go/internal/repository/postgres/meetings"
	messagesrepo "book-club-go/internal/repository/postgres/messages"
	questionsrepo "book-club-go/internal/repository/postgres/questions"
	selectionrepo "book-club-go/internal/repository/postgres/selection"
	userrepo "book-club-go/internal/repository/postgres/user"
	"book-club-go/internal/telemetry"
	"book-club-go/internal/transport/httpserver"
	"book-club-go/internal/transport/httpserver/handler"
	"book-club-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	shutdown   func(context.Context) error
	log        logger.Logger
}

func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: initializing telemetry", "enabled", cfg.Telemetry.Enabled)
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	router, err := NewRouter(cfg, dbConn, log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		shutdown:   shutdown,
		log:        log,
	}, nil
}

// NewRouter builds every service on top of dbConn and returns the API router.
func NewRouter(cfg config.Config, dbConn *gorm.DB, log logger.Logger) (http.Handler, error) {
	log.Info("app: initializing services")
	services, err := newServices(cfg, dbConn, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing router")
	handlers := handler.New(services, log)
	return httpserver.NewRouter(cfg, handlers, services.Users, log), nil
}

func newServices(cfg config.Config, dbConn *gorm.DB, log logger.Logger) (handler.Services, error) {
	hub := broadcast.NewHub(log)

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	clubs := clubsdomain.NewService(clubsrepo.NewPostgres(dbConn))

	catalog := googlebooks.New(cfg.Books.GoogleBaseURL, cfg.Books.GoogleAPIKey, cfg.Books.Timeout)
	books := booksdomain.NewService(booksrepo.NewPostgres(dbConn), catalog, log,
		booksdomain.WithSearchCache(inmemory.NewInMemorySearchCache(), cfg.Books.SearchCacheTTL),
		booksdomain.WithSearchLimit(cfg.Books.SearchLimit),
	)

	picker, err := selectiondomain.NewRandomPicker()
	if err != nil {
		return handler.Services{}, err
	}
	selection := selectiondomain.NewService(selectionrepo.NewPostgres(dbConn), clubs, books,
		selectiondomain.WithNotifier(hub),
		selectiondomain.WithPicker(picker),
		selectiondomain.WithVotingWindow(cfg.Voting.DefaultWindow),
	)

	var completer questionsdomain.Completer
	if cfg.Questions.AIEnabled() {
		log.Info("app: ai question generation enabled", "deployment", cfg.Questions.Deployment)
		completer = azureai.New(azureai.Config{
			Endpoint:   cfg.Questions.Endpoint,
			APIKey:     cfg.Questions.APIKey,
			Deployment: cfg.Questions.Deployment,
			APIVersion: cfg.Questions.APIVersion,
			MaxTokens:  cfg.Questions.MaxTokens,
		})
	} else {
		log.Info("app: ai question generation disabled, using fallback questions")
	}
	generator := questionsdomain.NewGenerator(questionsrepo.NewPostgres(dbConn), completer, log,
		questionsdomain.WithCount(cfg.Questions.Count),
		questionsdomain.WithTimeout(cfg.Questions.Timeout),
		questionsdomain.WithFreshFor(cfg.Questions.FreshFor),
		questionsdomain.WithDescriptionLimit(cfg.Questions.DescriptionLimit),
	)

	guideRepo := guiderepo.NewPostgres(dbConn)
	meetings := meetingsdomain.NewService(meetingsrepo.NewPostgres(dbConn), clubs, log,
		meetingsdomain.WithGuideSeeder(guidedomain.NewSeeder(guideRepo, generator)),
		meetingsdomain.WithNotifier(hub),
		meetingsdomain.WithRegenerateLimit(cfg.Questions.RegenerateLimit),
	)
	guide := guidedomain.NewService(guideRepo, clubs, meetings, generator,
		guidedomain.WithNotifier(hub),
	)

	messages := messagesdomain.NewService(messagesrepo.NewPostgres(dbConn), clubs,
		messagesdomain.WithNotifier(hub),
	)

	return handler.Services{
		Users:     users,
		Clubs:     clubs,
		Books:     books,
		Selection: selection,
		Meetings:  meetings,
		Guide:     guide,
		Messages:  messages,
		Hub:       hub,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Close flushes pending spans and releases the database pool.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
