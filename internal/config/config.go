package config

import (
	"fmt"
	"time"

	"book-club-go/pkg/logger"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	Env         string   `env:"ENV" envDefault:"development"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	DB        DBConfig        `envPrefix:"DB_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Voting    VotingConfig    `envPrefix:"VOTING_"`
	Questions QuestionsConfig `envPrefix:"QUESTIONS_"`
	Books     BooksConfig     `envPrefix:"BOOKS_"`
	Telemetry TelemetryConfig `envPrefix:"OTEL_"`
}

type DBConfig struct {
	DSN                string        `env:"DSN"`
	Host               string        `env:"HOST" envDefault:"localhost"`
	Port               string        `env:"PORT" envDefault:"5432"`
	User               string        `env:"USER" envDefault:"postgres"`
	Password           string        `env:"PASSWORD" envDefault:"postgres"`
	Name               string        `env:"NAME" envDefault:"book_club"`
	SSLMode            string        `env:"SSLMODE" envDefault:"disable"`
	TimeZone           string        `env:"TIMEZONE" envDefault:"UTC"`
	MaxOpenConns       int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime    time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
}

// AuthConfig selects one of three modes: SkipAuth (mock user), JWTSecret
// (local HS256 verification) or IntrospectURL (remote token check).
type AuthConfig struct {
	SkipAuth       bool          `env:"SKIP" envDefault:"false"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER"`
	IntrospectURL  string        `env:"INTROSPECT_URL"`
	IntrospectKey  string        `env:"INTROSPECT_KEY"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"5s"`
	MockUserID     string        `env:"MOCK_USER_ID" envDefault:"00000000-0000-0000-0000-000000000001"`
	MockUserEmail  string        `env:"MOCK_USER_EMAIL"`
	MockUserName   string        `env:"MOCK_USER_NAME"`
	MockUserAvatar string        `env:"MOCK_USER_AVATAR_URL"`
}

type VotingConfig struct {
	DefaultWindow time.Duration `env:"DEFAULT_WINDOW" envDefault:"168h"`
}

type QuestionsConfig struct {
	Endpoint         string        `env:"AI_ENDPOINT"`
	APIKey           string        `env:"AI_API_KEY"`
	Deployment       string        `env:"AI_DEPLOYMENT" envDefault:"gpt-4o-mini"`
	APIVersion       string        `env:"AI_API_VERSION" envDefault:"2024-06-01"`
	MaxTokens        int64         `env:"AI_MAX_TOKENS" envDefault:"1000"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"20s"`
	Count            int           `env:"COUNT" envDefault:"3"`
	RegenerateLimit  int           `env:"REGENERATE_LIMIT" envDefault:"3"`
	FreshFor         time.Duration `env:"FRESH_FOR" envDefault:"4320h"`
	DescriptionLimit int           `env:"DESCRIPTION_LIMIT" envDefault:"500"`
}

func (c QuestionsConfig) AIEnabled() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

type BooksConfig struct {
	GoogleAPIKey   string        `env:"GOOGLE_API_KEY"`
	GoogleBaseURL  string        `env:"GOOGLE_BASE_URL" envDefault:"https://www.googleapis.com/books/v1"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"5m"`
	SearchLimit    int           `env:"SEARCH_LIMIT" envDefault:"10"`
}

type TelemetryConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"true"`
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"book-club"`
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
