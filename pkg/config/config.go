package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SHOPPERSSAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPPERSSAY_DB_DSN"
	EnvDBHost = "SHOPPERSSAY_DB_HOST"
	EnvDBUser = "SHOPPERSSAY_DB_USER"
	EnvDBName = "SHOPPERSSAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Razorpay      RazorpayConfig
	Gemini        GeminiConfig
	Listings      ListingsConfig
	Cron          CronConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPPERSSAY_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPPERSSAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPPERSSAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPPERSSAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOPPERSSAY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPPERSSAY_DB_DSN"`
	Driver string `envconfig:"SHOPPERSSAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPPERSSAY_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPPERSSAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPPERSSAY_DB_USER"`
	LegacyPassword string `envconfig:"SHOPPERSSAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPPERSSAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPPERSSAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPPERSSAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPPERSSAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPPERSSAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPPERSSAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPPERSSAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPPERSSAY_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPPERSSAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPPERSSAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPPERSSAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPPERSSAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPPERSSAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPPERSSAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPPERSSAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPPERSSAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPPERSSAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPPERSSAY_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"SHOPPERSSAY_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"SHOPPERSSAY_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"SHOPPERSSAY_RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"SHOPPERSSAY_RAZORPAY_BASE_URL"`
	Currency  string `envconfig:"SHOPPERSSAY_RAZORPAY_CURRENCY" default:"INR"`
}

// Configured reports whether both gateway credentials are present.
func (r RazorpayConfig) Configured() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type GeminiConfig struct {
	APIKey  string `envconfig:"SHOPPERSSAY_GEMINI_API_KEY"`
	Model   string `envconfig:"SHOPPERSSAY_GEMINI_MODEL" default:"gemini-2.5-flash"`
	BaseURL string `envconfig:"SHOPPERSSAY_GEMINI_BASE_URL"`
}

type ListingsConfig struct {
	ValidityDays int `envconfig:"SHOPPERSSAY_LISTING_VALIDITY_DAYS" default:"30"`
}

// ValidityWindow returns how long a new listing stays active before expiry.
func (l ListingsConfig) ValidityWindow() time.Duration {
	days := l.ValidityDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

type CronConfig struct {
	ListingExpiryInterval time.Duration `envconfig:"SHOPPERSSAY_CRON_LISTING_EXPIRY_INTERVAL" default:"10m"`
	LockTTL               time.Duration `envconfig:"SHOPPERSSAY_CRON_LOCK_TTL" default:"5m"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SHOPPERSSAY_AUTH_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit    int           `envconfig:"SHOPPERSSAY_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit int           `envconfig:"SHOPPERSSAY_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPPERSSAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPPERSSAY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
