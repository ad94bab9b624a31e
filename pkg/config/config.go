package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	Webhook      WebhookConfig
	CORS         CORSConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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

// LoadPassword reads only the argon2 parameters, for tools that hash
// credentials without a full service environment.
func LoadPassword() (PasswordConfig, error) {
	var cfg PasswordConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return PasswordConfig{}, fmt.Errorf("parsing password config: %w", err)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PMCELL_APP_ENV" required:"true"`
	Port         string `envconfig:"PMCELL_APP_PORT" required:"true"`
	ServiceName  string `envconfig:"PMCELL_SERVICE_NAME" default:"pmcell-catalog"`
	LogLevel     string `envconfig:"PMCELL_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"PMCELL_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"PMCELL_LOG_WARN_STACK" default:"false"`
	PublicURL    string `envconfig:"PMCELL_PUBLIC_URL" default:"http://localhost:8000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PMCELL_DB_DSN"`
	Driver string `envconfig:"PMCELL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PMCELL_DB_HOST"`
	LegacyPort     int    `envconfig:"PMCELL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PMCELL_DB_USER"`
	LegacyPassword string `envconfig:"PMCELL_DB_PASSWORD"`
	LegacyName     string `envconfig:"PMCELL_DB_NAME"`
	LegacySSLMode  string `envconfig:"PMCELL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PMCELL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PMCELL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PMCELL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PMCELL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local single-file driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PMCELL_REDIS_URL"`
	Address      string        `envconfig:"PMCELL_REDIS_ADDR"`
	Password     string        `envconfig:"PMCELL_REDIS_PASSWORD"`
	DB           int           `envconfig:"PMCELL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PMCELL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PMCELL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PMCELL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PMCELL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PMCELL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PMCELL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PMCELL_JWT_ISSUER" default:"pmcell"`
	ExpirationMinutes int    `envconfig:"PMCELL_JWT_EXPIRATION_MINUTES" default:"480"`
}

// AdminConfig holds the single back-office credential. PasswordHash is an
// argon2id string; generate one with `go run ./cmd/hash-password`.
type AdminConfig struct {
	Username     string `envconfig:"PMCELL_ADMIN_USERNAME" default:"admin"`
	PasswordHash string `envconfig:"PMCELL_ADMIN_PASSWORD_HASH"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PMCELL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PMCELL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PMCELL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PMCELL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PMCELL_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	Window                time.Duration `envconfig:"PMCELL_RATE_LIMIT_WINDOW" default:"60s"`
	LiberatePricesLimit   int           `envconfig:"PMCELL_RATE_LIMIT_LIBERATE_PRICES" default:"5"`
	TrackJourneyLimit     int           `envconfig:"PMCELL_RATE_LIMIT_TRACK_JOURNEY" default:"60"`
	AbandonedCartLimit    int           `envconfig:"PMCELL_RATE_LIMIT_ABANDONED_CART" default:"3"`
	SearchSuggestionLimit int           `envconfig:"PMCELL_RATE_LIMIT_SEARCH_SUGGESTIONS" default:"30"`
	WebhookThrottle       time.Duration `envconfig:"PMCELL_WEBHOOK_THROTTLE" default:"5s"`
}

type CacheConfig struct {
	CategoriesTTL   time.Duration `envconfig:"PMCELL_CACHE_CATEGORIES_TTL" default:"1h"`
	ProductCountTTL time.Duration `envconfig:"PMCELL_CACHE_PRODUCT_COUNT_TTL" default:"30m"`
	SuggestionsTTL  time.Duration `envconfig:"PMCELL_CACHE_SUGGESTIONS_TTL" default:"5m"`
}

type WebhookConfig struct {
	RetryDelay     time.Duration `envconfig:"PMCELL_WEBHOOK_RETRY_DELAY" default:"5s"`
	UserAgent      string        `envconfig:"PMCELL_WEBHOOK_USER_AGENT" default:"PMCELL-Webhook/1.0"`
	DefaultTimeout time.Duration `envconfig:"PMCELL_WEBHOOK_DEFAULT_TIMEOUT" default:"30s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PMCELL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"PMCELL_CRON_INTERVAL" default:"5m"`
	RedeliveryMinAge      time.Duration `envconfig:"PMCELL_CRON_REDELIVERY_MIN_AGE" default:"15m"`
	RedeliveryBatchSize   int           `envconfig:"PMCELL_CRON_REDELIVERY_BATCH_SIZE" default:"50"`
	RedeliveryMaxAttempts int           `envconfig:"PMCELL_CRON_REDELIVERY_MAX_ATTEMPTS" default:"5"`
	RedeliveryPerSecond   float64       `envconfig:"PMCELL_CRON_REDELIVERY_PER_SECOND" default:"2"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PMCELL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
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
