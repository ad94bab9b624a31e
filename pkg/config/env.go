package config

// EnvPrefix is passed to envconfig; every field carries its full variable name.
const EnvPrefix = "PMCELL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:pmcell.db?cache=shared&_fk=1"
)

const (
	EnvAppEnv     = "PMCELL_APP_ENV"
	EnvPort       = "PMCELL_APP_PORT"
	EnvLogLevel   = "PMCELL_LOG_LEVEL"
	EnvLogFormat  = "PMCELL_LOG_FORMAT"
	EnvDBDSN      = "PMCELL_DB_DSN"
	EnvDBDriver   = "PMCELL_DB_DRIVER"
	EnvDBHost     = "PMCELL_DB_HOST"
	EnvDBUser     = "PMCELL_DB_USER"
	EnvDBName     = "PMCELL_DB_NAME"
	EnvDBPassword = "PMCELL_DB_PASSWORD"
	EnvRedisURL   = "PMCELL_REDIS_URL"
	EnvJWTSecret  = "PMCELL_JWT_SECRET"
	EnvJWTIssuer  = "PMCELL_JWT_ISSUER"

	EnvRateLimitLiberatePrices = "PMCELL_RATE_LIMIT_LIBERATE_PRICES"
	EnvWebhookRetryDelay       = "PMCELL_WEBHOOK_RETRY_DELAY"
	EnvCORSAllowedOrigins      = "PMCELL_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
