package config

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SHOPCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	SQLiteMemoryDSN = "file::memory:?cache=shared"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "SHOPCART_APP_ENV"
	EnvPort                   = "SHOPCART_APP_PORT"
	EnvDBDSN                  = "SHOPCART_DB_DSN"
	EnvDBHost                 = "SHOPCART_DB_HOST"
	EnvDBUser                 = "SHOPCART_DB_USER"
	EnvDBName                 = "SHOPCART_DB_NAME"
	EnvRedisURL               = "SHOPCART_REDIS_URL"
	EnvJWTSecret              = "SHOPCART_JWT_SECRET"
	EnvJWTIssuer              = "SHOPCART_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPCART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPCART_REFRESH_TOKEN_TTL_MINUTES"
	EnvImagesBucket           = "SHOPCART_IMAGES_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
