package config

// EnvPrefix is the envconfig prefix shared by every storefront variable.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"
	EnvLogFormat    = "STOREFRONT_LOG_FORMAT"

	EnvDBDSN      = "STOREFRONT_DB_DSN"
	EnvDBHost     = "STOREFRONT_DB_HOST"
	EnvDBPort     = "STOREFRONT_DB_PORT"
	EnvDBUser     = "STOREFRONT_DB_USER"
	EnvDBPassword = "STOREFRONT_DB_PASSWORD"
	EnvDBName     = "STOREFRONT_DB_NAME"
	EnvDBSSLMode  = "STOREFRONT_DB_SSLMODE"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"

	EnvGCPProjectID    = "STOREFRONT_GCP_PROJECT_ID"
	EnvGCSBucket       = "STOREFRONT_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry = "STOREFRONT_GCS_UPLOAD_URL_EXPIRY"

	EnvPubSubMediaDeletionTopic = "STOREFRONT_PUBSUB_MEDIA_DELETION_TOPIC"
	EnvPubSubMediaDeletionSub   = "STOREFRONT_PUBSUB_MEDIA_DELETION_SUBSCRIPTION"

	EnvUseSQLite   = "STOREFRONT_USE_SQLITE"
	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvBrowseBaseURL = "STOREFRONT_BROWSE_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
