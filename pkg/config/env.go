package config

const EnvPrefix = "DELIZZIA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "DELIZZIA_APP_ENV"
	EnvPort                   = "DELIZZIA_APP_PORT"
	EnvDBDSN                  = "DELIZZIA_DB_DSN"
	EnvDBDriver               = "DELIZZIA_DB_DRIVER"
	EnvDBHost                 = "DELIZZIA_DB_HOST"
	EnvDBUser                 = "DELIZZIA_DB_USER"
	EnvDBName                 = "DELIZZIA_DB_NAME"
	EnvRedisURL               = "DELIZZIA_REDIS_URL"
	EnvJWTSecret              = "DELIZZIA_JWT_SECRET"
	EnvJWTIssuer              = "DELIZZIA_JWT_ISSUER"
	EnvJWTExpMins             = "DELIZZIA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "DELIZZIA_REFRESH_TOKEN_TTL_MINUTES"
	EnvTimezone               = "DELIZZIA_BUSINESS_TIMEZONE"
	EnvCommissionRates        = "DELIZZIA_COMMISSION_RATES"
	EnvPackagingCosts         = "DELIZZIA_PACKAGING_COSTS"
	EnvRateTableFile          = "DELIZZIA_RATE_TABLE_FILE"
	EnvReportExportDir        = "DELIZZIA_REPORT_EXPORT_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
