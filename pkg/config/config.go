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
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Business     BusinessConfig
	Cron         CronConfig
	Bootstrap    BootstrapConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Business.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"DELIZZIA_APP_ENV" required:"true"`
	Port         string   `envconfig:"DELIZZIA_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"DELIZZIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"DELIZZIA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"DELIZZIA_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"DELIZZIA_DB_DSN"`
	Driver string `envconfig:"DELIZZIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DELIZZIA_DB_HOST"`
	LegacyPort     int    `envconfig:"DELIZZIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DELIZZIA_DB_USER"`
	LegacyPassword string `envconfig:"DELIZZIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"DELIZZIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"DELIZZIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DELIZZIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DELIZZIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DELIZZIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DELIZZIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"DELIZZIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DELIZZIA_REDIS_ADDR"`
	Password     string        `envconfig:"DELIZZIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"DELIZZIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DELIZZIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DELIZZIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DELIZZIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DELIZZIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DELIZZIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DELIZZIA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DELIZZIA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DELIZZIA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DELIZZIA_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DELIZZIA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DELIZZIA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DELIZZIA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DELIZZIA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DELIZZIA_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig throttles login attempts per client IP and per email.
type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"DELIZZIA_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"DELIZZIA_LOGIN_RATE_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"DELIZZIA_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DELIZZIA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DELIZZIA_AUTO_MIGRATE" default:"false"`
}

// BusinessConfig holds the restaurant-level financial configuration.
// Rate maps use envconfig's "key:value,key:value" syntax.
type BusinessConfig struct {
	Timezone           string            `envconfig:"DELIZZIA_BUSINESS_TIMEZONE" default:"America/Guayaquil"`
	CommissionRates    map[string]string `envconfig:"DELIZZIA_COMMISSION_RATES" default:"uber_eats:0.30,pedidos_ya:0.28,bis:0.25,phone:0,whatsapp:0"`
	PackagingCosts     map[string]string `envconfig:"DELIZZIA_PACKAGING_COSTS" default:"small:0.15,medium:0.20,large:0.25"`
	RateTableFile      string            `envconfig:"DELIZZIA_RATE_TABLE_FILE"`
	RateReloadInterval time.Duration     `envconfig:"DELIZZIA_RATE_RELOAD_INTERVAL" default:"1m"`
	PriceElasticity    string            `envconfig:"DELIZZIA_PRICE_ELASTICITY" default:"-0.5"`
	TargetMargin       string            `envconfig:"DELIZZIA_TARGET_MARGIN" default:"0.30"`
	WeekendMultiplier  float64           `envconfig:"DELIZZIA_WEEKEND_MULTIPLIER" default:"1.3"`
	SundayMultiplier   float64           `envconfig:"DELIZZIA_SUNDAY_MULTIPLIER" default:"0.8"`
	PaydayMultiplier   float64           `envconfig:"DELIZZIA_PAYDAY_MULTIPLIER" default:"1.2"`
	PaydayDays         []int             `envconfig:"DELIZZIA_PAYDAY_DAYS" default:"15,30,31"`
}

// Location resolves the configured business timezone.
func (b BusinessConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(b.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"DELIZZIA_CRON_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"DELIZZIA_CRON_LOCK_TTL" default:"10m"`
	ReportExportDir string        `envconfig:"DELIZZIA_REPORT_EXPORT_DIR" default:"exports"`
}

// BootstrapConfig seeds an owner account on startup when both fields are set.
type BootstrapConfig struct {
	OwnerEmail    string `envconfig:"DELIZZIA_BOOTSTRAP_OWNER_EMAIL"`
	OwnerPassword string `envconfig:"DELIZZIA_BOOTSTRAP_OWNER_PASSWORD"`
	OwnerName     string `envconfig:"DELIZZIA_BOOTSTRAP_OWNER_NAME" default:"Owner"`
}

// Enabled reports whether an owner account should be ensured.
func (b BootstrapConfig) Enabled() bool {
	return strings.TrimSpace(b.OwnerEmail) != "" && b.OwnerPassword != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:delizzia.db?_foreign_keys=on"
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
