package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable this service reads.
	EnvPrefix = "cardfolio"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "CARDFOLIO_APP_ENV"
	EnvPort       = "CARDFOLIO_APP_PORT"
	EnvDBDSN      = "CARDFOLIO_DB_DSN"
	EnvDBHost     = "CARDFOLIO_DB_HOST"
	EnvDBUser     = "CARDFOLIO_DB_USER"
	EnvDBName     = "CARDFOLIO_DB_NAME"
	EnvRedisURL   = "CARDFOLIO_REDIS_URL"
	EnvJWTSecret  = "CARDFOLIO_JWT_SECRET"
	EnvJWTIssuer  = "CARDFOLIO_JWT_ISSUER"
	EnvJWTExpMins = "CARDFOLIO_JWT_EXPIRATION_MINUTES"
	EnvCatalogURL = "CARDFOLIO_CATALOG_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Catalog       CatalogConfig
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
	Env          string `envconfig:"CARDFOLIO_APP_ENV" required:"true"`
	Port         string `envconfig:"CARDFOLIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARDFOLIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARDFOLIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARDFOLIO_DB_DSN"`
	Driver string `envconfig:"CARDFOLIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARDFOLIO_DB_HOST"`
	LegacyPort     int    `envconfig:"CARDFOLIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARDFOLIO_DB_USER"`
	LegacyPassword string `envconfig:"CARDFOLIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARDFOLIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARDFOLIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARDFOLIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARDFOLIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARDFOLIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARDFOLIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARDFOLIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARDFOLIO_REDIS_ADDR"`
	Password     string        `envconfig:"CARDFOLIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARDFOLIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARDFOLIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARDFOLIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARDFOLIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARDFOLIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARDFOLIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARDFOLIO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARDFOLIO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARDFOLIO_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"CARDFOLIO_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARDFOLIO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARDFOLIO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARDFOLIO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARDFOLIO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARDFOLIO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CARDFOLIO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CARDFOLIO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CARDFOLIO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CARDFOLIO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CARDFOLIO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CARDFOLIO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CatalogConfig points the service at the external card catalog provider.
type CatalogConfig struct {
	BaseURL          string        `envconfig:"CARDFOLIO_CATALOG_BASE_URL" required:"true"`
	APIKey           string        `envconfig:"CARDFOLIO_CATALOG_API_KEY"`
	Language         string        `envconfig:"CARDFOLIO_CATALOG_LANGUAGE" default:"fr"`
	FallbackLanguage string        `envconfig:"CARDFOLIO_CATALOG_FALLBACK_LANGUAGE" default:"en"`
	Timeout          time.Duration `envconfig:"CARDFOLIO_CATALOG_TIMEOUT" default:"10s"`
	CacheTTL         time.Duration `envconfig:"CARDFOLIO_CATALOG_CACHE_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARDFOLIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARDFOLIO_AUTO_MIGRATE" default:"false"`
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
