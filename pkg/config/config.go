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
	RateLimit    RateLimitConfig
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

type AppConfig struct {
	Env          string `envconfig:"ANACREON_APP_ENV" required:"true"`
	Port         string `envconfig:"ANACREON_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ANACREON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ANACREON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ANACREON_DB_DSN"`
	Driver string `envconfig:"ANACREON_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ANACREON_DB_HOST"`
	LegacyPort     int    `envconfig:"ANACREON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ANACREON_DB_USER"`
	LegacyPassword string `envconfig:"ANACREON_DB_PASSWORD"`
	LegacyName     string `envconfig:"ANACREON_DB_NAME"`
	LegacySSLMode  string `envconfig:"ANACREON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ANACREON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ANACREON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ANACREON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ANACREON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ANACREON_REDIS_URL"`
	Address      string        `envconfig:"ANACREON_REDIS_ADDR"`
	Password     string        `envconfig:"ANACREON_REDIS_PASSWORD"`
	DB           int           `envconfig:"ANACREON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ANACREON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ANACREON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ANACREON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ANACREON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ANACREON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ANACREON_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ANACREON_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ANACREON_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"ANACREON_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ANACREON_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ANACREON_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ANACREON_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ANACREON_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ANACREON_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	Window   time.Duration `envconfig:"ANACREON_RATE_LIMIT_WINDOW" default:"1m"`
	V1Limit  int           `envconfig:"ANACREON_RATE_LIMIT_V1_LIMIT" default:"120"`
	IPLimit  int           `envconfig:"ANACREON_RATE_LIMIT_IP_LIMIT" default:"300"`
	Disabled bool          `envconfig:"ANACREON_RATE_LIMIT_DISABLED" default:"false"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ANACREON_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ANACREON_AUTO_MIGRATE" default:"false"`
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
