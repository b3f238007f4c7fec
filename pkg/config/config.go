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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"STAGELINK_APP_ENV" required:"true"`
	Port         string `envconfig:"STAGELINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STAGELINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STAGELINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STAGELINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STAGELINK_DB_DSN"`
	Driver string `envconfig:"STAGELINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STAGELINK_DB_HOST"`
	LegacyPort     int    `envconfig:"STAGELINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STAGELINK_DB_USER"`
	LegacyPassword string `envconfig:"STAGELINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"STAGELINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"STAGELINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STAGELINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STAGELINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STAGELINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STAGELINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STAGELINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STAGELINK_REDIS_ADDR"`
	Password     string        `envconfig:"STAGELINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"STAGELINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STAGELINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STAGELINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STAGELINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STAGELINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STAGELINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STAGELINK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STAGELINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STAGELINK_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STAGELINK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STAGELINK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"STAGELINK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STAGELINK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingsTopic            string `envconfig:"STAGELINK_PUBSUB_BOOKINGS_TOPIC" required:"true"`
	BookingsSubscription     string `envconfig:"STAGELINK_PUBSUB_BOOKINGS_SUBSCRIPTION"`
	ContractsTopic           string `envconfig:"STAGELINK_PUBSUB_CONTRACTS_TOPIC" required:"true"`
	ContractsSubscription    string `envconfig:"STAGELINK_PUBSUB_CONTRACTS_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"STAGELINK_PUBSUB_NOTIFICATION_TOPIC" default:"sl-notification-events"`
	NotificationSubscription string `envconfig:"STAGELINK_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STAGELINK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STAGELINK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STAGELINK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"STAGELINK_CRON_INTERVAL" default:"10m"`
}

type RateLimitConfig struct {
	RequestsPerWindow int           `envconfig:"STAGELINK_RATE_LIMIT_REQUESTS" default:"120"`
	Window            time.Duration `envconfig:"STAGELINK_RATE_LIMIT_WINDOW" default:"1m"`
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
