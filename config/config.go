package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

// 通知模式
const (
	NotifyModeSMTP  = "smtp"  // 提交请假时同步发送邮件
	NotifyModeQueue = "queue" // 投递到 RabbitMQ，由 worker 发送
)

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"alms"`

	// 数据库配置，DATABASE_DSN 为空时使用 PostgreSQL 分项配置拼接
	DatabaseDriver      string   `env:"DATABASE_DRIVER" envDefault:"postgres"` // postgres, mysql, sqlite
	DatabaseDSN         string   `env:"DATABASE_DSN"`
	DatabaseReplicaDSNs []string `env:"DATABASE_REPLICA_DSNS" envSeparator:","`

	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"alms"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	DatabaseMaxIdle    int    `env:"DATABASE_MAX_IDLE" envDefault:"10"`
	DatabaseMaxOpen    int    `env:"DATABASE_MAX_OPEN" envDefault:"50"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"alms"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// 会话配置，secret 为空时进程启动时随机生成，重启后会话失效
	SessionSecret string `env:"SESSION_SECRET"`
	SessionMaxAge int    `env:"SESSION_MAX_AGE" envDefault:"43200"` // 秒
	CSRFSecret    string `env:"CSRF_SECRET"`
	CSRFEnabled   bool   `env:"CSRF_ENABLED" envDefault:"true"`

	// 请假通知邮件配置
	SMTPHost             string        `env:"SMTP_HOST"`
	SMTPPort             int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername         string        `env:"SMTP_USERNAME"`
	SMTPPassword         string        `env:"SMTP_PASSWORD"`
	SMTPSender           string        `env:"SMTP_SENDER"`
	LeaveNotifyRecipient string        `env:"LEAVE_NOTIFY_RECIPIENT"`
	SMTPTimeout          time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
	NotifyMode           string        `env:"NOTIFY_MODE" envDefault:"smtp"`
	NotifyBreakerFails   int           `env:"NOTIFY_BREAKER_FAILURES" envDefault:"3"`
	NotifyBreakerReset   time.Duration `env:"NOTIFY_BREAKER_RESET" envDefault:"30s"`

	// 登录限流配置
	RateLimitEnabled      bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRateLimitMax     int  `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"5"`
	LoginRateLimitWindow  int  `env:"LOGIN_RATE_LIMIT_WINDOW" envDefault:"60"` // 秒
	LoginRateLimitBlockTo int  `env:"LOGIN_RATE_LIMIT_BLOCK" envDefault:"900"` // 秒

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪与指标
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`
}

// Init 读取 .env 与环境变量到 Cfg
func Init() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	cfg, err := Parse()
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Parse 只解析环境变量，不修改全局配置
func Parse() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("DATABASE_DRIVER must be one of postgres, mysql, sqlite")
	}

	if c.DatabaseDriver != "postgres" && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required for driver " + c.DatabaseDriver)
	}

	switch c.NotifyMode {
	case NotifyModeSMTP, NotifyModeQueue:
	default:
		return errors.New("NOTIFY_MODE must be smtp or queue")
	}

	return nil
}

// ValidateNotifier 邮件通知相关配置必须齐全，缺失时启动即失败
func (c *Config) ValidateNotifier() error {
	missing := []string{}
	if c.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.SMTPPort <= 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if c.SMTPUsername == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if c.SMTPPassword == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if c.SMTPSender == "" {
		missing = append(missing, "SMTP_SENDER")
	}
	if c.LeaveNotifyRecipient == "" {
		missing = append(missing, "LEAVE_NOTIFY_RECIPIENT")
	}

	if len(missing) > 0 {
		return errors.New("missing env: " + strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) GetDSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// NeedsRedis 限流与队列去重依赖 Redis
func (c *Config) NeedsRedis() bool {
	return c.RateLimitEnabled || c.NotifyMode == NotifyModeQueue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
