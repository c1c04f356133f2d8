package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	App       AppConfig       `mapstructure:"app"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Upload    UploadConfig    `mapstructure:"upload"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Mail      MailConfig      `mapstructure:"mail"`
	Push      PushConfig      `mapstructure:"push"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	PublicURL   string   `mapstructure:"public_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// StoreConfig 订单/上传记录存储，driver: file | postgres
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	FilePath string `mapstructure:"file_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// DSN returns the postgres URL used by golang-migrate.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig Addr 为空时不启用缓存
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// UploadConfig driver: local | oss
type UploadConfig struct {
	Driver   string `mapstructure:"driver"`
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
	BaseURL  string `mapstructure:"base_url"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
}

// MailConfig driver: log | directmail
type MailConfig struct {
	Driver          string `mapstructure:"driver"`
	RegionID        string `mapstructure:"region_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	AccountName     string `mapstructure:"account_name"` // 发信地址
	FromAlias       string `mapstructure:"from_alias"`
	StaffAddress    string `mapstructure:"staff_address"`
}

type PushConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	AppKey          int64  `mapstructure:"app_key"`
	RegionID        string `mapstructure:"region_id"`
	StaffAccount    string `mapstructure:"staff_account"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

// WorkerConfig 异步通知任务池
type WorkerConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
	MaxRetry  int `mapstructure:"max_retry"`
	Backoff   int `mapstructure:"backoff"` // 秒
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Stripe.SecretKey == "" {
		return errors.New("stripe.secret_key is required")
	}
	if c.Stripe.WebhookSecret == "" {
		return errors.New("stripe.webhook_secret is required")
	}
	if c.Stripe.SuccessURL == "" || c.Stripe.CancelURL == "" {
		return errors.New("stripe success and cancel URLs are required")
	}

	switch c.Store.Driver {
	case "file":
		if c.Store.FilePath == "" {
			return errors.New("store.file_path is required for the file driver")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return errors.New("database configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Upload.Driver {
	case "local":
		if c.Upload.Dir == "" {
			return errors.New("upload.dir is required for the local driver")
		}
	case "oss":
		if c.OSS.Endpoint == "" || c.OSS.BucketName == "" {
			return errors.New("oss configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown upload driver %q", c.Upload.Driver)
	}

	switch c.Mail.Driver {
	case "log":
	case "directmail":
		if c.Mail.AccessKeyID == "" || c.Mail.AccountName == "" {
			return errors.New("directmail configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown mail driver %q", c.Mail.Driver)
	}

	if c.Admin.PasswordHash == "" {
		return errors.New("admin.password_hash is required")
	}

	if c.Worker.Workers < 0 || c.Worker.MaxRetry < 0 || c.Worker.Backoff < 0 {
		return errors.New("worker settings must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.file_path", "data/db.json")
	v.SetDefault("jwt.expire", 12)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("stripe.currency", "usd")
	v.SetDefault("upload.driver", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 25<<20)
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.region_id", "cn-hangzhou")
	v.SetDefault("mail.from_alias", "Poster Shop")
	v.SetDefault("ratelimit.qps", 5)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("worker.workers", 0)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.backoff", 2)
}

// LoadConfig 加载配置：.env -> config[.env].yaml -> 环境变量
func LoadConfig(paths ...string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 常用密钥允许直接用短环境变量覆盖
	if s := os.Getenv("STRIPE_SECRET_KEY"); s != "" {
		cfg.Stripe.SecretKey = s
	}
	if s := os.Getenv("STRIPE_WEBHOOK_SECRET"); s != "" {
		cfg.Stripe.WebhookSecret = s
	}
	if s := os.Getenv("JWT_SECRET"); s != "" {
		cfg.JWT.Secret = s
	}
	if cfg.App.Env == "" {
		cfg.App.Env = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}
