package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name           string     `mapstructure:"name"`
	Host           string     `mapstructure:"host"`
	Port           int        `mapstructure:"port"`
	Mode           string     `mapstructure:"mode"`            // debug, release, test
	RequestTimeout int        `mapstructure:"request_timeout"` // 秒, 数据库等待超过该时间返回 503
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	MaxAge       int      `mapstructure:"max_age"` // 秒
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres, mysql, sqlite, memory
	DSN             string `mapstructure:"dsn"`    // 非空时优先于 host/port 等字段
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	FixturesFile    string `mapstructure:"fixtures_file"` // memory 驱动的演示数据
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT       JWTConfig       `mapstructure:"jwt"`
	LDAP      LDAPConfig      `mapstructure:"ldap"`
	Local     LocalConfig     `mapstructure:"local"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	Issuer             string `mapstructure:"issuer"`
	AccessTokenExpire  int    `mapstructure:"access_token_expire"`  // 秒
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire"` // 秒
}

// LDAPConfig LDAP配置
type LDAPConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	Host         string         `mapstructure:"host"`
	Port         int            `mapstructure:"port"`
	UseSSL       bool           `mapstructure:"use_ssl"`
	BindDN       string         `mapstructure:"bind_dn"`
	BindPassword string         `mapstructure:"bind_password"`
	BaseDN       string         `mapstructure:"base_dn"`
	UserFilter   string         `mapstructure:"user_filter"`
	Attributes   LDAPAttributes `mapstructure:"attributes"`
}

// LDAPAttributes LDAP属性映射
type LDAPAttributes struct {
	Username  string `mapstructure:"username"`
	Email     string `mapstructure:"email"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
}

// LocalConfig 本地用户配置
type LocalConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	AllowRegistration bool `mapstructure:"allow_registration"`
}

// RateLimitConfig 登录/注册限流
type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RequestsPerSec  float64 `mapstructure:"requests_per_sec"`
	Burst           int     `mapstructure:"burst"`
	CleanupSchedule string  `mapstructure:"cleanup_schedule"` // cron 表达式
	IdleTTL         int     `mapstructure:"idle_ttl"`         // 秒
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "collabtrack")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", 10)
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("server.cors.max_age", 43200)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.fixtures_file", "")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "collabtrack")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// 无默认值的键也要注册, 否则 AutomaticEnv 不会在 Unmarshal 时读取对应环境变量
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "collabtrack")
	v.SetDefault("auth.jwt.access_token_expire", 7200)
	v.SetDefault("auth.jwt.refresh_token_expire", 604800)
	v.SetDefault("auth.local.enabled", true)
	v.SetDefault("auth.local.allow_registration", true)
	v.SetDefault("auth.ldap.enabled", false)
	v.SetDefault("auth.ldap.host", "")
	v.SetDefault("auth.ldap.port", 389)
	v.SetDefault("auth.ldap.bind_dn", "")
	v.SetDefault("auth.ldap.bind_password", "")
	v.SetDefault("auth.ldap.base_dn", "")
	v.SetDefault("auth.ldap.user_filter", "(uid=%s)")
	v.SetDefault("auth.ldap.attributes.username", "uid")
	v.SetDefault("auth.ldap.attributes.email", "mail")
	v.SetDefault("auth.ldap.attributes.first_name", "givenName")
	v.SetDefault("auth.ldap.attributes.last_name", "sn")
	v.SetDefault("auth.rate_limit.enabled", true)
	v.SetDefault("auth.rate_limit.requests_per_sec", 1)
	v.SetDefault("auth.rate_limit.burst", 10)
	v.SetDefault("auth.rate_limit.cleanup_schedule", "@every 5m")
	v.SetDefault("auth.rate_limit.idle_ttl", 600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/collabtrack.log")
}

// Load 加载配置
// configPath 为空时依次查找 ./configs/config.yaml 与 ./config.yaml, 找不到文件则只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 读取环境变量, auth.jwt.secret 对应 AUTH_JWT_SECRET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

// Validate 校验必填配置
func (c *Config) Validate() error {
	if c.Auth.JWT.Secret == "" {
		return fmt.Errorf("auth.jwt.secret 未配置")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port 非法: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	return nil
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout 请求超时
func (c *ServerConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
		)
	case "sqlite":
		return c.Database + ".db"
	case "memory":
		return "file:collabtrack?mode=memory&cache=shared"
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host,
			c.Port,
			c.Username,
			c.Password,
			c.Database,
			c.SSLMode,
		)
	}
}
