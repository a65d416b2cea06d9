package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSessionTTL    = 168 * time.Hour
	defaultLogoMaxBytes  = 2 << 20
	defaultTimezone      = "UTC"
	minSigningSecretSize = 32
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
}

// AppConfig はドメイン全体に関わる設定です。
type AppConfig struct {
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// ServerConfig は HTTP / gRPC サーバーに関する設定です。
type ServerConfig struct {
	HTTPListenAddr string   `yaml:"http_listen_addr"`
	GRPCListenAddr string   `yaml:"grpc_listen_addr"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// AuthConfig はセッショントークンとアカウントに関する設定です。
type AuthConfig struct {
	SigningSecret            string        `yaml:"signing_secret"`
	Issuer                   string        `yaml:"issuer"`
	SessionTTL               time.Duration `yaml:"-"`
	SessionTTLRaw            string        `yaml:"session_ttl"`
	RequireEmailConfirmation bool          `yaml:"require_email_confirmation"`
}

// StorageConfig はロゴ画像の保存先に関する設定です。
type StorageConfig struct {
	// Driver は "file" または "gcs" です。
	Driver       string `yaml:"driver"`
	Dir          string `yaml:"dir"`
	PublicURL    string `yaml:"public_url"`
	Bucket       string `yaml:"bucket"`
	LogoMaxBytes int64  `yaml:"logo_max_bytes"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.HTTPListenAddr == "" {
		return fmt.Errorf("config: server.http_listen_addr must be set")
	}

	if err := c.App.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Auth.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Storage.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (a *AppConfig) validateAndNormalize() error {
	if strings.TrimSpace(a.Timezone) == "" {
		a.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return fmt.Errorf("config: app.timezone: %w", err)
	}
	a.Location = loc
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (a *AuthConfig) validateAndNormalize() error {
	if len(a.SigningSecret) < minSigningSecretSize {
		return fmt.Errorf("config: auth.signing_secret must be at least %d bytes", minSigningSecretSize)
	}
	if a.Issuer == "" {
		a.Issuer = "staffboard"
	}

	ttl, err := parseDurationAllowEmpty(a.SessionTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.session_ttl: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	a.SessionTTL = ttl

	return nil
}

func (s *StorageConfig) validateAndNormalize() error {
	if s.Driver == "" {
		s.Driver = "file"
	}
	if s.LogoMaxBytes <= 0 {
		s.LogoMaxBytes = defaultLogoMaxBytes
	}

	switch s.Driver {
	case "file":
		if s.Dir == "" {
			return fmt.Errorf("config: storage.dir must be set for file driver")
		}
		if s.PublicURL == "" {
			return fmt.Errorf("config: storage.public_url must be set for file driver")
		}
	case "gcs":
		if s.Bucket == "" {
			return fmt.Errorf("config: storage.bucket must be set for gcs driver")
		}
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", s.Driver)
	}

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
