package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "CRYPTOCART"

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	DebugLog DebugLogConfig `mapstructure:"debug_log"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	Store    StoreConfig    `mapstructure:"store"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Mail     MailConfig     `mapstructure:"mail"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	SiteURL         string        `mapstructure:"site_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects the backend for orders and options: "postgres" or "memory".
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type CryptoConfig struct {
	Keys           map[int][]byte
	CurrentVersion int    `mapstructure:"current_key_version"`
	Algorithm      string `mapstructure:"crypto_algorithm"`
}

type DatabaseConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Name              string        `mapstructure:"name"`
	SSLMode           string        `mapstructure:"sslmode"`
	MaxOpenConns      int           `mapstructure:"max_open_conns"`
	MaxIdleConns      int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime   time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime   time.Duration `mapstructure:"conn_max_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

type LoggerConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	Output       string `mapstructure:"output"`
	EnableColors bool   `mapstructure:"enable_colors"`
	FilePath     string `mapstructure:"file_path"`
	MaxSize      int    `mapstructure:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"`
	Compress     bool   `mapstructure:"compress"`
}

// DebugLogConfig controls the plugin debug log. Entries are written only when
// Enabled is set, unless the caller forces them.
type DebugLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// StoreConfig mirrors the shop-wide settings the gateway reads.
type StoreConfig struct {
	TaxEnabled       bool     `mapstructure:"tax_enabled"`
	PricesIncludeTax bool     `mapstructure:"prices_include_tax"`
	UploadsDir       string   `mapstructure:"uploads_dir"`
	PaymentMethods   []string `mapstructure:"payment_methods"`
}

type GatewayConfig struct {
	CheckoutURL string `mapstructure:"checkout_url"`
}

type AdminConfig struct {
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	NonceSecret string        `mapstructure:"nonce_secret"`
	NonceTTL    time.Duration `mapstructure:"nonce_ttl"`
}

type MailConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	From          string `mapstructure:"from"`
	FromName      string `mapstructure:"from_name"`
	TLSMode       string `mapstructure:"tls_mode"`
	SkipVerifyTLS bool   `mapstructure:"skip_verify_tls"`
}

func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	DebugChatID int64  `mapstructure:"debug_chat_id"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.DebugChatID != 0
}

type Loader interface {
	Load(ctx context.Context) (*Config, error)
}

type viperLoader struct {
	configPath string
	validator  Validator
}

func NewViperLoader(configPath string, validator Validator) Loader {
	if configPath == "" {
		configPath = "."
	}
	return &viperLoader{
		configPath: configPath,
		validator:  validator,
	}
}

func (l *viperLoader) Load(ctx context.Context) (*Config, error) {
	cfg := SetDefaultConfig()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// env config
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(l.configPath)
	v.AddConfigPath(".")
	if err := v.MergeInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l.BindEnvVariables(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	keys, err := loadCryptoKeys(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to load crypto keys: %w", err)
	}
	cfg.Crypto.Keys = keys

	if cfg.Crypto.CurrentVersion == 0 {
		cfg.Crypto.CurrentVersion = getLastCryptoKeyVersion(keys)
	}

	cfg.normalize()

	if err := l.validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config failed validation: %w", err)
	}

	return cfg, nil
}

func (l *viperLoader) BindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("env")
	// Server
	_ = v.BindEnv("server.host")
	_ = v.BindEnv("server.port")
	_ = v.BindEnv("server.site_url")
	// Storage
	_ = v.BindEnv("storage.driver")
	// Database
	_ = v.BindEnv("database.host")
	_ = v.BindEnv("database.port")
	_ = v.BindEnv("database.user")
	_ = v.BindEnv("database.password")
	_ = v.BindEnv("database.name")
	_ = v.BindEnv("database.sslmode")
	_ = v.BindEnv("database.max_open_conns")
	_ = v.BindEnv("database.max_idle_conns")
	// Logger
	_ = v.BindEnv("logger.level")
	_ = v.BindEnv("logger.format")
	_ = v.BindEnv("logger.output")
	_ = v.BindEnv("logger.enable_colors")
	_ = v.BindEnv("logger.file_path")
	_ = v.BindEnv("logger.max_size")
	_ = v.BindEnv("logger.max_backups")
	_ = v.BindEnv("logger.max_age")
	_ = v.BindEnv("logger.compress")
	// Debug log
	_ = v.BindEnv("debug_log.enabled")
	_ = v.BindEnv("debug_log.path")
	// Store
	_ = v.BindEnv("store.tax_enabled")
	_ = v.BindEnv("store.prices_include_tax")
	_ = v.BindEnv("store.uploads_dir")
	// Gateway
	_ = v.BindEnv("gateway.checkout_url")
	// Admin
	_ = v.BindEnv("admin.username")
	_ = v.BindEnv("admin.password")
	_ = v.BindEnv("admin.nonce_secret")
	_ = v.BindEnv("admin.nonce_ttl")
	// Mail
	_ = v.BindEnv("mail.host")
	_ = v.BindEnv("mail.port")
	_ = v.BindEnv("mail.username")
	_ = v.BindEnv("mail.password")
	_ = v.BindEnv("mail.from")
	_ = v.BindEnv("mail.from_name")
	_ = v.BindEnv("mail.tls_mode")
	// Telegram
	_ = v.BindEnv("telegram.bot_token")
	_ = v.BindEnv("telegram.debug_chat_id")
	// Crypto
	_ = v.BindEnv("crypto.current_key_version")
	_ = v.BindEnv("crypto.crypto_algorithm")
}

// normalize fills values derived from other settings.
func (c *Config) normalize() {
	c.Server.SiteURL = strings.TrimRight(c.Server.SiteURL, "/")
	if c.DebugLog.Path == "" {
		c.DebugLog.Path = filepath.Join(c.Store.UploadsDir, "wprobo-logs", "debug.log")
	}
}

var cryptoKeyEnvRe = regexp.MustCompile(`^` + EnvPrefix + `_SECRET_ENCRYPTION_KEY(?:_V(\d+))?$`)

// loadCryptoKeys collects CRYPTOCART_SECRET_ENCRYPTION_KEY_V{N} variables and
// decodes each base64 value into key bytes.
func loadCryptoKeys(environ []string) (map[int][]byte, error) {
	result := make(map[int][]byte)

	for _, e := range environ {
		name, val, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}

		m := cryptoKeyEnvRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		ver := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid key version in env var %s: %w", name, err)
			}
			ver = n
		}

		decoded, err := base64.StdEncoding.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 for %s: %w", name, err)
		}

		result[ver] = decoded
	}

	return result, nil
}

func getLastCryptoKeyVersion(keys map[int][]byte) int {
	maxVer := 0
	for ver := range keys {
		if ver > maxVer {
			maxVer = ver
		}
	}
	return maxVer
}

func Load(ctx context.Context, configPath string) (*Config, error) {
	loader := NewViperLoader(configPath, NewValidator())
	return loader.Load(ctx)
}

func (c *DatabaseConfig) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}
