package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/BreadYang/scrape-social-media-in-area/geo"
	"github.com/BreadYang/scrape-social-media-in-area/tokens"
	"github.com/BreadYang/scrape-social-media-in-area/twitter"
)

// EnvPrefix — префикс переменных окружения, перекрывающих файл.
const EnvPrefix = "GEO_LOGGER"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config агрегирует значения конфигурации из YAML файла и переменных окружения.
type Config struct {
	Twitter  TwitterConfig     `mapstructure:"twitter"`
	Postgres PostgresConfig    `mapstructure:"postgres"`
	Store    StoreConfig       `mapstructure:"store"`
	Stream   StreamConfig      `mapstructure:"stream"`
	Areas    map[string]string `mapstructure:"areas"`
	Log      LogConfig         `mapstructure:"log"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// TwitterConfig содержит пул учётных данных и адреса API.
type TwitterConfig struct {
	Credentials     []tokens.CredentialSet `mapstructure:"credentials"`
	CredentialIndex int                    `mapstructure:"credential_index"`
	CredentialsFile string                 `mapstructure:"credentials_file"`
	StreamURL       string                 `mapstructure:"stream_url"`
	VerifyURL       string                 `mapstructure:"verify_url"`
}

// PostgresConfig хранит параметры подключения к пулу базы данных.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	DB       string `mapstructure:"db"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN собирает строку подключения для pgx/pgxpool и golang-migrate.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

// StoreConfig выбирает хранилище записей.
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Table      string `mapstructure:"table"`
}

// StreamConfig задаёт параметры чтения стрима и переподключения.
type StreamConfig struct {
	MaxBufferBytes   int           `mapstructure:"max_buffer_bytes"`
	ReadChunkBytes   int           `mapstructure:"read_chunk_bytes"`
	InsertTimeout    time.Duration `mapstructure:"insert_timeout"`
	Reconnect        bool          `mapstructure:"reconnect"`
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
	MaxReconnects    int           `mapstructure:"max_reconnects"`
}

// LogConfig задаёт уровень и формат slog.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel переводит уровень из конфига в slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// MetricsConfig — адрес HTTP сервера /metrics; пустой адрес отключает сервер.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load читает YAML файл (если path не пуст), переменные окружения с префиксом
// GEO_LOGGER_ и возвращает валидированную Config.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("twitter.credential_index", 0)
	v.SetDefault("twitter.credentials_file", tokens.DefaultFile)
	v.SetDefault("twitter.stream_url", twitter.DefaultStreamURL)
	v.SetDefault("twitter.verify_url", twitter.DefaultVerifyURL)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.db", "")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 4)

	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.sqlite_path", "tweets.db")
	v.SetDefault("store.table", "tweets")

	v.SetDefault("stream.max_buffer_bytes", 1<<20)
	v.SetDefault("stream.read_chunk_bytes", 4096)
	v.SetDefault("stream.insert_timeout", "5s")
	v.SetDefault("stream.reconnect", true)
	v.SetDefault("stream.reconnect_backoff", "5s")
	v.SetDefault("stream.max_reconnects", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.addr", "")
}

// Area возвращает область по имени: сначала из конфига, затем из встроенных пресетов.
func (c Config) Area(name string) (geo.Box, error) {
	return geo.Lookup(name, c.Areas)
}

func (c Config) validate() error {
	if c.Twitter.CredentialIndex < 0 {
		return errors.New("config: twitter.credential_index должен быть неотрицательным")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.Host == "" {
			return errors.New("config: требуется postgres.host")
		}
		if c.Postgres.Port == "" {
			return errors.New("config: требуется postgres.port")
		}
		if c.Postgres.DB == "" {
			return errors.New("config: требуется postgres.db")
		}
		if c.Postgres.User == "" {
			return errors.New("config: требуется postgres.user")
		}
		if c.Postgres.MaxConns <= 0 {
			return errors.New("config: postgres.max_conns должен быть больше нуля")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("config: требуется store.sqlite_path")
		}
	default:
		return fmt.Errorf("config: неизвестный store.driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.Table) == "" {
		return errors.New("config: требуется store.table")
	}

	if c.Stream.MaxBufferBytes <= 0 {
		return errors.New("config: stream.max_buffer_bytes должен быть больше нуля")
	}
	if c.Stream.ReadChunkBytes <= 0 {
		return errors.New("config: stream.read_chunk_bytes должен быть больше нуля")
	}
	if c.Stream.InsertTimeout <= 0 {
		return errors.New("config: stream.insert_timeout должен быть больше нуля")
	}
	if c.Stream.Reconnect && c.Stream.ReconnectBackoff <= 0 {
		return errors.New("config: stream.reconnect_backoff должен быть больше нуля")
	}
	if c.Stream.MaxReconnects < 0 {
		return errors.New("config: stream.max_reconnects должен быть неотрицательным")
	}

	for name, spec := range c.Areas {
		if _, err := geo.ParseBox(spec); err != nil {
			return fmt.Errorf("config: areas.%s: %w", name, err)
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log.format должен быть text или json, получено %q", c.Log.Format)
	}

	return nil
}
