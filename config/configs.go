package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TRIALMAP"

// DefaultEntityTypes are the experiment entity types role permissions are derived for.
var DefaultEntityTypes = []string{
	"rothamsted_researcher",
	"rothamsted_program",
	"rothamsted_experiment",
	"rothamsted_design",
	"rothamsted_proposal",
}

type Config struct {
	MainRouter string           `mapstructure:"mainrouter"`
	Debug      bool             `mapstructure:"debug"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Import     ImportConfig     `mapstructure:"import"`
	Permission PermissionConfig `mapstructure:"permission"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, postgres or mysql
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Path     string `mapstructure:"path"` // sqlite only
}

type ImportConfig struct {
	MaxUploadBytes int64 `mapstructure:"maxuploadbytes"`
}

type PermissionConfig struct {
	EntityTypes []string `mapstructure:"entitytypes"`
}

// MessagesConfig controls the websocket message stream. With no allowed
// origins only same-origin browsers may subscribe; "*" admits any origin.
type MessagesConfig struct {
	AllowedOrigins []string      `mapstructure:"allowedorigins"`
	WriteTimeout   time.Duration `mapstructure:"writetimeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mainrouter", ":8426")
	v.SetDefault("debug", false)
	v.SetDefault("log.mode", "development")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.dbname", "trialmap")
	v.SetDefault("database.path", "trialmap.db")
	v.SetDefault("import.maxuploadbytes", 32<<20)
	v.SetDefault("permission.entitytypes", DefaultEntityTypes)
	v.SetDefault("messages.allowedorigins", []string{})
	v.SetDefault("messages.writetimeout", "5s")
}

// Load reads configuration from path, or from config.yaml in the working
// directory when path is empty. A missing file leaves the defaults in place;
// TRIALMAP_* environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import.maxuploadbytes must be positive, got %d", c.Import.MaxUploadBytes)
	}
	if len(c.Permission.EntityTypes) == 0 {
		return errors.New("permission.entitytypes must not be empty")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	db := c.Database
	switch db.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", db.Host, db.Username, db.Password, db.Dbname, db.Port)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", db.Username, db.Password, db.Host, db.Port, db.Dbname)
	default:
		return db.Path
	}
}
