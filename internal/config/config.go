package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	UI        UIConfig        `mapstructure:"ui"`
	Datastore DatastoreConfig `mapstructure:"datastore"`
	Log       LogConfig       `mapstructure:"log"`
	Export    ExportConfig    `mapstructure:"export"`
}

type UIConfig struct {
	Theme           string `mapstructure:"theme"`
	MouseEnabled    bool   `mapstructure:"mouse_enabled"`
	PanelWidthRatio int    `mapstructure:"panel_width_ratio"`
	MaxCellWidth    int    `mapstructure:"max_cell_width"`
}

type DatastoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	Path     string         `mapstructure:"path"`
	Watch    bool           `mapstructure:"watch"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig describes the PostgreSQL datastore connection
type PostgresConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Database   string `mapstructure:"database"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	SSLMode    string `mapstructure:"ssl_mode"`
	UseKeyring bool   `mapstructure:"use_keyring"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	JSON       bool   `mapstructure:"json"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:           "default",
			MouseEnabled:    true,
			PanelWidthRatio: 30,
			MaxCellWidth:    40,
		},
		Datastore: DatastoreConfig{
			Driver: "file",
			Path:   "products.yaml",
			Watch:  true,
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "prefer",
			},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.panel_width_ratio", d.UI.PanelWidthRatio)
	v.SetDefault("ui.max_cell_width", d.UI.MaxCellWidth)
	v.SetDefault("datastore.driver", d.Datastore.Driver)
	v.SetDefault("datastore.path", d.Datastore.Path)
	v.SetDefault("datastore.watch", d.Datastore.Watch)
	v.SetDefault("datastore.postgres.host", d.Datastore.Postgres.Host)
	v.SetDefault("datastore.postgres.port", d.Datastore.Postgres.Port)
	v.SetDefault("datastore.postgres.database", "")
	v.SetDefault("datastore.postgres.user", "")
	v.SetDefault("datastore.postgres.password", "")
	v.SetDefault("datastore.postgres.ssl_mode", d.Datastore.Postgres.SSLMode)
	v.SetDefault("datastore.postgres.use_keyring", false)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("export.dir", d.Export.Dir)
}

// Flags registers the command-line overrides understood by Load
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lazyprod", pflag.ContinueOnError)
	fs.String("config", "", "path to config file")
	fs.String("driver", "", "datastore driver (file, sqlite, postgres)")
	fs.String("datastore", "", "datastore path for file and sqlite drivers")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "log file path")
	return fs
}

// Load loads configuration from files, environment and flags.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	explicit := ""
	if flags != nil {
		explicit, _ = flags.GetString("config")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		// Add config paths in priority order
		if configPath, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("LAZYPROD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindings := map[string]string{
			"datastore.driver": "driver",
			"datastore.path":   "datastore",
			"log.level":        "log-level",
			"log.file":         "log-file",
		}
		for key, name := range bindings {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || explicit != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyprod"), nil
}
