package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logger  LoggerConfig  `yaml:"logger"`
	User    UserConfig    `yaml:"user"`
	Members []MemberEntry `yaml:"members"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	// Path is the sqlite file holding the persisted board snapshot.
	Path string `yaml:"path"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

// UserConfig identifies the local board owner. Every mutation is attributed
// to this member; there is no other identity in the system.
type UserConfig struct {
	ID   uuid.UUID `yaml:"id"`
	Name string    `yaml:"name"`
}

// MemberEntry is a member known to the board, used for @mention matching
// and member filters. The current user should be listed here as well.
type MemberEntry struct {
	ID   uuid.UUID `yaml:"id"`
	Name string    `yaml:"name"`
}

// DefaultUserID is used when no user identity is configured.
var DefaultUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Load reads the configuration file at path, fills defaults for anything
// missing and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            "8700",
			Mode:            "debug",
			BasePath:        "/api/board",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Path: "board.db",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		User: UserConfig{
			ID:   DefaultUserID,
			Name: "me",
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = port
		}
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if dbPath := os.Getenv("BOARD_DB_PATH"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if userID := os.Getenv("BOARD_USER_ID"); userID != "" {
		if id, err := uuid.Parse(userID); err == nil {
			cfg.User.ID = id
		}
	}
	if userName := os.Getenv("BOARD_USER_NAME"); userName != "" {
		cfg.User.Name = userName
	}

	if cfg.User.ID == uuid.Nil {
		cfg.User.ID = DefaultUserID
	}

	return cfg, nil
}

// KnownMembers returns the configured member directory, guaranteeing the
// current user is present.
func (c *Config) KnownMembers() []MemberEntry {
	for _, m := range c.Members {
		if m.ID == c.User.ID {
			return c.Members
		}
	}
	return append([]MemberEntry{{ID: c.User.ID, Name: c.User.Name}}, c.Members...)
}
