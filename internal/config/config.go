package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Mail     MailConfig     `mapstructure:"mail"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Database string `mapstructure:"database"`

	// Passfile is the PostgreSQL-format password file consulted for the
	// connection password. Overridable via PGPASSFILE; empty means
	// ~/.pgpass.
	Passfile string `mapstructure:"passfile"`
}

type BackupConfig struct {
	Dir           string         `mapstructure:"dir"`
	Prefix        string         `mapstructure:"prefix"`
	Schedule      string         `mapstructure:"schedule"`
	RetentionDays int            `mapstructure:"retention_days"`
	LockFile      string         `mapstructure:"lock_file"`
	UploadTargets []UploadTarget `mapstructure:"upload_targets"`
}

type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// Configured reports whether a mail transport is available. When it is not,
// the run degrades to printing the artifact path instead of failing.
func (m MailConfig) Configured() bool {
	return m.SMTPHost != ""
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram
	BotToken   string `mapstructure:"bot_token"`
	ChatID     string `mapstructure:"chat_id"`
	SendFile   bool   `mapstructure:"send_file"`
	NotifyOnly bool   `mapstructure:"notify_only"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "hivekeep")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "chitral_hive")
	v.SetDefault("database.database", "chitral_hive")
	v.SetDefault("database.passfile", "")
	v.SetDefault("backup.dir", "/var/backups/chitralhive")
	v.SetDefault("backup.prefix", "chitral_hive")
	// First of every month at 02:00.
	v.SetDefault("backup.schedule", "0 0 2 1 * *")
	v.SetDefault("backup.retention_days", 0)
	v.SetDefault("backup.lock_file", "/tmp/hivekeep.lock")
	v.SetDefault("mail.smtp_port", 587)

	if err := v.BindEnv("database.passfile", "PGPASSFILE"); err != nil {
		return nil, fmt.Errorf("failed to bind PGPASSFILE: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.Database.Username == "" {
		return fmt.Errorf("database.username is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port must be in 1..65535, got %d", c.Database.Port)
	}

	if c.Backup.Dir == "" {
		return fmt.Errorf("backup.dir is required")
	}
	if c.Backup.Prefix == "" {
		return fmt.Errorf("backup.prefix is required")
	}
	if c.Backup.RetentionDays < 0 {
		return fmt.Errorf("backup.retention_days must not be negative")
	}

	if c.Mail.Configured() {
		if c.Mail.From == "" {
			return fmt.Errorf("mail.from is required when mail.smtp_host is set")
		}
		if c.Mail.To == "" {
			return fmt.Errorf("mail.to is required when mail.smtp_host is set")
		}
	}

	for i, target := range c.Backup.UploadTargets {
		if target.Type == "" {
			return fmt.Errorf("upload_targets[%d]: type is required", i)
		}
	}

	return nil
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
