package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Dr-Payne25/GVisit/auth"
	"github.com/Dr-Payne25/GVisit/models"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"5002"`
	Password string `env:"PASSWORD" envDefault:"GVISIT"`

	// SecretKey signs remember-me tokens and salts IP hashes
	SecretKey          string `env:"SECRET_KEY"`
	SecretKeyGenerated bool

	DataDir      string `env:"DATA_DIR" envDefault:"."`
	JournalFile  string `env:"JOURNAL_FILE" envDefault:"journal_entries.json"`
	UsersFile    string `env:"USERS_FILE" envDefault:"users.json"`
	DownloadsDir string `env:"DOWNLOADS_DIR" envDefault:"secure_powerpoints"`

	StoreType   string `env:"STORE_TYPE" envDefault:"json"`
	DatabaseURL string `env:"DATABASE_URL"`

	BackupBucket    string `env:"BACKUP_BUCKET"`
	BackupDir       string `env:"BACKUP_DIR"`
	CredentialsFile string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	BackupTimeout   time.Duration `env:"BACKUP_TIMEOUT" envDefault:"30s"`

	Env         string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	CSRFEnabled bool   `env:"CSRF_ENABLED" envDefault:"true"`

	RememberDays int `env:"REMEMBER_DAYS" envDefault:"30"`
	SessionHours int `env:"SESSION_HOURS" envDefault:"12"`
	LoginRate    int `env:"LOGIN_RATE" envDefault:"10"` // attempts per minute per client

	// TrustProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// Only safe behind a reverse proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Production reports whether cookies must be Secure and logs JSON
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c Config) JournalPath() string {
	return resolve(c.DataDir, c.JournalFile)
}

func (c Config) UsersPath() string {
	return resolve(c.DataDir, c.UsersFile)
}

func (c Config) RememberTTL() time.Duration {
	return time.Duration(c.RememberDays) * 24 * time.Hour
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

// BackupConfigured reports whether any backup backend is set
func (c Config) BackupConfigured() bool {
	return c.BackupBucket != "" || c.BackupDir != ""
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// ParseFlags loads .env and the environment, then applies CLI overrides
func ParseFlags(args []string) (Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("gvisit", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "Directory for JSON data files")
	fs.StringVar(&cfg.DownloadsDir, "downloads", cfg.DownloadsDir, "Directory holding the protected downloads")
	fs.StringVar(&cfg.StoreType, "t", cfg.StoreType, "Store type (json, sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL for sqlite/postgres stores")
	fs.StringVar(&cfg.BackupBucket, "bucket", cfg.BackupBucket, "GCS bucket for journal backups")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "Trust X-Forwarded-For/X-Real-IP from a reverse proxy")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.Password, "password", cfg.Password, "Download password (prefer env)")
	fs.StringVar(&cfg.SecretKey, "secret", cfg.SecretKey, "Signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port")
	}

	cfg.StoreType = strings.ToLower(cfg.StoreType)
	switch cfg.StoreType {
	case models.StoreJSON:
	case models.StoreSQLite, models.StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for sql stores (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	if cfg.RememberDays < 1 {
		return Config{}, errors.New("REMEMBER_DAYS must be at least 1")
	}
	if cfg.SessionHours < 1 {
		return Config{}, errors.New("SESSION_HOURS must be at least 1")
	}
	if cfg.LoginRate < 1 {
		return Config{}, errors.New("LOGIN_RATE must be at least 1")
	}
	if cfg.BackupTimeout <= 0 {
		return Config{}, errors.New("BACKUP_TIMEOUT must be positive")
	}

	// Without a configured secret, sessions and remember-me cookies do not
	// survive a restart
	if cfg.SecretKey == "" {
		secret, err := auth.GenerateToken()
		if err != nil {
			return Config{}, err
		}
		cfg.SecretKey = secret
		cfg.SecretKeyGenerated = true
	}

	return cfg, nil
}
