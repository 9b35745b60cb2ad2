package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory    = "memory"
	StoreJSON      = "json"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"

	BlobMemory = "memory"
	BlobLocal  = "local"
	BlobGCS    = "gcs"
)

type Config struct {
	ServerPort  string
	Environment string

	StoreBackend string
	BlobBackend  string

	DataDir    string
	JSONDBPath string
	SQLitePath string

	FirebaseProject    string
	ServiceAccountPath string
	ServiceAccountJSON string
	StorageBucket      string
	ConfigureCORS      bool

	BlobTimeout         time.Duration
	MaxUploadBytes      int64
	UploadRatePerMinute int
	ReconcileOnStart    bool
	ReconcileSchedule   string
	DefaultPageSize     int

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("STORE_BACKEND", StoreMemory)
	v.SetDefault("BLOB_BACKEND", BlobLocal)
	v.SetDefault("DATA_DIR", "./uploads")
	v.SetDefault("JSON_DB_PATH", "./data/files.json")
	v.SetDefault("SQLITE_PATH", "./data/files.db")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_PATH", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_JSON", "")
	v.SetDefault("STORAGE_BUCKET", "")
	v.SetDefault("STORAGE_CONFIGURE_CORS", false)
	v.SetDefault("BLOB_TIMEOUT", "30s")
	v.SetDefault("MAX_UPLOAD_BYTES", int64(64<<20))
	v.SetDefault("UPLOAD_RATE_PER_MINUTE", 60)
	v.SetDefault("RECONCILE_ON_START", true)
	v.SetDefault("RECONCILE_SCHEDULE", "")
	v.SetDefault("DEFAULT_PAGE_SIZE", 30)
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("LOG_COMPRESS", false)
}

// Load reads .env, then the environment, then an optional YAML file.
// An empty configFile means no file is read.
func Load(configFile string) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:          v.GetString("SERVER_PORT"),
		Environment:         v.GetString("ENVIRONMENT"),
		StoreBackend:        strings.ToLower(v.GetString("STORE_BACKEND")),
		BlobBackend:         strings.ToLower(v.GetString("BLOB_BACKEND")),
		DataDir:             v.GetString("DATA_DIR"),
		JSONDBPath:          v.GetString("JSON_DB_PATH"),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		FirebaseProject:     v.GetString("FIREBASE_PROJECT_ID"),
		ServiceAccountPath:  v.GetString("FIREBASE_SERVICE_ACCOUNT_PATH"),
		ServiceAccountJSON:  v.GetString("FIREBASE_SERVICE_ACCOUNT_JSON"),
		StorageBucket:       v.GetString("STORAGE_BUCKET"),
		ConfigureCORS:       v.GetBool("STORAGE_CONFIGURE_CORS"),
		BlobTimeout:         v.GetDuration("BLOB_TIMEOUT"),
		MaxUploadBytes:      v.GetInt64("MAX_UPLOAD_BYTES"),
		UploadRatePerMinute: v.GetInt("UPLOAD_RATE_PER_MINUTE"),
		ReconcileOnStart:    v.GetBool("RECONCILE_ON_START"),
		ReconcileSchedule:   v.GetString("RECONCILE_SCHEDULE"),
		DefaultPageSize:     v.GetInt("DEFAULT_PAGE_SIZE"),
		LogFile:             v.GetString("LOG_FILE"),
		LogMaxSizeMB:        v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups:       v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAgeDays:       v.GetInt("LOG_MAX_AGE_DAYS"),
		LogCompress:         v.GetBool("LOG_COMPRESS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreJSON, StoreSQLite:
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.BlobBackend {
	case BlobMemory, BlobLocal:
	case BlobGCS:
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the gcs blob backend")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}

	if c.BlobTimeout <= 0 {
		return fmt.Errorf("BLOB_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 30
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
