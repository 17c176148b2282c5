// internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Demand    DemandConfig
	Synthetic SyntheticConfig
	Policy    PolicyConfig
	Report    ReportConfig
	Pipeline  PipelineConfig
	LogLevel  string
	LogJSON   bool
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string // takes precedence over the discrete fields when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	Backend       string // redis or memory
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// StorageConfig describes the S3-compatible bucket holding demand CSVs.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	ObjectKey string
}

type DriveConfig struct {
	CredentialsJSON string
	FileID          string
}

// DemandConfig selects where daily demand series are loaded from.
type DemandConfig struct {
	Source            string // csv, postgres, s3, drive or synthetic
	CSVPath           string
	ItemColumn        string
	DayColumnPrefix   string
	SyntheticFallback bool
}

type SyntheticConfig struct {
	Items  int
	Lambda float64
	Days   int
	Seed   int64
}

type PolicyConfig struct {
	ReviewPeriod       int
	PeriodicLeadTime   int
	PeriodicSafety     float64
	ContinuousLeadTime int
	ContinuousSafety   float64
	ReviewPeriods      []int
	StdDevMode         string
	ItemIndex          int
}

type ReportConfig struct {
	Format    string // table, csv or json
	Precision int
	UseColors bool
	Locale    string // en or id
}

type PipelineConfig struct {
	Workers       int
	RetryAttempts int
	RetryBackoff  time.Duration
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env (if present) and the environment once and returns the
// shared configuration.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = LoadFrom(viper.GetViper())
	})

	return instance
}

// LoadFrom builds a Config from v after applying defaults and binding the
// environment.
func LoadFrom(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			Backend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			ObjectKey: v.GetString("S3_OBJECT_KEY"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FileID:          v.GetString("DRIVE_FILE_ID"),
		},
		Demand: DemandConfig{
			Source:            strings.ToLower(v.GetString("DEMAND_SOURCE")),
			CSVPath:           v.GetString("DEMAND_CSV_PATH"),
			ItemColumn:        v.GetString("DEMAND_ITEM_COLUMN"),
			DayColumnPrefix:   v.GetString("DEMAND_DAY_PREFIX"),
			SyntheticFallback: v.GetBool("DEMAND_SYNTHETIC_FALLBACK"),
		},
		Synthetic: SyntheticConfig{
			Items:  v.GetInt("SYNTHETIC_ITEMS"),
			Lambda: v.GetFloat64("SYNTHETIC_LAMBDA"),
			Days:   v.GetInt("SYNTHETIC_DAYS"),
			Seed:   v.GetInt64("SYNTHETIC_SEED"),
		},
		Policy: PolicyConfig{
			ReviewPeriod:       v.GetInt("POLICY_REVIEW_PERIOD"),
			PeriodicLeadTime:   v.GetInt("POLICY_PERIODIC_LEAD_TIME"),
			PeriodicSafety:     v.GetFloat64("POLICY_PERIODIC_SAFETY"),
			ContinuousLeadTime: v.GetInt("POLICY_CONTINUOUS_LEAD_TIME"),
			ContinuousSafety:   v.GetFloat64("POLICY_CONTINUOUS_SAFETY"),
			ReviewPeriods:      intSlice(v, "POLICY_REVIEW_PERIODS"),
			StdDevMode:         v.GetString("POLICY_STDDEV_MODE"),
			ItemIndex:          v.GetInt("POLICY_ITEM_INDEX"),
		},
		Report: ReportConfig{
			Format:    strings.ToLower(v.GetString("REPORT_FORMAT")),
			Precision: v.GetInt("REPORT_PRECISION"),
			UseColors: v.GetBool("REPORT_COLORS"),
			Locale:    strings.ToLower(v.GetString("REPORT_LOCALE")),
		},
		Pipeline: PipelineConfig{
			Workers:       v.GetInt("PIPELINE_WORKERS"),
			RetryAttempts: v.GetInt("PIPELINE_RETRY_ATTEMPTS"),
			RetryBackoff:  v.GetDuration("PIPELINE_RETRY_BACKOFF"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
		LogJSON:  v.GetBool("LOG_JSON"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "replenish")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_OBJECT_KEY", "demand/df_periodic.csv")
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_FILE_ID", "")
	v.SetDefault("DEMAND_SOURCE", "csv")
	v.SetDefault("DEMAND_CSV_PATH", "data/df_periodic.csv")
	v.SetDefault("DEMAND_ITEM_COLUMN", "ITEM ID")
	v.SetDefault("DEMAND_DAY_PREFIX", "DAY")
	v.SetDefault("DEMAND_SYNTHETIC_FALLBACK", true)
	v.SetDefault("SYNTHETIC_ITEMS", 10)
	v.SetDefault("SYNTHETIC_LAMBDA", 5.0)
	v.SetDefault("SYNTHETIC_DAYS", 365)
	v.SetDefault("SYNTHETIC_SEED", 42)
	v.SetDefault("POLICY_REVIEW_PERIOD", 10)
	v.SetDefault("POLICY_PERIODIC_LEAD_TIME", 2)
	v.SetDefault("POLICY_PERIODIC_SAFETY", 1.0)
	v.SetDefault("POLICY_CONTINUOUS_LEAD_TIME", 2)
	v.SetDefault("POLICY_CONTINUOUS_SAFETY", 3.0)
	v.SetDefault("POLICY_REVIEW_PERIODS", []int{5, 7, 10, 14})
	v.SetDefault("POLICY_STDDEV_MODE", "sample")
	v.SetDefault("POLICY_ITEM_INDEX", 4)
	v.SetDefault("REPORT_FORMAT", "table")
	v.SetDefault("REPORT_PRECISION", 2)
	v.SetDefault("REPORT_COLORS", true)
	v.SetDefault("REPORT_LOCALE", "en")
	v.SetDefault("PIPELINE_WORKERS", 4)
	v.SetDefault("PIPELINE_RETRY_ATTEMPTS", 3)
	v.SetDefault("PIPELINE_RETRY_BACKOFF", "500ms")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
}

// intSlice reads a list of ints that may come from a default slice or from
// an environment string such as "5,7,10,14".
func intSlice(v *viper.Viper, key string) []int {
	raw := v.Get(key)
	str, ok := raw.(string)
	if !ok {
		return cast.ToIntSlice(raw)
	}

	fields := strings.FieldsFunc(str, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := cast.ToIntE(f)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
