package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageOSS   = "oss"
)

type Config struct {
	AppPort string

	DBDriver   string
	DBLogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int

	StorageDriver      string
	StorageDir         string
	OSSEndpoint        string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSBucket          string

	NotifyQueueSize     int
	DeadlineSweepSpec   string
	AllowDeferredUpload bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring invalid %s=%q", k, v)
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("config: ignoring invalid %s=%q", k, v)
	}
	return d
}

// Load reads the environment; a .env file in the working directory is
// applied first when present (real env vars win).
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}
	return &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		DBDriver:   getenv("DB_DRIVER", DriverMySQL),
		DBLogLevel: getenv("DB_LOG_LEVEL", "warn"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "scholarship"),
		MySQLUser: getenv("MYSQL_USER", "scholarship"),
		MySQLPass: getenv("MYSQL_PASS", "scholarship"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "scholarship.db"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:       getint("REDIS_DB", 0),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		StorageDriver:      getenv("STORAGE_DRIVER", StorageLocal),
		StorageDir:         getenv("STORAGE_DIR", "storage"),
		OSSEndpoint:        os.Getenv("OSS_ENDPOINT"),
		OSSAccessKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
		OSSAccessKeySecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
		OSSBucket:          os.Getenv("OSS_BUCKET"),

		NotifyQueueSize:     getint("NOTIFY_QUEUE_SIZE", 256),
		DeadlineSweepSpec:   getenv("DEADLINE_SWEEP_SPEC", "@every 15m"),
		AllowDeferredUpload: getbool("ALLOW_DEFERRED_UPLOAD", false),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case StorageLocal:
		if c.StorageDir == "" {
			return errors.New("missing STORAGE_DIR")
		}
	case StorageOSS:
		if c.OSSEndpoint == "" || c.OSSAccessKeyID == "" || c.OSSAccessKeySecret == "" || c.OSSBucket == "" {
			return errors.New("missing OSS config (OSS_ENDPOINT/ACCESS_KEY_ID/ACCESS_KEY_SECRET/BUCKET)")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.NotifyQueueSize <= 0 {
		return errors.New("NOTIFY_QUEUE_SIZE must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.PostgresDSN
	case DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}
