package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Debug                    bool          `envconfig:"debug"`
	Port                     int           `envconfig:"port" default:"8080"`
	Env                      string        `envconfig:"env" default:"dev"`
	StoreDriver              string        `envconfig:"store_driver" default:"memory"`
	SQLitePath               string        `envconfig:"sqlite_path"`
	PostgresHost             string        `envconfig:"postgres_host"`
	PostgresUser             string        `envconfig:"postgres_user"`
	PostgresDB               string        `envconfig:"postgres_db"`
	PostgresPort             int           `envconfig:"postgres_port" default:"5432"`
	PostgresPassword         string        `envconfig:"postgres_password"`
	SeedFile                 string        `envconfig:"seed_file"`
	ScannerInbox             string        `envconfig:"scanner_inbox"`
	ScanDelay                time.Duration `envconfig:"scan_delay" default:"1s"`
	MaxUploadSize            int64         `envconfig:"max_upload_size" default:"10485760"`
	OTPRequestsPerMinute     uint          `envconfig:"otp_requests_per_minute" default:"5"`
	AWSRegion                string        `envconfig:"aws_region"`
	AWSAccessKeyID           string        `envconfig:"aws_access_key_id"`
	AWSSecretAccessKey       string        `envconfig:"aws_secret_access_key"`
	S3Bucket                 string        `envconfig:"s3_bucket"`
	Locale                   string        `envconfig:"locale" default:"en"`
	AccessControlAllowOrigin string        `envconfig:"access_control_allow_origin"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("healthtrack", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ArchiveEnabled reports whether scanned documents are copied to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}
