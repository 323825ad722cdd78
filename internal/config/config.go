// Package config loads all function configuration from environment variables.
//
// Every service takes its configuration as an explicit value at construction
// time; nothing reads the environment after cold start.
package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full configuration for the fax bridge functions.
type Config struct {
	// ProjectID is the GCP project hosting Firestore and the functions.
	ProjectID string `env:"GCP_PROJECT"`

	// GatewayAddress is the email address of the email-to-fax automation
	// gateway. Sends fail with a ConfigError when it is unset.
	GatewayAddress string `env:"FAX_GATEWAY_ADDRESS"`

	// SenderAddress is the From address on dispatched gateway emails and the
	// requester identity recorded on new jobs.
	SenderAddress string `env:"FAX_SENDER_ADDRESS"`

	// Firestore collection names.
	JobsCollection   string `env:"FAX_JOBS_COLLECTION" envDefault:"faxJobs"`
	AuditCollection  string `env:"FAX_LOG_COLLECTION" envDefault:"fax_log"`
	StoresCollection string `env:"STORES_COLLECTION" envDefault:"stores"`

	// HandbookBucket holds the static handbook assets.
	HandbookBucket string `env:"HANDBOOK_BUCKET"`
	HandbookPrefix string `env:"HANDBOOK_PREFIX" envDefault:"handbook/"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
	IMAP IMAPConfig `envPrefix:"IMAP_"`
}

// SMTPConfig configures the outbound mail transport.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// IMAPConfig configures the inbox used by the polling sweep.
type IMAPConfig struct {
	Addr        string        `env:"ADDR"`
	Username    string        `env:"USERNAME"`
	Password    string        `env:"PASSWORD"`
	Mailbox     string        `env:"MAILBOX" envDefault:"INBOX"`
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the environment. A local .env file, when
// present, is merged in first for development; missing files are not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable must be set")
	}
	return &cfg, nil
}
