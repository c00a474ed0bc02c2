// Package config handles configuration for the checkpay server: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"os"
	"time"
)

// ConfigFileEnv names the environment variable consulted when no -c/-config
// flag is given.
const ConfigFileEnv = "CHECKPAY_CONFIG"

// Config holds runtime settings for the checkpay server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses for the JSON API and the gRPC health endpoint.
//   - DatabaseDSN: postgres:// DSN (pgx) or file:/sqlite: DSN (modernc sqlite).
//   - SecretKey: HMAC secret for signing access tokens (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration: token lifetime.
//   - Users: the fixed credential table, username to password.
//   - AllowedOrigins: CORS origins, "*" allows all.
//   - DefaultListLimit: page size for listing when the client sends none.
//   - MaxRequestBytes: upper bound for request bodies (images are inline base64).
//   - NotifyTimeout: per-channel deadline for a single notification attempt.
//   - NotifyFrom / NotifyTo, SMTP*: e-mail channel, enabled when SMTPHost and NotifyTo are set.
//   - KafkaBrokers / KafkaTopic: event channel, enabled when brokers are set.
//   - AMQPURL / AMQPQueue: e-mail job queue channel, enabled when the URL is set.
//   - S3*: archive channel, enabled when S3Bucket is set.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	Users                       map[string]string
	AllowedOrigins              []string
	DefaultListLimit            int
	MaxRequestBytes             int64
	LogLevel                    string
	ShutdownTimeout             time.Duration

	NotifyTimeout time.Duration
	NotifyFrom    string
	NotifyTo      []string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string

	KafkaBrokers []string
	KafkaTopic   string

	AMQPURL   string
	AMQPQueue string

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret and the user table are insecure and must be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "file:checkpay.db?cache=shared"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.Users = map[string]string{
		"Rob":   "rob-dev-password",
		"Geena": "geena-dev-password",
		"Eric":  "eric-dev-password",
	}
	c.AllowedOrigins = []string{"*"}
	c.DefaultListLimit = 50
	c.MaxRequestBytes = 16 << 20
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second

	c.NotifyTimeout = 10 * time.Second
	c.SMTPPort = 587
	c.KafkaTopic = "checkpay.payments"
	c.AMQPQueue = "email_jobs"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
// Malformed input panics, matching the flag package's fail-fast behavior.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if len(c.Users) == 0 {
		errs = append(errs, errors.New("at least one user must be configured"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.DefaultListLimit <= 0 {
		errs = append(errs, errors.New("default list limit must be positive"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN must not be empty"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("notify timeout must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}
