package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/checkpay/internal/flagx"
	"github.com/dmitrijs2005/checkpay/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Durations use
// timex.Duration so both "24h" and integer nanoseconds are accepted. Only
// fields present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP            string            `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string            `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string            `json:"database_dsn"`
	SecretKey                   string            `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration   `json:"access_token_validity_duration"`
	Users                       map[string]string `json:"users"`
	AllowedOrigins              []string          `json:"allowed_origins"`
	DefaultListLimit            int               `json:"default_list_limit"`
	MaxRequestBytes             int64             `json:"max_request_bytes"`
	LogLevel                    string            `json:"log_level"`
	ShutdownTimeout             *timex.Duration   `json:"shutdown_timeout"`

	NotifyTimeout *timex.Duration `json:"notify_timeout"`
	NotifyFrom    string          `json:"notify_from"`
	NotifyTo      []string        `json:"notify_to"`
	SMTPHost      string          `json:"smtp_host"`
	SMTPPort      int             `json:"smtp_port"`
	SMTPUsername  string          `json:"smtp_username"`
	SMTPPassword  string          `json:"smtp_password"`

	KafkaBrokers []string `json:"kafka_brokers"`
	KafkaTopic   string   `json:"kafka_topic"`

	AMQPURL   string `json:"amqp_url"`
	AMQPQueue string `json:"amqp_queue"`

	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
}

// parseJson loads the file named by -c/-config (or CHECKPAY_CONFIG) and
// overlays its non-empty values onto config. Without a file name nothing
// happens. Unreadable files and invalid JSON panic.
func parseJson(config *Config, args []string) {
	path := flagx.JSONConfigPath(args, ConfigFileEnv)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if len(c.Users) > 0 {
		config.Users = c.Users
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.DefaultListLimit != 0 {
		config.DefaultListLimit = c.DefaultListLimit
	}
	if c.MaxRequestBytes != 0 {
		config.MaxRequestBytes = c.MaxRequestBytes
	}
	setString(&config.LogLevel, c.LogLevel)
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	if c.NotifyTimeout != nil {
		config.NotifyTimeout = c.NotifyTimeout.Duration
	}
	setString(&config.NotifyFrom, c.NotifyFrom)
	if len(c.NotifyTo) > 0 {
		config.NotifyTo = c.NotifyTo
	}
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)

	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)

	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.AMQPQueue, c.AMQPQueue)

	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
