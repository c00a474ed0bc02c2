package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from CHECKPAY_* environment variables.
// DATABASE_URL is honored as well since most hosting platforms export it.
//
// Lists are comma separated. CHECKPAY_USERS has the form
// "name:password,name:password" and replaces the whole credential table.
// Malformed numbers, durations or user entries panic.
func parseEnv(config *Config) {
	envString("CHECKPAY_HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("CHECKPAY_GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("DATABASE_URL", &config.DatabaseDSN)
	envString("CHECKPAY_DATABASE_DSN", &config.DatabaseDSN)
	envString("CHECKPAY_JWT_SECRET", &config.SecretKey)
	envDuration("CHECKPAY_TOKEN_TTL", &config.AccessTokenValidityDuration)
	if v, ok := os.LookupEnv("CHECKPAY_USERS"); ok && v != "" {
		users, err := parseUsers(v)
		if err != nil {
			panic(err)
		}
		config.Users = users
	}
	envList("CHECKPAY_ALLOWED_ORIGINS", &config.AllowedOrigins)
	envInt("CHECKPAY_DEFAULT_LIST_LIMIT", &config.DefaultListLimit)
	if v, ok := os.LookupEnv("CHECKPAY_MAX_REQUEST_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("CHECKPAY_MAX_REQUEST_BYTES: %w", err))
		}
		config.MaxRequestBytes = n
	}
	envString("CHECKPAY_LOG_LEVEL", &config.LogLevel)
	envDuration("CHECKPAY_SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)

	envDuration("CHECKPAY_NOTIFY_TIMEOUT", &config.NotifyTimeout)
	envString("CHECKPAY_NOTIFY_FROM", &config.NotifyFrom)
	envList("CHECKPAY_NOTIFY_TO", &config.NotifyTo)
	envString("CHECKPAY_SMTP_HOST", &config.SMTPHost)
	envInt("CHECKPAY_SMTP_PORT", &config.SMTPPort)
	envString("CHECKPAY_SMTP_USERNAME", &config.SMTPUsername)
	envString("CHECKPAY_SMTP_PASSWORD", &config.SMTPPassword)

	envList("CHECKPAY_KAFKA_BROKERS", &config.KafkaBrokers)
	envString("CHECKPAY_KAFKA_TOPIC", &config.KafkaTopic)

	envString("CHECKPAY_AMQP_URL", &config.AMQPURL)
	envString("CHECKPAY_AMQP_QUEUE", &config.AMQPQueue)

	envString("CHECKPAY_S3_BUCKET", &config.S3Bucket)
	envString("CHECKPAY_S3_REGION", &config.S3Region)
	envString("CHECKPAY_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("CHECKPAY_S3_ACCESS_KEY", &config.S3AccessKey)
	envString("CHECKPAY_S3_SECRET_KEY", &config.S3SecretKey)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = n
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = d
	}
}

func envList(key string, dst *[]string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseUsers decodes "name:password,name:password". Passwords may contain
// ':' since only the first one separates the pair.
func parseUsers(v string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range splitList(v) {
		name, password, ok := strings.Cut(pair, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("CHECKPAY_USERS: malformed entry %q", pair)
		}
		users[name] = password
	}
	return users, nil
}
