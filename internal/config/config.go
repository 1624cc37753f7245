package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional integrations (SMTP, RabbitMQ, S3,
// Twilio) are disabled when their variables are left empty.
type Config struct {
	Env            string   // application environment (dev, test, prod)
	Port           string   // HTTP port to listen on
	LogLevel       string   // zerolog level name
	LogFile        string   // optional log file path
	CORSOrigins    []string // allowed browser origins; empty allows any
	DBUser         string
	DBPass         string
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Notify NotifyConfig
	S3     S3Config
	Twilio TwilioConfig
}

// NotifyConfig selects how booking confirmations leave the process.
// Transport is one of smtp, queue or log.
type NotifyConfig struct {
	Transport   string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	From        string
	RabbitMQURL string
	Queue       string
}

// S3Config points photo uploads at an S3-compatible bucket.  Endpoint is
// set for MinIO and similar; PublicURL overrides the returned object URL.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

func (c S3Config) Enabled() bool { return c.Bucket != "" }

// TwilioConfig enables the day-before SMS reminder job.
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	From         string
	ReminderCron string
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// Load reads an optional .env file and then the environment.  Required
// variables are enforced by must(); a missing value stops the process.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		Notify: NotifyConfig{
			Transport:   strings.ToLower(envStr("NOTIFY_TRANSPORT", "log")),
			SMTPHost:    os.Getenv("SMTP_HOST"),
			SMTPPort:    envInt("SMTP_PORT", 587),
			SMTPUser:    os.Getenv("SMTP_USER"),
			SMTPPass:    os.Getenv("SMTP_PASS"),
			From:        os.Getenv("MAIL_FROM"),
			RabbitMQURL: os.Getenv("RABBITMQ_URL"),
			Queue:       envStr("RABBITMQ_QUEUE", "booking.confirmed"),
		},
		S3: S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    envStr("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		Twilio: TwilioConfig{
			AccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
			From:         os.Getenv("TWILIO_FROM"),
			ReminderCron: envStr("REMINDER_CRON", "0 9 * * *"),
		},
	}
}

// DSN builds the go-sql-driver DSN.  parseTime and loc=UTC keep DATE and
// DATETIME columns as UTC time.Time values.
func (c Config) DSN() string {
	auth := c.DBUser
	if c.DBPass != "" {
		auth += ":" + c.DBPass
	}
	return auth + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
		"?charset=utf8mb4&parseTime=true&loc=UTC"
}

// must retrieves the value of a required environment variable.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("missing required env var")
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatal().Str("key", key).Str("value", s).Msg("invalid int env var")
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
