package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// The security block is the policy surface consumed by the account service;
// the rest wires the reference HTTP service and its AWS/SMTP infrastructure.
type Config struct {
	AppPort string
	AppEnv  string

	// Security settings.
	MultiTenant                       bool
	DefaultTenant                     string
	EmailIsUsername                   bool
	UsernamesUniqueAcrossTenants      bool
	RequireAccountVerification        bool
	AllowLoginAfterAccountCreation    bool
	AccountLockoutFailedLoginAttempts int
	AccountLockoutDuration            time.Duration
	AllowAccountDeletion              bool
	PasswordHashingIterationCount     int
	PasswordResetFrequency            int // days; 0 = passwords never expire
	VerificationKeyLifetime           time.Duration
	MobileCodeLifetime                time.Duration
	TwoFactorAuthTokenLifetime        time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPFromName string
	SMTPUsername string
	SMTPPassword string

	SNSRegion   string
	SNSSenderID string

	GoogleClientID string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		MultiTenant:                       getEnvBool("MULTI_TENANT", false),
		DefaultTenant:                     getEnv("DEFAULT_TENANT", "default"),
		EmailIsUsername:                   getEnvBool("EMAIL_IS_USERNAME", false),
		UsernamesUniqueAcrossTenants:      getEnvBool("USERNAMES_UNIQUE_ACROSS_TENANTS", false),
		RequireAccountVerification:        getEnvBool("REQUIRE_ACCOUNT_VERIFICATION", true),
		AllowLoginAfterAccountCreation:    getEnvBool("ALLOW_LOGIN_AFTER_ACCOUNT_CREATION", true),
		AccountLockoutFailedLoginAttempts: getEnvInt("ACCOUNT_LOCKOUT_FAILED_LOGIN_ATTEMPTS", 5),
		AccountLockoutDuration:            getEnvDuration("ACCOUNT_LOCKOUT_DURATION", 5*time.Minute),
		AllowAccountDeletion:              getEnvBool("ALLOW_ACCOUNT_DELETION", true),
		PasswordHashingIterationCount:     getEnvInt("PASSWORD_HASHING_ITERATION_COUNT", 0),
		PasswordResetFrequency:            getEnvInt("PASSWORD_RESET_FREQUENCY_DAYS", 0),
		VerificationKeyLifetime:           getEnvDuration("VERIFICATION_KEY_LIFETIME", 24*time.Hour),
		MobileCodeLifetime:                getEnvDuration("MOBILE_CODE_LIFETIME", 10*time.Minute),
		TwoFactorAuthTokenLifetime:        getEnvDuration("TWO_FACTOR_AUTH_TOKEN_LIFETIME", 30*24*time.Hour),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts: getEnv("DYNAMO_TABLE_ACCOUNTS", "user_accounts"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSSenderID: getEnv("SNS_SENDER_ID", ""),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
