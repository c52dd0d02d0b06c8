package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	Mail     MailConfig     `env:",prefix=MAIL_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=auth_service"`
	Password string `env:"PASSWORD,default=auth_service_password"`
	DBName   string `env:"DB,default=auth_service_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret            string   `env:"SECRET,required"`
	AccessTokenExpiry Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
}

type AuthConfig struct {
	BCryptCost int `env:"BCRYPT_COST,default=12"`
	// SessionTTL bounds the lifetime of a refresh secret and of the cookie
	// carrying it.
	SessionTTL Duration `env:"SESSION_TTL,default=7d"`
	// VerificationTTL is short by design: minutes, not days.
	VerificationTTL Duration `env:"VERIFICATION_TTL,default=15m"`
	// SweepInterval drives the periodic reaping of expired sessions.
	// Zero disables the sweep; expired sessions are still reaped lazily.
	SweepInterval Duration `env:"SESSION_SWEEP_INTERVAL,default=1h"`
	// CookieCrossOrigin relaxes the refresh cookie's SameSite policy for
	// deployments where front end and back end are on different origins.
	CookieCrossOrigin bool `env:"COOKIE_CROSS_ORIGIN,default=false"`
	CookieSecure      bool `env:"COOKIE_SECURE,default=true"`
}

type MailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY,default="`
	From         string `env:"FROM,default=Instaloan <onboarding@resend.dev>"`
	// VerifyURL is the front end page a verification link points at.
	VerifyURL string `env:"VERIFY_URL,default=http://localhost:3000/auth/verify-email"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
