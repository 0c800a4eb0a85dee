package config // package config loads application configuration from environment variables

import (
	"log"  // log reports configuration errors
	"os"   // os provides access to environment variables
	"time" // time expresses token and code lifetimes
)

// InsecureDefaultSecret is used to sign session tokens when JWT_SECRET
// is unset. Running with it is an error condition, not a silent
// success: Load logs loudly and keeps going so local development still
// works.
const InsecureDefaultSecret = "dev"

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. The signing secret is read
// once here and held immutably for the process lifetime.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to sign session tokens
	SessionTTL   time.Duration // session token and cookie lifetime
	ResetCodeTTL time.Duration // validity window of password-reset codes
	BcryptCost   int           // bcrypt cost for password and code hashing
}

// Load reads configuration from environment variables. Database
// settings are required and enforced by must(); the rest fall back to
// the defaults the service shipped with: 7-day sessions, 15-minute
// reset codes, bcrypt cost 10.
func Load() Config {
	cfg := Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   time.Duration(envInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,
		ResetCodeTTL: time.Duration(envInt("RESET_CODE_TTL_MIN", 15)) * time.Minute,
		BcryptCost:   envInt("BCRYPT_COST", 10),
	}
	if cfg.JWTSecret == "" {
		log.Printf("ERROR: JWT_SECRET is not set; falling back to an insecure default. Anyone can forge sessions. Set JWT_SECRET before exposing this service.")
		cfg.JWTSecret = InsecureDefaultSecret
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
