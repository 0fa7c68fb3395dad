package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  Three independent signing secrets are kept so that a leaked
// activation secret cannot forge sessions and vice versa.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    Origin           string // allowed CORS origin (empty allows any)
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    ActivationSecret string // secret used to sign activation tokens
    AccessSecret     string // secret used to sign access tokens
    RefreshSecret    string // secret used to sign refresh tokens
    ActivationTTLMin int    // activation token time-to-live in minutes
    AccessTTLHours   int    // access token time-to-live in hours
    RefreshTTLDays   int    // refresh token time-to-live in days
    SessionTTLSec    int    // session cache time-to-live in seconds
    BcryptCost       int    // bcrypt cost for password hashing
    SMTP             SMTPConfig
}

// SMTPConfig carries outbound mail settings.  All fields are optional;
// when Host is empty the mail consumer falls back to appending rendered
// messages to logs/mail.log instead of delivering them.
type SMTPConfig struct {
    Host string // SMTP server host
    Port string // SMTP server port
    User string // SMTP auth username
    Pass string // SMTP auth password
    From string // From address on activation mails
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),              // environment (dev/test/prod)
        Port:             must("APP_PORT"),             // port to bind the HTTP server
        Origin:           os.Getenv("ORIGIN"),          // CORS origin (empty allowed)
        DBUser:           must("DB_USER"),              // database user
        DBPass:           os.Getenv("DB_PASS"),         // database password (empty allowed)
        DBHost:           must("DB_HOST"),              // database host
        DBPort:           must("DB_PORT"),              // database port
        DBName:           must("DB_NAME"),              // database name
        ActivationSecret: must("ACTIVATION_SECRET"),    // signs activation tokens
        AccessSecret:     must("ACCESS_TOKEN_SECRET"),  // signs access tokens
        RefreshSecret:    must("REFRESH_TOKEN_SECRET"), // signs refresh tokens
        ActivationTTLMin: intDefault("ACTIVATION_TTL_MIN", 5),      // activation window, minutes
        AccessTTLHours:   intDefault("ACCESS_TOKEN_TTL_HOURS", 72), // access token TTL, hours
        RefreshTTLDays:   intDefault("REFRESH_TOKEN_TTL_DAYS", 7),  // refresh token TTL, days
        SessionTTLSec:    intDefault("SESSION_TTL_SEC", 604800),    // session cache TTL, seconds
        BcryptCost:       intDefault("BCRYPT_COST", 10),            // bcrypt cost factor
        SMTP: SMTPConfig{
            Host: os.Getenv("SMTP_HOST"),
            Port: os.Getenv("SMTP_PORT"),
            User: os.Getenv("SMTP_USER"),
            Pass: os.Getenv("SMTP_PASS"),
            From: os.Getenv("SMTP_FROM"),
        },
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// intDefault retrieves an optional integer environment variable, falling
// back to def when unset.  A malformed value is a fatal error rather than
// a silent fallback.
func intDefault(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
