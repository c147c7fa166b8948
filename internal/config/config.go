package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"flightdeals/internal/validation"
)

// Run modes
const (
	RunModeOnce   = "once"
	RunModeDaemon = "daemon"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env     string // "development", "production", etc.
	RunMode string // "once" or "daemon"

	// Scheduling (daemon mode)
	CheckInterval time.Duration

	// Status server (daemon mode)
	ServerAddr string

	// Sheety tabular store
	SheetyPricesURL string
	SheetyUsersURL  string
	SheetyToken     string // Optional bearer token

	// Tequila flight search
	TequilaLocationsURL string
	TequilaSearchURL    string
	TequilaAPIKey       string

	// Search tuning
	OriginCityCode    string
	Currency          string
	CurrencySymbol    string
	HorizonDays       int
	NightsInDstFrom   int
	NightsInDstTo     int
	HTTPClientTimeout time.Duration

	// SMTP
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "starttls", "tls" or "none"
	EmailSubject string

	// Twilio SMS
	TwilioAccountSID  string
	TwilioAuthToken   string
	SMSSenderNumber   string
	SMSReceiverNumber string

	// Run history
	DatabaseURL string

	// Rate limiter storage for the status API
	RedisURL string

	// OIDC bearer verification for the status API
	OIDCIssuer   string
	OIDCClientID string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:           getEnv("ENV", "development"),
		RunMode:       strings.ToLower(getEnv("RUN_MODE", RunModeOnce)),
		CheckInterval: getEnvDuration("CHECK_INTERVAL", 24*time.Hour),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),

		SheetyPricesURL: getEnv("SHEETY_PRICES_URL", ""),
		SheetyUsersURL:  getEnv("SHEETY_USERS_URL", ""),
		SheetyToken:     getEnv("SHEETY_TOKEN", ""),

		TequilaLocationsURL: getEnv("TEQUILA_LOCATIONS_URL", "https://api.tequila.kiwi.com/locations/query"),
		TequilaSearchURL:    getEnv("TEQUILA_SEARCH_URL", "https://api.tequila.kiwi.com/v2/search"),
		TequilaAPIKey:       getEnv("TEQUILA_API_KEY", ""),

		OriginCityCode:    strings.ToUpper(getEnv("ORIGIN_CITY_CODE", "DAC")),
		Currency:          getEnv("SEARCH_CURRENCY", "BDT"),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "Tk"),
		HorizonDays:       getEnvInt("SEARCH_HORIZON_DAYS", 180),
		NightsInDstFrom:   getEnvInt("NIGHTS_IN_DST_FROM", 7),
		NightsInDstTo:     getEnvInt("NIGHTS_IN_DST_TO", 28),
		HTTPClientTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
		EmailSubject: getEnv("EMAIL_SUBJECT", "New Low Price Flight"),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		SMSSenderNumber:   getEnv("SMS_SENDER_NUMBER", ""),
		SMSReceiverNumber: getEnv("SMS_RECEIVER_NUMBER", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
		OIDCClientID: getEnv("OIDC_CLIENT_ID", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate reports every missing or malformed setting the run depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.RunMode != RunModeOnce && c.RunMode != RunModeDaemon {
		errs = append(errs, fmt.Errorf("RUN_MODE must be %q or %q, got %q", RunModeOnce, RunModeDaemon, c.RunMode))
	}

	urls := []struct {
		name  string
		value string
	}{
		{"SHEETY_PRICES_URL", c.SheetyPricesURL},
		{"TEQUILA_LOCATIONS_URL", c.TequilaLocationsURL},
		{"TEQUILA_SEARCH_URL", c.TequilaSearchURL},
	}
	if c.IsEmailEnabled() {
		urls = append(urls, struct {
			name  string
			value string
		}{"SHEETY_USERS_URL", c.SheetyUsersURL})
	}
	for _, u := range urls {
		if ok, msg := validation.ValidateURL(u.value); !ok {
			errs = append(errs, fmt.Errorf("%s: %s", u.name, msg))
		}
	}

	if c.TequilaAPIKey == "" {
		errs = append(errs, errors.New("TEQUILA_API_KEY is required"))
	}
	if !validation.ValidateIATACode(c.OriginCityCode) {
		errs = append(errs, fmt.Errorf("ORIGIN_CITY_CODE %q is not a valid IATA code", c.OriginCityCode))
	}
	if c.NightsInDstFrom < 0 || c.NightsInDstTo < c.NightsInDstFrom {
		errs = append(errs, fmt.Errorf("invalid nights window %d-%d", c.NightsInDstFrom, c.NightsInDstTo))
	}
	if c.HorizonDays <= 0 {
		errs = append(errs, errors.New("SEARCH_HORIZON_DAYS must be positive"))
	}

	if c.IsSMSEnabled() {
		if !validation.ValidatePhoneNumber(c.SMSSenderNumber) {
			errs = append(errs, fmt.Errorf("SMS_SENDER_NUMBER %q is not in E.164 format", c.SMSSenderNumber))
		}
		if !validation.ValidatePhoneNumber(c.SMSReceiverNumber) {
			errs = append(errs, fmt.Errorf("SMS_RECEIVER_NUMBER %q is not in E.164 format", c.SMSReceiverNumber))
		}
	}

	if c.IsAuthEnabled() && c.OIDCClientID == "" {
		errs = append(errs, errors.New("OIDC_CLIENT_ID is required when OIDC_ISSUER is set"))
	}

	return errors.Join(errs...)
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsDaemon returns true when the checker should keep running on an interval.
func (c *Config) IsDaemon() bool {
	return c.RunMode == RunModeDaemon
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsSMSEnabled returns true if Twilio credentials and both numbers are set.
func (c *Config) IsSMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.SMSSenderNumber != "" && c.SMSReceiverNumber != ""
}

// IsHistoryEnabled returns true if runs should be recorded in Postgres.
func (c *Config) IsHistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// IsAuthEnabled returns true if the status API requires OIDC bearer tokens.
func (c *Config) IsAuthEnabled() bool {
	return c.OIDCIssuer != ""
}
