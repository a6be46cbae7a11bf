package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	appLog "monthcal/internal/log"
)

// Environment variables that override the YAML config.
const (
	EnvConfigPath     = "MONTHCAL_CONFIG"
	EnvListen         = "MONTHCAL_LISTEN"
	EnvLogLevel       = "MONTHCAL_LOG_LEVEL"
	EnvMaxVisibleRows = "MONTHCAL_MAX_VISIBLE_ROWS"
	EnvRefreshCron    = "MONTHCAL_REFRESH"
	EnvEventsFile     = "MONTHCAL_EVENTS_FILE"
	EnvGoogleCreds    = "MONTHCAL_GOOGLE_CREDENTIALS_FILE"
	EnvGoogleCalendar = "MONTHCAL_GOOGLE_CALENDAR_ID"
	EnvAuthUser       = "MONTHCAL_BASIC_AUTH_USER"
	EnvAuthPassword   = "MONTHCAL_BASIC_AUTH_PASSWORD"
)

// LoadDotEnv loads a .env file into the process environment if present.
// Existing variables win over the file.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		appLog.Debug(".env not loaded", "err", err)
	}
}

// ConfigPath returns the config path from MONTHCAL_CONFIG or def.
func ConfigPath(def string) string {
	return getEnvOrDefault(EnvConfigPath, def)
}

// ApplyEnv overrides config fields from MONTHCAL_* environment variables.
func (c *Config) ApplyEnv() {
	c.Listen = getEnvOrDefault(EnvListen, c.Listen)
	c.LogLevel = getEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.RefreshCron = getEnvOrDefault(EnvRefreshCron, c.RefreshCron)
	c.EventsFile = getEnvOrDefault(EnvEventsFile, c.EventsFile)

	if v := getEnvOrDefault(EnvMaxVisibleRows, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxVisibleRows = n
		} else {
			appLog.Warn("ignoring invalid env value", "key", EnvMaxVisibleRows, "value", v)
		}
	}

	if creds := getEnvOrDefault(EnvGoogleCreds, ""); creds != "" {
		if c.Google == nil {
			c.Google = &GoogleConfig{CalendarID: defaultCalendarID}
		}
		c.Google.CredentialsFile = creds
	}
	if c.Google != nil {
		c.Google.CalendarID = getEnvOrDefault(EnvGoogleCalendar, c.Google.CalendarID)
	}

	user := getEnvOrDefault(EnvAuthUser, "")
	pass := getEnvOrDefault(EnvAuthPassword, "")
	if user != "" && pass != "" {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: pass}
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
