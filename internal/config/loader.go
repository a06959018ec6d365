package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SMTP carries outbound mail settings. An empty Host disables mail delivery.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config captures environment driven configuration values for the facility
// reservation service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	Timezone         string
	TimezoneFallback string
	NotifyBuffer     int
	SMTP             SMTP
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; invalid values and missing
// required entries are reported together with localized messages.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:facilities.db?_pragma=foreign_keys(1)",
		Timezone:         "Europe/Warsaw",
		TimezoneFallback: "Poland",
		NotifyBuffer:     64,
		SMTP:             SMTP{Port: 587},
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("FACILITIES_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "FACILITIES_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("FACILITIES_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if zone := strings.TrimSpace(os.Getenv("FACILITIES_TIMEZONE")); zone != "" {
		cfg.Timezone = zone
	}

	if fallback := strings.TrimSpace(os.Getenv("FACILITIES_TIMEZONE_FALLBACK")); fallback != "" {
		cfg.TimezoneFallback = fallback
	}

	if bufferValue := strings.TrimSpace(os.Getenv("FACILITIES_NOTIFY_BUFFER")); bufferValue != "" {
		buffer, err := strconv.Atoi(bufferValue)
		if err != nil || buffer <= 0 {
			invalid = append(invalid, "FACILITIES_NOTIFY_BUFFER")
		} else {
			cfg.NotifyBuffer = buffer
		}
	}

	cfg.SMTP.Host = strings.TrimSpace(os.Getenv("FACILITIES_SMTP_HOST"))
	cfg.SMTP.Username = strings.TrimSpace(os.Getenv("FACILITIES_SMTP_USER"))
	cfg.SMTP.Password = os.Getenv("FACILITIES_SMTP_PASSWORD")
	cfg.SMTP.From = strings.TrimSpace(os.Getenv("FACILITIES_SMTP_FROM"))

	if portValue := strings.TrimSpace(os.Getenv("FACILITIES_SMTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "FACILITIES_SMTP_PORT")
		} else {
			cfg.SMTP.Port = port
		}
	}

	if cfg.SMTP.Host != "" && cfg.SMTP.Username == "" {
		missing = append(missing, "FACILITIES_SMTP_USER")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("brak wymaganych zmiennych środowiskowych: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("nieprawidłowe wartości zmiennych środowiskowych: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
