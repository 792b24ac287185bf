package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/usuarios/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// use timex.Duration so both "720h" and integer nanoseconds are accepted.
// Absent or zero fields leave the current Config value untouched.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	PendingTokenSize             int            `json:"pending_token_size"`
	FrontendURL                  string         `json:"frontend_url"`
	MailDriver                   string         `json:"mail_driver"`
	MailFrom                     string         `json:"mail_from"`
	SESRegion                    string         `json:"ses_region"`
	SESAccessKey                 string         `json:"ses_access_key"`
	SESSecretKey                 string         `json:"ses_secret_key"`
	SESBaseEndpoint              string         `json:"ses_base_endpoint"`
	NotificationTimeout          timex.Duration `json:"notification_timeout"`
	LogLevel                     string         `json:"log_level"`
	LogFormat                    string         `json:"log_format"`
}

// parseJson overlays values from the JSON file at path. An empty path means
// there is nothing to load. Unreadable files or invalid JSON panic, since the
// process cannot start with a config the operator did not intend.
func parseJson(config *Config, path string) {
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

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration.Duration)
	overlay(&config.BcryptCost, c.BcryptCost)
	overlay(&config.PendingTokenSize, c.PendingTokenSize)
	overlay(&config.FrontendURL, c.FrontendURL)
	overlay(&config.MailDriver, c.MailDriver)
	overlay(&config.MailFrom, c.MailFrom)
	overlay(&config.SESRegion, c.SESRegion)
	overlay(&config.SESAccessKey, c.SESAccessKey)
	overlay(&config.SESSecretKey, c.SESSecretKey)
	overlay(&config.SESBaseEndpoint, c.SESBaseEndpoint)
	overlay(&config.NotificationTimeout, c.NotificationTimeout.Duration)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFormat, c.LogFormat)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
