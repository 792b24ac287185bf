package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from USUARIOS_* environment variables. The given
// env files are loaded first; missing files are ignored and variables already
// present in the environment win over the files.
//
// PORT is honoured as a shortcut for USUARIOS_ADDR=":$PORT".
func parseEnv(config *Config, envFiles ...string) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if port := getEnv("PORT"); port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	setString(&config.EndpointAddrHTTP, "USUARIOS_ADDR")
	setString(&config.DatabaseDSN, "USUARIOS_DATABASE_DSN")
	setString(&config.SecretKey, "USUARIOS_SECRET_KEY")
	setDuration(&config.SessionTokenValidityDuration, "USUARIOS_SESSION_TTL")
	setInt(&config.BcryptCost, "USUARIOS_BCRYPT_COST")
	setInt(&config.PendingTokenSize, "USUARIOS_PENDING_TOKEN_SIZE")
	setString(&config.FrontendURL, "USUARIOS_FRONTEND_URL")
	setString(&config.MailDriver, "USUARIOS_MAIL_DRIVER")
	setString(&config.MailFrom, "USUARIOS_MAIL_FROM")
	setString(&config.SESRegion, "USUARIOS_SES_REGION")
	setString(&config.SESAccessKey, "USUARIOS_SES_ACCESS_KEY")
	setString(&config.SESSecretKey, "USUARIOS_SES_SECRET_KEY")
	setString(&config.SESBaseEndpoint, "USUARIOS_SES_ENDPOINT")
	setDuration(&config.NotificationTimeout, "USUARIOS_NOTIFICATION_TIMEOUT")
	setString(&config.LogLevel, "USUARIOS_LOG_LEVEL")
	setString(&config.LogFormat, "USUARIOS_LOG_FORMAT")
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

// setInt and setDuration keep the previous value when the variable is malformed.
func setInt(dst *int, key string) {
	if v := getEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := getEnv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
