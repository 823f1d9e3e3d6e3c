package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	baseURLVar     = "BASE_URL"
	authSchemeVar  = "AUTH_SCHEME"
	loginPathVar   = "LOGIN_PATH"
	profilePathVar = "PROFILE_PATH"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ GatewayConfig = EnvVars{}
var _ SessionConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Auth Client")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the base URL of the remote authentication/profile service
// (e.g. "https://portal.example.com"). All gateway paths are relative to it.
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:8000"), "/")
}

// GetAuthScheme returns the Authorization header scheme ("Bearer" or "JWT").
// The target service decides which one it accepts, so this is configuration,
// not a hardcoded literal.
func (EnvVars) GetAuthScheme() string {
	return GetEnv(authSchemeVar, "Bearer")
}

func (EnvVars) GetLoginPath() string {
	return GetEnv(loginPathVar, "/api/auth/login/")
}

func (EnvVars) GetProfilePath() string {
	return GetEnv(profilePathVar, "/api/employee/profile/")
}

// GetSessionStore selects the credential store backend: "file" or "sqlite".
func (EnvVars) GetSessionStore() string {
	return GetEnv("SESSION_STORE", "file")
}

// GetSessionKeyHex returns an optional 64 hex character key. When set, the
// file credential store seals values at rest.
func (EnvVars) GetSessionKeyHex() string {
	return GetEnv("SESSION_KEY_HEX", "")
}

// GetLoginDelayMS returns the artificial delay applied before the view
// transition after a successful login, in milliseconds.
func (EnvVars) GetLoginDelayMS() int {
	v, err := strconv.Atoi(GetEnv("LOGIN_DELAY_MS", "0"))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
