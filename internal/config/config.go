package config

type Config interface {
	EnvConfig
	GatewayConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type GatewayConfig interface {
	GetBaseURL() string
	GetAuthScheme() string
	GetLoginPath() string
	GetProfilePath() string
}

type SessionConfig interface {
	GetSessionStore() string
	GetSessionKeyHex() string
	GetLoginDelayMS() int
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
