package config

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetServerURI() string
	GetCredential() string
	GetScope() string
	GetRequestTimeoutSeconds() int
	GetKeepRefreshed() bool
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
