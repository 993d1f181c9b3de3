package config

import (
	"os"
	"strconv"
)

const (
	appNameVar        = "APP_NAME"
	serverURIVar      = "OAUTH_SERVER_URI"
	credentialVar     = "OAUTH_CREDENTIAL"
	scopeVar          = "OAUTH_SCOPE"
	requestTimeoutVar = "REQUEST_TIMEOUT_SECONDS"
	keepRefreshedVar  = "KEEP_REFRESHED"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Token Fetch")
}

// GetServerURI returns the OAuth2 token endpoint URL
// (e.g., "https://auth.example.com/v1/oauth/tokens")
func (EnvVars) GetServerURI() string {
	return GetEnv(serverURIVar, "http://localhost:8080/v1/oauth/tokens")
}

// GetCredential returns the "client_id:client_secret" credential. A value
// without a ":" is treated as a bare client secret.
func (EnvVars) GetCredential() string {
	return GetEnv(credentialVar, "")
}

func (EnvVars) GetScope() string {
	return GetEnv(scopeVar, "catalog")
}

func (EnvVars) GetRequestTimeoutSeconds() int {
	timeout, err := strconv.Atoi(GetEnv(requestTimeoutVar, "30"))
	if err != nil || timeout <= 0 {
		return 30
	}
	return timeout
}

// GetKeepRefreshed reports whether the CLI should hold the session open and
// keep the token refreshed instead of exiting after the first grant.
func (EnvVars) GetKeepRefreshed() bool {
	return GetEnv(keepRefreshedVar, "false") == "true"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
