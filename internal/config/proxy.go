package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dgnsrekt/starchart/internal/astronomyapi"
)

const (
	defaultProxyPort    = 5050
	defaultProxyHost    = "127.0.0.1"
	defaultProxyLogFile = "logs/starchart_proxy.log"
)

// ProxyConfig holds configuration for the star-chart proxy.
type ProxyConfig struct {
	AppID             string
	AppSecret         string
	BindHost          string
	Port              int
	PortAutoFallback  bool
	PortCandidates    []string
	UpstreamURL       string
	UpstreamTimeoutMS int
	LogLevel          string
	LogFile           string
}

// LoadProxy reads proxy configuration from the environment after loading an
// optional .env file. Missing credentials are not an error here: the proxy
// still starts and answers chart requests with a configuration error.
func LoadProxy(envFiles ...string) (*ProxyConfig, error) {
	loadDotEnv(envFiles...)

	cfg := &ProxyConfig{
		AppID:             strings.TrimSpace(getEnvOrDefault("ASTRONOMY_APP_ID", "")),
		AppSecret:         strings.TrimSpace(getEnvOrDefault("ASTRONOMY_APP_SECRET", "")),
		BindHost:          getEnvOrDefault("STARCHART_BIND_HOST", defaultProxyHost),
		Port:              getEnvIntOrDefault("PORT", defaultProxyPort),
		PortAutoFallback:  getEnvBoolOrDefault("STARCHART_PORT_AUTO_FALLBACK", false),
		PortCandidates:    getEnvListOrDefault("STARCHART_PORT_CANDIDATES", nil),
		UpstreamURL:       getEnvOrDefault("ASTRONOMY_API_URL", astronomyapi.DefaultStarChartURL),
		UpstreamTimeoutMS: getEnvIntOrDefault("ASTRONOMY_TIMEOUT_MS", int(astronomyapi.DefaultTimeout/time.Millisecond)),
		LogLevel:          strings.ToLower(getEnvOrDefault("STARCHART_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("STARCHART_LOG_FILE", defaultProxyLogFile),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaultProxyPort
	}
	if cfg.UpstreamTimeoutMS < 1000 {
		cfg.UpstreamTimeoutMS = 1000
	}
	return cfg, nil
}

// BindAddr returns host:port for the listener.
func (c *ProxyConfig) BindAddr() string {
	return net.JoinHostPort(c.BindHost, strconv.Itoa(c.Port))
}

// Credentials returns the AstronomyAPI credential pair.
func (c *ProxyConfig) Credentials() astronomyapi.Credentials {
	return astronomyapi.Credentials{AppID: c.AppID, AppSecret: c.AppSecret}
}

// UpstreamTimeout returns the outbound request timeout.
func (c *ProxyConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}
