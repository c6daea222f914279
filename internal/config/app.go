package config

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/stravamcp/pkg/log"
)

type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8000"`

	// MCP transport: "http" (streamable HTTP) or "stdio"
	Transport    Transport `env:"MCP_TRANSPORT" envDefault:"http"`
	EndpointPath string    `env:"MCP_ENDPOINT_PATH" envDefault:"/mcp"`
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c := &ServerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Server config")
	}
	return c
}

func (c ServerConfig) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

func (c ServerConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetEndpointURL is the URL a local client uses to reach the MCP endpoint.
func (c ServerConfig) GetEndpointURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port)) + c.EndpointPath
}
