package customHttpClient

import (
	"net/http"

	"github.com/hzhao/ConsultAPI/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient returns an http client sharing one keep-alive transport, so
// consecutive llm calls reuse connections instead of re-dialing TLS.
func PooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
