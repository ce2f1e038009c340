package factory

import (
	"net/http"

	"github.com/mikey/mail-relay/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient creates the instrumented HTTP client shared by outbound providers
func NewHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{
		Timeout:   cfg.GetHTTP().ClientTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
